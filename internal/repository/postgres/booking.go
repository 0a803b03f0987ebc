package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var bookingColumns = []string{
	"id", "tool_id", "renter_id", "owner_id", "start_date", "end_date", "status",
	"daily_rate_cents", "total_price_cents", "deposit_cents", "payment_status",
	"COALESCE(payment_intent_id, '')", "COALESCE(rejection_reason, '')",
	"cancelled_at", "cancelled_by", "cancellation_reason", "cancellation_fee_cents", "refund_amount_cents",
	"version", "created_at", "updated_at",
}

// selectBookingColumns renders bookingColumns, qualified with alias when non-empty.
func selectBookingColumns(alias string) string {
	if alias == "" {
		return strings.Join(bookingColumns, ", ")
	}
	cols := make([]string, len(bookingColumns))
	for i, c := range bookingColumns {
		if strings.HasPrefix(c, "COALESCE(") {
			cols[i] = "COALESCE(" + alias + "." + strings.TrimPrefix(c, "COALESCE(")
		} else {
			cols[i] = alias + "." + c
		}
	}
	return strings.Join(cols, ", ")
}

func bookingDest(b *domain.Booking) []any {
	return []any{
		&b.ID, &b.ToolID, &b.RenterID, &b.OwnerID, &b.StartDate, &b.EndDate, &b.Status,
		&b.DailyRateCents, &b.TotalPriceCents, &b.DepositCents, &b.PaymentStatus,
		&b.PaymentIntentID, &b.RejectionReason,
		&b.CancelledAt, &b.CancelledBy, &b.CancellationReason, &b.CancellationFeeCents, &b.RefundAmountCents,
		&b.Version, &b.CreatedAt, &b.UpdatedAt,
	}
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	if err := row.Scan(bookingDest(b)...); err != nil {
		return nil, err
	}
	return b, nil
}

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Create", "bookingID", b.ID, "toolID", b.ToolID)

	query := `INSERT INTO bookings (id, tool_id, renter_id, owner_id, start_date, end_date, status, daily_rate_cents, total_price_cents, deposit_cents, payment_status, payment_intent_id, version, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, NOW(), NOW()) RETURNING version, created_at, updated_at`
	logger.DatabaseCall("INSERT", "bookings", "bookingID", b.ID)
	err := r.db.QueryRowContext(ctx, query, b.ID, b.ToolID, b.RenterID, b.OwnerID, b.StartDate, b.EndDate, b.Status,
		b.DailyRateCents, b.TotalPriceCents, b.DepositCents, b.PaymentStatus, nullString(b.PaymentIntentID)).
		Scan(&b.Version, &b.CreatedAt, &b.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "bookingID", b.ID)
	if err != nil {
		err = mapError(err)
		logger.ExitMethodWithError("bookingRepository.Create", err, "bookingID", b.ID)
		return err
	}
	logger.ExitMethod("bookingRepository.Create", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + selectBookingColumns("") + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

func (r *bookingRepository) GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Booking, error) {
	query := `SELECT ` + selectBookingColumns("") + ` FROM bookings WHERE payment_intent_id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, intentID))
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

func (r *bookingRepository) GetDetailed(ctx context.Context, id uuid.UUID) (*domain.BookingDetailed, error) {
	query := `SELECT ` + selectBookingColumns("b") + `,
	                 t.id, t.owner_id, t.name, COALESCE(t.description, ''), t.categories, t.price_per_day_cents, t.deposit_cents, t.condition, t.metro, t.status, t.created_on, t.deleted_on,
	                 ru.id, ru.email, ru.phone_number, ru.name, COALESCE(ru.avatar_url, ''), ru.created_on, ru.updated_on,
	                 ou.id, ou.email, ou.phone_number, ou.name, COALESCE(ou.avatar_url, ''), ou.created_on, ou.updated_on
	          FROM bookings b
	          JOIN tools t ON t.id = b.tool_id
	          JOIN users ru ON ru.id = b.renter_id
	          JOIN users ou ON ou.id = b.owner_id
	          WHERE b.id = $1`

	d := &domain.BookingDetailed{Tool: &domain.Tool{}, Renter: &domain.User{}, Owner: &domain.User{}}
	t, ru, ou := d.Tool, d.Renter, d.Owner
	dest := append(bookingDest(&d.Booking),
		&t.ID, &t.OwnerID, &t.Name, &t.Description, pq.Array(&t.Categories), &t.PricePerDayCents, &t.DepositCents, &t.Condition, &t.Metro, &t.Status, &t.CreatedOn, &t.DeletedOn,
		&ru.ID, &ru.Email, &ru.PhoneNumber, &ru.Name, &ru.AvatarURL, &ru.CreatedOn, &ru.UpdatedOn,
		&ou.ID, &ou.Email, &ou.PhoneNumber, &ou.Name, &ou.AvatarURL, &ou.CreatedOn, &ou.UpdatedOn,
	)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(dest...); err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

func (r *bookingRepository) FindOverlapping(ctx context.Context, toolID int32, start, end time.Time, statuses []domain.BookingStatus, excludeID *uuid.UUID) ([]domain.BookingRef, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	query := `SELECT id, tool_id, renter_id, owner_id, start_date, end_date, status FROM bookings
	          WHERE tool_id = $1 AND status = ANY($2) AND start_date <= $3 AND end_date >= $4`
	args := []any{toolID, pq.Array(names), end, start}
	if excludeID != nil {
		query += " AND id <> $5"
		args = append(args, *excludeID)
	}
	query += " ORDER BY start_date"

	logger.DatabaseCall("SELECT", "bookings", "toolID", toolID, "start", start, "end", end)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "toolID", toolID)
		return nil, err
	}
	defer rows.Close()

	var refs []domain.BookingRef
	for rows.Next() {
		var ref domain.BookingRef
		if err := rows.Scan(&ref.ID, &ref.ToolID, &ref.RenterID, &ref.OwnerID, &ref.StartDate, &ref.EndDate, &ref.Status); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(refs)), nil, "toolID", toolID)
	return refs, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Update", "bookingID", b.ID, "status", b.Status, "version", b.Version)

	query := `UPDATE bookings SET status=$1, payment_status=$2, payment_intent_id=$3, rejection_reason=$4,
	                 cancelled_at=$5, cancelled_by=$6, cancellation_reason=$7, cancellation_fee_cents=$8, refund_amount_cents=$9,
	                 version = version + 1, updated_at = NOW()
	          WHERE id=$10 AND version=$11 RETURNING version, updated_at`
	logger.DatabaseCall("UPDATE", "bookings", "bookingID", b.ID)
	err := r.db.QueryRowContext(ctx, query, b.Status, b.PaymentStatus, nullString(b.PaymentIntentID), nullString(b.RejectionReason),
		b.CancelledAt, b.CancelledBy, b.CancellationReason, b.CancellationFeeCents, b.RefundAmountCents,
		b.ID, b.Version).Scan(&b.Version, &b.UpdatedAt)
	logger.DatabaseResult("UPDATE", 1, err, "bookingID", b.ID)

	if errors.Is(err, sql.ErrNoRows) {
		err = domain.ErrConcurrentUpdate
	} else {
		err = mapError(err)
	}
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Update", err, "bookingID", b.ID)
		return err
	}
	logger.ExitMethod("bookingRepository.Update", "bookingID", b.ID, "version", b.Version)
	return nil
}

func (r *bookingRepository) ListByRenter(ctx context.Context, renterID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.listBy(ctx, "renter_id", renterID, status, page, pageSize)
}

func (r *bookingRepository) ListByOwner(ctx context.Context, ownerID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.listBy(ctx, "owner_id", ownerID, status, page, pageSize)
}

func (r *bookingRepository) listBy(ctx context.Context, column string, userID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize
	where := fmt.Sprintf(" FROM bookings WHERE %s = $1", column)
	args := []any{userID}
	argIdx := 2
	if status != "" {
		where += " AND status = $2"
		args = append(args, status)
		argIdx++
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*)"+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + selectBookingColumns("") + where +
		fmt.Sprintf(" ORDER BY start_date DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	bookings, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

func (r *bookingRepository) ListEndedActive(ctx context.Context, before time.Time, limit int32) ([]domain.Booking, error) {
	query := `SELECT ` + selectBookingColumns("") + ` FROM bookings WHERE status = $1 AND end_date < $2 ORDER BY end_date LIMIT $3`
	return r.query(ctx, query, domain.BookingStatusActive, before, limit)
}

func (r *bookingRepository) ListStalePending(ctx context.Context, before time.Time, limit int32) ([]domain.Booking, error) {
	query := `SELECT ` + selectBookingColumns("") + ` FROM bookings WHERE status = $1 AND start_date < $2 ORDER BY start_date LIMIT $3`
	return r.query(ctx, query, domain.BookingStatusPending, before, limit)
}

// ListRefundPending returns bookings whose refund has not yet been confirmed by the processor,
// oldest first.
func (r *bookingRepository) ListRefundPending(ctx context.Context, limit int32) ([]domain.Booking, error) {
	query := `SELECT ` + selectBookingColumns("") + ` FROM bookings WHERE payment_status = $1 ORDER BY updated_at LIMIT $2`
	return r.query(ctx, query, domain.PaymentStatusRefundPending, limit)
}

func (r *bookingRepository) query(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
