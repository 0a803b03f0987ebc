package postgres

import (
	"context"
	"database/sql"
	"time"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/repository"
)

type reportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

// BookingsBetween returns bookings created in [from, to) with display names resolved.
func (r *reportRepository) BookingsBetween(ctx context.Context, from, to time.Time) ([]domain.BookingReportRow, error) {
	query := `SELECT b.id, t.name, ru.name, ou.name, b.start_date, b.end_date, b.status, b.payment_status,
	                 b.total_price_cents, b.deposit_cents, COALESCE(b.cancellation_fee_cents, 0), COALESCE(b.refund_amount_cents, 0), b.created_at
	          FROM bookings b
	          JOIN tools t ON t.id = b.tool_id
	          JOIN users ru ON ru.id = b.renter_id
	          JOIN users ou ON ou.id = b.owner_id
	          WHERE b.created_at >= $1 AND b.created_at < $2
	          ORDER BY b.created_at`

	logger.DatabaseCall("SELECT", "bookings", "from", from, "to", to)
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.BookingReportRow
	for rows.Next() {
		var row domain.BookingReportRow
		if err := rows.Scan(&row.BookingID, &row.ToolName, &row.RenterName, &row.OwnerName, &row.StartDate, &row.EndDate,
			&row.Status, &row.PaymentStatus, &row.TotalPriceCents, &row.DepositCents, &row.CancellationFeeCents,
			&row.RefundAmountCents, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(out)), nil)
	return out, nil
}
