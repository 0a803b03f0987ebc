package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/repository"
)

const notificationColumns = `id, user_id, booking_id, type, title, message, is_read, attributes, email_status, push_status, attempts, created_on`

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "userID", n.UserID, "type", n.Type)

	attrs, err := json.Marshal(n.Attributes)
	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "reason", "failed to marshal attributes")
		return err
	}

	query := `INSERT INTO notifications (user_id, booking_id, type, title, message, is_read, attributes, email_status, push_status, attempts, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW()) RETURNING id, created_on`
	logger.DatabaseCall("INSERT", "notifications", "userID", n.UserID)
	err = r.db.QueryRowContext(ctx, query, n.UserID, n.BookingID, n.Type, n.Title, n.Message, n.IsRead, attrs, n.EmailStatus, n.PushStatus, n.Attempts).
		Scan(&n.ID, &n.CreatedOn)
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "userID", n.UserID)
	} else {
		logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	}
	return err
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	var attrs []byte
	if err := row.Scan(&n.ID, &n.UserID, &n.BookingID, &n.Type, &n.Title, &n.Message, &n.IsRead, &attrs, &n.EmailStatus, &n.PushStatus, &n.Attempts, &n.CreatedOn); err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
			return nil, err
		}
	}
	return &n, nil
}

func (r *notificationRepository) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM notifications WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	notes, err := r.query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return notes, count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int32) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) UpdateDelivery(ctx context.Context, n *domain.Notification) error {
	query := `UPDATE notifications SET email_status = $1, push_status = $2, attempts = $3 WHERE id = $4`
	logger.DatabaseCall("UPDATE", "notifications", "notificationID", n.ID)
	result, err := r.db.ExecContext(ctx, query, n.EmailStatus, n.PushStatus, n.Attempts, n.ID)
	var affected int64
	if err == nil {
		affected, err = result.RowsAffected()
	}
	logger.DatabaseResult("UPDATE", affected, err, "notificationID", n.ID)
	return err
}

func (r *notificationRepository) ListUndelivered(ctx context.Context, maxAttempts, limit int32) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
	          WHERE (email_status = $1 OR push_status = $1) AND attempts < $2 ORDER BY created_on LIMIT $3`
	return r.query(ctx, query, domain.DeliveryFailed, maxAttempts, limit)
}

func (r *notificationRepository) query(ctx context.Context, query string, args ...any) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}
