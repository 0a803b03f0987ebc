package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/repository"

	"github.com/lib/pq"
)

// SQLSTATE raised by the bookings_no_overlap exclusion constraint.
const exclusionViolation = "23P01"

type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.ToolRepository
	repository.UserRepository
	repository.NotificationRepository
	repository.ReportRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		BookingRepository:      NewBookingRepository(db),
		ToolRepository:         NewToolRepository(db),
		UserRepository:         NewUserRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		ReportRepository:       NewReportRepository(db),
	}
}

// Ping backs the health probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// mapError turns driver errors into domain errors the service layer understands.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == exclusionViolation {
		return &domain.ConflictError{Message: "dates unavailable"}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}
