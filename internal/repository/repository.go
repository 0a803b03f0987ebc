package repository

import (
	"context"
	"time"

	"ubertool-booking/internal/domain"

	"github.com/google/uuid"
)

type BookingRepository interface {
	// Create inserts b. An overlapping blocking booking for the same tool is reported as
	// *domain.ConflictError by the storage constraint.
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetDetailed(ctx context.Context, id uuid.UUID) (*domain.BookingDetailed, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Booking, error)
	// FindOverlapping returns bookings of toolID in one of statuses whose range touches [start, end].
	FindOverlapping(ctx context.Context, toolID int32, start, end time.Time, statuses []domain.BookingStatus, excludeID *uuid.UUID) ([]domain.BookingRef, error)
	// Update writes the mutable fields if b.Version still matches the stored row, then bumps
	// b.Version. A stale version yields domain.ErrConcurrentUpdate.
	Update(ctx context.Context, b *domain.Booking) error
	ListByRenter(ctx context.Context, renterID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByOwner(ctx context.Context, ownerID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
	ListEndedActive(ctx context.Context, before time.Time, limit int32) ([]domain.Booking, error)
	ListStalePending(ctx context.Context, before time.Time, limit int32) ([]domain.Booking, error)
	ListRefundPending(ctx context.Context, limit int32) ([]domain.Booking, error)
}

type ToolRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Tool, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
	UpdateDelivery(ctx context.Context, note *domain.Notification) error
	ListUndelivered(ctx context.Context, maxAttempts, limit int32) ([]domain.Notification, error)
}

type ReportRepository interface {
	BookingsBetween(ctx context.Context, from, to time.Time) ([]domain.BookingReportRow, error)
}
