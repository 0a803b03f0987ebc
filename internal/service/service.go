package service

import (
	"context"
	"time"

	"ubertool-booking/internal/domain"

	"github.com/google/uuid"
)

type BookingService interface {
	CreateBooking(ctx context.Context, toolID, renterID int32, start, end time.Time) (*domain.Booking, error)
	GetBooking(ctx context.Context, actorID int32, id uuid.UUID) (*domain.Booking, error)
	GetBookingDetailed(ctx context.Context, actorID int32, id uuid.UUID) (*domain.BookingDetailed, error)
	// PreviewCancellation is read-only. A zero asOf means now.
	PreviewCancellation(ctx context.Context, id uuid.UUID, actorID int32, asOf time.Time) (*domain.CancellationEligibility, error)
	CancelBooking(ctx context.Context, id uuid.UUID, actorID int32, reason string, asOf time.Time) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, id uuid.UUID, ownerID int32) (*domain.Booking, error)
	RejectBooking(ctx context.Context, id uuid.UUID, ownerID int32, reason string) (*domain.Booking, error)
	CompleteBooking(ctx context.Context, id uuid.UUID, actorID int32) (*domain.Booking, error)
	HandlePaymentSucceeded(ctx context.Context, intentID string) (*domain.Booking, error)
	HandlePaymentFailed(ctx context.Context, intentID string) (*domain.Booking, error)
	ListRentals(ctx context.Context, renterID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
	ListLendings(ctx context.Context, ownerID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
	CheckAvailability(ctx context.Context, toolID int32, start, end time.Time) ([]domain.BookingRef, error)

	// Scheduled maintenance. Each returns the number of bookings moved.
	CompleteEndedBookings(ctx context.Context, now time.Time) (int, error)
	ExpireStalePending(ctx context.Context, now time.Time) (int, error)
	RetryPendingRefunds(ctx context.Context) (int, error)
}

type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, toolID int32, start, end time.Time, excludeID *uuid.UUID) (bool, error)
	Conflicts(ctx context.Context, toolID int32, start, end time.Time, excludeID *uuid.UUID) ([]domain.BookingRef, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
	// RetryUndelivered re-attempts failed email and push deliveries and returns how many were retried.
	RetryUndelivered(ctx context.Context) (int, error)
}

type ReportService interface {
	BookingsReport(ctx context.Context, from, to time.Time) ([]byte, error)
}

// Notifier fans a booking event out to the recipient. It never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, event domain.BookingEvent)
}

type EmailSender interface {
	Send(ctx context.Context, toEmail, toName, subject, plainText, html string) error
}

type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}
