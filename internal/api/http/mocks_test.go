package http_test

import (
	"context"
	"time"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) booking(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, toolID, renterID int32, start, end time.Time) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, toolID, renterID, start, end))
}

func (m *MockBookingService) GetBooking(ctx context.Context, actorID int32, id uuid.UUID) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, actorID, id))
}

func (m *MockBookingService) GetBookingDetailed(ctx context.Context, actorID int32, id uuid.UUID) (*domain.BookingDetailed, error) {
	args := m.Called(ctx, actorID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingDetailed), args.Error(1)
}

func (m *MockBookingService) PreviewCancellation(ctx context.Context, id uuid.UUID, actorID int32, asOf time.Time) (*domain.CancellationEligibility, error) {
	args := m.Called(ctx, id, actorID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CancellationEligibility), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, id uuid.UUID, actorID int32, reason string, asOf time.Time) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, actorID, reason, asOf))
}

func (m *MockBookingService) ConfirmBooking(ctx context.Context, id uuid.UUID, ownerID int32) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, ownerID))
}

func (m *MockBookingService) RejectBooking(ctx context.Context, id uuid.UUID, ownerID int32, reason string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, ownerID, reason))
}

func (m *MockBookingService) CompleteBooking(ctx context.Context, id uuid.UUID, actorID int32) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, actorID))
}

func (m *MockBookingService) HandlePaymentSucceeded(ctx context.Context, intentID string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, intentID))
}

func (m *MockBookingService) HandlePaymentFailed(ctx context.Context, intentID string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, intentID))
}

func (m *MockBookingService) ListRentals(ctx context.Context, renterID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, renterID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}

func (m *MockBookingService) ListLendings(ctx context.Context, ownerID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, ownerID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}

func (m *MockBookingService) CheckAvailability(ctx context.Context, toolID int32, start, end time.Time) ([]domain.BookingRef, error) {
	args := m.Called(ctx, toolID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingRef), args.Error(1)
}

func (m *MockBookingService) CompleteEndedBookings(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingService) ExpireStalePending(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingService) RetryPendingRefunds(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return m.Called(ctx, userID, notificationID).Error(0)
}

func (m *MockNotificationService) RetryUndelivered(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) BookingsReport(ctx context.Context, from, to time.Time) ([]byte, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePaymentIntent(ctx context.Context, bookingID uuid.UUID, amountCents int64, currency string) (*payment.Intent, error) {
	args := m.Called(ctx, bookingID, amountCents, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) CancelPaymentIntent(ctx context.Context, intentID string) error {
	return m.Called(ctx, intentID).Error(0)
}

func (m *MockGateway) Refund(ctx context.Context, intentID string, amountCents int64, idempotencyKey string) (string, error) {
	args := m.Called(ctx, intentID, amountCents, idempotencyKey)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) ParseWebhook(payload []byte, signature string) (*payment.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}
