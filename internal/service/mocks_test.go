package service_test

import (
	"context"
	"sync"
	"time"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) GetDetailed(ctx context.Context, id uuid.UUID) (*domain.BookingDetailed, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingDetailed), args.Error(1)
}
func (m *MockBookingRepo) GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Booking, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) FindOverlapping(ctx context.Context, toolID int32, start, end time.Time, statuses []domain.BookingStatus, excludeID *uuid.UUID) ([]domain.BookingRef, error) {
	args := m.Called(ctx, toolID, start, end, statuses, excludeID)
	return args.Get(0).([]domain.BookingRef), args.Error(1)
}
func (m *MockBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) ListByRenter(ctx context.Context, renterID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, renterID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) ListByOwner(ctx context.Context, ownerID int32, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, ownerID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) ListEndedActive(ctx context.Context, before time.Time, limit int32) ([]domain.Booking, error) {
	args := m.Called(ctx, before, limit)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListStalePending(ctx context.Context, before time.Time, limit int32) ([]domain.Booking, error) {
	args := m.Called(ctx, before, limit)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListRefundPending(ctx context.Context, limit int32) ([]domain.Booking, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// MockToolRepo
type MockToolRepo struct {
	mock.Mock
}

func (m *MockToolRepo) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tool), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
func (m *MockNotificationRepo) UpdateDelivery(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) ListUndelivered(ctx context.Context, maxAttempts, limit int32) ([]domain.Notification, error) {
	args := m.Called(ctx, maxAttempts, limit)
	return args.Get(0).([]domain.Notification), args.Error(1)
}

// MockReportRepo
type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) BookingsBetween(ctx context.Context, from, to time.Time) ([]domain.BookingReportRow, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.BookingReportRow), args.Error(1)
}

// MockGateway
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
	args := m.Called(ctx, intentID)
	return args.Error(0)
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

// MockEmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, toEmail, toName, subject, plainText, html string) error {
	args := m.Called(ctx, toEmail, toName, subject, plainText, html)
	return args.Error(0)
}

// MockPushSender
type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	args := m.Called(ctx, token, title, body, data)
	return args.Error(0)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.BookingEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event domain.BookingEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []domain.BookingEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.BookingEvent(nil), n.events...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

// memBookingRepo enforces the no-overlap rule the way the database constraint does, so
// concurrent tests exercise the real race between check and insert.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]domain.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[uuid.UUID]domain.Booking)}
}

func (r *memBookingRepo) Create(_ context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.bookings {
		if other.ToolID == b.ToolID && other.Status.BlocksAvailability() && other.Period().Overlaps(b.Period()) {
			return &domain.ConflictError{Message: "dates unavailable"}
		}
	}
	b.Version = 1
	b.CreatedAt = now
	b.UpdatedAt = now
	stored := *b
	stored.PaymentClientSecret = ""
	r.bookings[b.ID] = stored
	return nil
}

// put stores b as is, for tests that start from an existing booking.
func (r *memBookingRepo) put(b domain.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = b
}

func (r *memBookingRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *memBookingRepo) GetDetailed(ctx context.Context, id uuid.UUID) (*domain.BookingDetailed, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.BookingDetailed{Booking: *b}, nil
}

func (r *memBookingRepo) GetByPaymentIntent(_ context.Context, intentID string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.PaymentIntentID == intentID {
			return &b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memBookingRepo) FindOverlapping(_ context.Context, toolID int32, start, end time.Time, statuses []domain.BookingStatus, excludeID *uuid.UUID) ([]domain.BookingRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := domain.Period{Start: start, End: end}
	var refs []domain.BookingRef
	for _, b := range r.bookings {
		if b.ToolID != toolID || (excludeID != nil && b.ID == *excludeID) {
			continue
		}
		blocking := false
		for _, s := range statuses {
			if b.Status == s {
				blocking = true
			}
		}
		if blocking && b.Period().Overlaps(want) {
			refs = append(refs, b.Ref())
		}
	}
	return refs, nil
}

func (r *memBookingRepo) Update(_ context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID]
	if !ok || stored.Version != b.Version {
		return domain.ErrConcurrentUpdate
	}
	b.Version++
	b.UpdatedAt = now
	r.bookings[b.ID] = *b
	return nil
}

func (r *memBookingRepo) list(match func(domain.Booking) bool) []domain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Booking
	for _, b := range r.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	return out
}

func (r *memBookingRepo) ListByRenter(_ context.Context, renterID int32, status domain.BookingStatus, _, _ int32) ([]domain.Booking, int32, error) {
	out := r.list(func(b domain.Booking) bool {
		return b.RenterID == renterID && (status == "" || b.Status == status)
	})
	return out, int32(len(out)), nil
}

func (r *memBookingRepo) ListByOwner(_ context.Context, ownerID int32, status domain.BookingStatus, _, _ int32) ([]domain.Booking, int32, error) {
	out := r.list(func(b domain.Booking) bool {
		return b.OwnerID == ownerID && (status == "" || b.Status == status)
	})
	return out, int32(len(out)), nil
}

func (r *memBookingRepo) ListEndedActive(_ context.Context, before time.Time, _ int32) ([]domain.Booking, error) {
	return r.list(func(b domain.Booking) bool {
		return b.Status == domain.BookingStatusActive && b.EndDate.Before(before)
	}), nil
}

func (r *memBookingRepo) ListStalePending(_ context.Context, before time.Time, _ int32) ([]domain.Booking, error) {
	return r.list(func(b domain.Booking) bool {
		return b.Status == domain.BookingStatusPending && b.StartDate.Before(before)
	}), nil
}

func (r *memBookingRepo) ListRefundPending(_ context.Context, _ int32) ([]domain.Booking, error) {
	return r.list(func(b domain.Booking) bool {
		return b.PaymentStatus == domain.PaymentStatusRefundPending
	}), nil
}
