package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/lock"
	"ubertool-booking/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCancelBooking_FeeFollowsActionTime(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		startIn    time.Duration
		cancelAt   time.Duration
		feePercent int32
	}{
		{"Inside Grace Period", 20 * time.Hour, 30 * time.Minute, 0},
		{"Under A Day", 20 * time.Hour, 2 * time.Hour, 50},
		{"Under Three Days", 30 * time.Hour, 2 * time.Hour, 25},
		{"Three Days Or More", 5 * 24 * time.Hour, 2 * time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newMemService(t, lock.NoopLocker{})
			start := now.Add(tt.startIn)
			created, err := svc.CreateBooking(ctx, toolID, renterID, start, start.Add(24*time.Hour))
			require.NoError(t, err)

			_, err = svc.CancelBooking(ctx, created.ID, renterID, "", now.Add(tt.cancelAt))
			require.NoError(t, err)

			stored, err := repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			wantFee := domain.PercentOf(created.TotalPriceCents, tt.feePercent)
			assert.Equal(t, domain.BookingStatusCancelled, stored.Status)
			assert.Equal(t, wantFee, *stored.CancellationFeeCents)
			assert.Equal(t, created.TotalPriceCents-wantFee, *stored.RefundAmountCents)
		})
	}
}

func TestCancelBooking_FailedRefundStaysPendingUntilRetried(t *testing.T) {
	ctx := context.Background()
	b := *existingBooking(domain.BookingStatusApproved)
	b.PaymentStatus = domain.PaymentStatusPaid
	key := "booking-refund-" + b.ID.String()

	gateway := new(MockGateway)
	gateway.On("Refund", mock.Anything, "pi_existing", int64(2250+5000), key).Return("", errors.New("processor timeout")).Once()
	gateway.On("Refund", mock.Anything, "pi_existing", int64(2250+5000), key).Return("re_1", nil).Once()

	svc, repo := newMemServiceWithGateway(t, lock.NoopLocker{}, gateway)
	repo.put(b)

	_, err := svc.CancelBooking(ctx, b.ID, renterID, "", time.Time{})
	require.ErrorIs(t, err, service.ErrRefundFailed)

	stored, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, stored.Status)
	assert.Equal(t, domain.PaymentStatusRefundPending, stored.PaymentStatus)
	assert.Equal(t, int32(750), *stored.CancellationFeeCents)

	n, err := svc.RetryPendingRefunds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err = repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPartiallyRefunded, stored.PaymentStatus)
	gateway.AssertNumberOfCalls(t, "Refund", 2)

	n, err = svc.RetryPendingRefunds(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	gateway.AssertNumberOfCalls(t, "Refund", 2)
}

func TestHandlePaymentSucceeded_ReplayRetriesFailedRefund(t *testing.T) {
	ctx := context.Background()
	b := *existingBooking(domain.BookingStatusRejected)
	key := "booking-refund-" + b.ID.String()

	gateway := new(MockGateway)
	gateway.On("Refund", mock.Anything, "pi_existing", int64(8000), key).Return("", errors.New("processor timeout")).Once()
	gateway.On("Refund", mock.Anything, "pi_existing", int64(8000), key).Return("re_1", nil).Once()

	svc, repo := newMemServiceWithGateway(t, lock.NoopLocker{}, gateway)
	repo.put(b)

	_, err := svc.HandlePaymentSucceeded(ctx, "pi_existing")
	require.ErrorContains(t, err, "processor timeout")

	stored, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefundPending, stored.PaymentStatus)

	got, err := svc.HandlePaymentSucceeded(ctx, "pi_existing")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefunded, got.PaymentStatus)

	stored, err = repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefunded, stored.PaymentStatus)
	assert.Equal(t, domain.BookingStatusRejected, stored.Status)
	gateway.AssertNumberOfCalls(t, "Refund", 2)
}

func TestRetryPendingRefunds_ProcessorStillDown(t *testing.T) {
	ctx := context.Background()
	b := *existingBooking(domain.BookingStatusRejected)
	b.PaymentStatus = domain.PaymentStatusRefundPending

	gateway := new(MockGateway)
	gateway.On("Refund", mock.Anything, "pi_existing", int64(8000), mock.Anything).Return("", errors.New("processor timeout"))

	svc, repo := newMemServiceWithGateway(t, lock.NoopLocker{}, gateway)
	repo.put(b)

	n, err := svc.RetryPendingRefunds(ctx)
	assert.ErrorContains(t, err, b.ID.String())
	assert.Zero(t, n)

	stored, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefundPending, stored.PaymentStatus)
}
