package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	renterID   int32 = 10
	ownerID    int32 = 20
	outsiderID int32 = 30
)

func newBooking(status BookingStatus) *Booking {
	return &Booking{
		ToolID:          1,
		RenterID:        renterID,
		OwnerID:         ownerID,
		Status:          status,
		StartDate:       t0.AddDate(0, 0, 7),
		EndDate:         t0.AddDate(0, 0, 9),
		TotalPriceCents: 10000,
		PaymentStatus:   PaymentStatusPending,
		CreatedAt:       t0.AddDate(0, 0, -2),
	}
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name   string
		from   BookingStatus
		action BookingAction
		actor  Actor
		want   BookingStatus
	}{
		{"Owner approves", BookingStatusPending, ActionApprove, UserActor(ownerID), BookingStatusApproved},
		{"Owner rejects", BookingStatusPending, ActionReject, UserActor(ownerID), BookingStatusRejected},
		{"Payment activates pending", BookingStatusPending, ActionActivate, SystemActor, BookingStatusActive},
		{"Payment activates approved", BookingStatusApproved, ActionActivate, SystemActor, BookingStatusActive},
		{"Renter cancels pending", BookingStatusPending, ActionCancel, UserActor(renterID), BookingStatusCancelled},
		{"Owner cancels approved", BookingStatusApproved, ActionCancel, UserActor(ownerID), BookingStatusCancelled},
		{"System completes", BookingStatusActive, ActionComplete, SystemActor, BookingStatusCompleted},
		{"Owner completes", BookingStatusActive, ActionComplete, UserActor(ownerID), BookingStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			to, err := CheckTransition(newBooking(tt.from), tt.action, tt.actor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, to)
		})
	}
}

func TestCheckTransition_Authorization(t *testing.T) {
	tests := []struct {
		name   string
		from   BookingStatus
		action BookingAction
		actor  Actor
	}{
		{"Renter cannot approve", BookingStatusPending, ActionApprove, UserActor(renterID)},
		{"System cannot approve", BookingStatusPending, ActionApprove, SystemActor},
		{"Renter cannot reject", BookingStatusPending, ActionReject, UserActor(renterID)},
		{"User cannot activate", BookingStatusApproved, ActionActivate, UserActor(ownerID)},
		{"Renter cannot complete", BookingStatusActive, ActionComplete, UserActor(renterID)},
		{"Outsider cannot cancel", BookingStatusPending, ActionCancel, UserActor(outsiderID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckTransition(newBooking(tt.from), tt.action, tt.actor)
			var authErr *AuthorizationError
			require.True(t, errors.As(err, &authErr), "expected AuthorizationError, got %v", err)
			assert.Equal(t, string(tt.action), authErr.Action)
		})
	}
}

func TestCheckTransition_IllegalEdges(t *testing.T) {
	t.Run("Approve twice", func(t *testing.T) {
		_, err := CheckTransition(newBooking(BookingStatusApproved), ActionApprove, UserActor(ownerID))
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Contains(t, err.Error(), "approved")
	})

	t.Run("Complete a pending booking", func(t *testing.T) {
		_, err := CheckTransition(newBooking(BookingStatusPending), ActionComplete, SystemActor)
		assert.True(t, IsValidation(err))
	})

	t.Run("Cancel an active booking", func(t *testing.T) {
		_, err := CheckTransition(newBooking(BookingStatusActive), ActionCancel, UserActor(renterID))
		assert.True(t, IsValidation(err))
	})
}

func TestCheckTransition_TerminalStatusesAreFinal(t *testing.T) {
	actions := []BookingAction{ActionApprove, ActionReject, ActionActivate, ActionComplete, ActionCancel}
	actors := []Actor{SystemActor, UserActor(renterID), UserActor(ownerID), UserActor(outsiderID)}

	for _, status := range []BookingStatus{BookingStatusRejected, BookingStatusCompleted, BookingStatusCancelled} {
		for _, action := range actions {
			_, ok := NextStatus(status, action)
			assert.False(t, ok, "%s has an edge for %s", status, action)
			for _, actor := range actors {
				_, err := CheckTransition(newBooking(status), action, actor)
				assert.Error(t, err, "%s by %s on %s", action, actor, status)
			}
		}
	}
}

func TestCheckCancellation(t *testing.T) {
	t.Run("Outsider is refused before eligibility is computed", func(t *testing.T) {
		_, err := CheckCancellation(newBooking(BookingStatusPending), UserActor(outsiderID), t0)
		var authErr *AuthorizationError
		assert.True(t, errors.As(err, &authErr))
	})

	t.Run("Active booking is ineligible", func(t *testing.T) {
		e, err := CheckCancellation(newBooking(BookingStatusActive), UserActor(renterID), t0)
		var inelig *IneligibleError
		require.True(t, errors.As(err, &inelig))
		assert.Equal(t, BookingStatusActive, inelig.Status)
		assert.False(t, e.CanCancel)
	})

	t.Run("Inside the two hour window is ineligible", func(t *testing.T) {
		b := newBooking(BookingStatusApproved)
		b.StartDate = t0.Add(90 * time.Minute)
		e, err := CheckCancellation(b, UserActor(renterID), t0)
		var inelig *IneligibleError
		require.True(t, errors.As(err, &inelig))
		assert.Equal(t, b.TotalPriceCents, inelig.Eligibility.FeeCents)
		assert.Equal(t, int32(0), e.RefundCents)
	})

	t.Run("Eligible", func(t *testing.T) {
		e, err := CheckCancellation(newBooking(BookingStatusPending), UserActor(ownerID), t0)
		require.NoError(t, err)
		assert.True(t, e.CanCancel)
		assert.Equal(t, int32(0), e.FeeCents)
	})
}

func TestApplyCancellation(t *testing.T) {
	t.Run("Paid booking with a fee is partially refunded", func(t *testing.T) {
		b := newBooking(BookingStatusApproved)
		b.PaymentStatus = PaymentStatusPaid
		b.StartDate = t0.Add(12 * time.Hour)

		e, err := CheckCancellation(b, UserActor(renterID), t0)
		require.NoError(t, err)
		ApplyCancellation(b, e, UserActor(renterID), "plans changed", t0)

		assert.Equal(t, BookingStatusCancelled, b.Status)
		assert.Equal(t, PaymentStatusRefundPending, b.PaymentStatus)
		assert.Equal(t, int64(5000+b.DepositCents), RefundDueCents(b))
		assert.Equal(t, PaymentStatusPartiallyRefunded, SettledPaymentStatus(b))
		require.NotNil(t, b.CancelledAt)
		assert.True(t, b.CancelledAt.Equal(t0))
		require.NotNil(t, b.CancelledBy)
		assert.Equal(t, renterID, *b.CancelledBy)
		assert.Equal(t, "plans changed", *b.CancellationReason)
		assert.Equal(t, int32(5000), *b.CancellationFeeCents)
		assert.Equal(t, b.TotalPriceCents, *b.CancellationFeeCents+*b.RefundAmountCents)
	})

	t.Run("Paid booking without a fee is fully refunded", func(t *testing.T) {
		b := newBooking(BookingStatusPending)
		b.PaymentStatus = PaymentStatusPaid
		ApplyCancellation(b, CancellationPreview(b, t0), UserActor(ownerID), "", t0)
		assert.Equal(t, PaymentStatusRefundPending, b.PaymentStatus)
		assert.Equal(t, int32(10000), *b.RefundAmountCents)
		assert.Equal(t, PaymentStatusRefunded, SettledPaymentStatus(b))
	})

	t.Run("Unpaid booking keeps its payment status", func(t *testing.T) {
		b := newBooking(BookingStatusPending)
		ApplyCancellation(b, CancellationPreview(b, t0), UserActor(renterID), "", t0)
		assert.Equal(t, PaymentStatusPending, b.PaymentStatus)
	})

	t.Run("System cancellation records no user", func(t *testing.T) {
		b := newBooking(BookingStatusPending)
		ApplyCancellation(b, CancellationEligibility{CanCancel: true}, SystemActor, "expired", t0)
		assert.Nil(t, b.CancelledBy)
		assert.Equal(t, int32(0), *b.CancellationFeeCents)
		assert.Equal(t, b.TotalPriceCents, *b.RefundAmountCents)
	})
}

func TestRefundDueCents(t *testing.T) {
	t.Run("Uncancelled booking returns everything", func(t *testing.T) {
		b := newBooking(BookingStatusRejected)
		assert.Equal(t, int64(b.TotalPriceCents+b.DepositCents), RefundDueCents(b))
		assert.Equal(t, PaymentStatusRefunded, SettledPaymentStatus(b))
	})

	t.Run("Full fee still returns the deposit", func(t *testing.T) {
		b := newBooking(BookingStatusCancelled)
		b.DepositCents = 2000
		fee, refund := b.TotalPriceCents, int32(0)
		b.CancellationFeeCents, b.RefundAmountCents = &fee, &refund
		assert.Equal(t, int64(2000), RefundDueCents(b))
		assert.Equal(t, PaymentStatusPaid, SettledPaymentStatus(b))
	})
}

func TestRefundedPaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentStatusPaid, RefundedPaymentStatus(0, 10000))
	assert.Equal(t, PaymentStatusPartiallyRefunded, RefundedPaymentStatus(2500, 10000))
	assert.Equal(t, PaymentStatusRefunded, RefundedPaymentStatus(10000, 10000))
}
