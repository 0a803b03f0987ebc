package domain

import (
	"fmt"
	"time"
)

type BookingAction string

const (
	ActionApprove  BookingAction = "approve"
	ActionReject   BookingAction = "reject"
	ActionActivate BookingAction = "activate"
	ActionComplete BookingAction = "complete"
	ActionCancel   BookingAction = "cancel"
)

// Actor is whoever triggers a transition: a user, or the system for payment callbacks and jobs.
type Actor struct {
	UserID int32
	System bool
}

var SystemActor = Actor{System: true}

func UserActor(userID int32) Actor {
	return Actor{UserID: userID}
}

func (a Actor) String() string {
	if a.System {
		return "system"
	}
	return fmt.Sprintf("user %d", a.UserID)
}

var transitions = map[BookingStatus]map[BookingAction]BookingStatus{
	BookingStatusPending: {
		ActionApprove:  BookingStatusApproved,
		ActionReject:   BookingStatusRejected,
		ActionActivate: BookingStatusActive,
		ActionCancel:   BookingStatusCancelled,
	},
	BookingStatusApproved: {
		ActionActivate: BookingStatusActive,
		ActionCancel:   BookingStatusCancelled,
	},
	BookingStatusActive: {
		ActionComplete: BookingStatusCompleted,
	},
}

// NextStatus looks up the state graph. Terminal statuses have no outgoing edges.
func NextStatus(from BookingStatus, action BookingAction) (BookingStatus, bool) {
	to, ok := transitions[from][action]
	return to, ok
}

func authorize(b *Booking, action BookingAction, actor Actor) error {
	deny := func(msg string) error {
		return &AuthorizationError{Action: string(action), ActorID: actor.UserID, Message: msg}
	}
	switch action {
	case ActionApprove, ActionReject:
		if actor.System || actor.UserID != b.OwnerID {
			return deny("only the tool owner can " + string(action) + " a booking")
		}
	case ActionActivate:
		if !actor.System {
			return deny("bookings are activated by payment confirmation")
		}
	case ActionComplete:
		if !actor.System && actor.UserID != b.OwnerID {
			return deny("only the tool owner can complete a booking")
		}
	case ActionCancel:
		if !actor.System && !b.IsParticipant(actor.UserID) {
			return deny("only the renter or the owner can cancel a booking")
		}
	default:
		return deny("unknown action")
	}
	return nil
}

// CheckTransition validates actor and state graph before any write and returns the target status.
func CheckTransition(b *Booking, action BookingAction, actor Actor) (BookingStatus, error) {
	if err := authorize(b, action, actor); err != nil {
		return "", err
	}
	to, ok := NextStatus(b.Status, action)
	if !ok {
		return "", NewValidationError("status", "cannot %s a booking in status %q", action, b.Status)
	}
	return to, nil
}

// CheckCancellation combines the guard with the fee schedule. Refusals come back as
// IneligibleError with the up-to-date eligibility.
func CheckCancellation(b *Booking, actor Actor, now time.Time) (CancellationEligibility, error) {
	if err := authorize(b, ActionCancel, actor); err != nil {
		return CancellationEligibility{}, err
	}
	e := CancellationPreview(b, now)
	if !e.CanCancel {
		return e, &IneligibleError{Status: b.Status, Eligibility: e}
	}
	return e, nil
}

// CancellationPreview is the eligibility a participant would get if they cancelled at now.
// Unlike EvaluateCancellation it never reports a terminal or active booking as cancellable.
func CancellationPreview(b *Booking, now time.Time) CancellationEligibility {
	e := EvaluateCancellation(b, now)
	if !b.Status.Cancellable() {
		e.CanCancel = false
		e.FeeCents = 0
		e.RefundCents = b.TotalPriceCents
		e.Reason = fmt.Sprintf("A booking in status %q can no longer be cancelled.", b.Status)
	}
	return e
}

// ApplyCancellation writes the cancellation fields onto b. Payment status only moves when
// money was actually captured, and then only to refund_pending until the refund goes through.
func ApplyCancellation(b *Booking, e CancellationEligibility, actor Actor, reason string, now time.Time) {
	cancelledAt := now
	fee := e.FeeCents
	refund := b.TotalPriceCents - fee
	b.Status = BookingStatusCancelled
	b.CancelledAt = &cancelledAt
	if !actor.System {
		by := actor.UserID
		b.CancelledBy = &by
	}
	b.CancellationReason = &reason
	b.CancellationFeeCents = &fee
	b.RefundAmountCents = &refund

	if b.PaymentStatus == PaymentStatusPaid && RefundDueCents(b) > 0 {
		b.PaymentStatus = PaymentStatusRefundPending
	}
}

// RefundDueCents is what goes back to the renter for a captured payment on a booking that
// will not run: the deposit plus the recorded refund, or the whole price when nothing was recorded.
func RefundDueCents(b *Booking) int64 {
	refund := b.TotalPriceCents
	if b.RefundAmountCents != nil {
		refund = *b.RefundAmountCents
	}
	return int64(refund) + int64(b.DepositCents)
}

// SettledPaymentStatus is the payment status once RefundDueCents has been returned.
func SettledPaymentStatus(b *Booking) PaymentStatus {
	refund := b.TotalPriceCents
	if b.RefundAmountCents != nil {
		refund = *b.RefundAmountCents
	}
	return RefundedPaymentStatus(refund, b.TotalPriceCents)
}

// RefundedPaymentStatus maps a refund against a captured total to the resulting payment status.
func RefundedPaymentStatus(refundCents, totalCents int32) PaymentStatus {
	switch {
	case refundCents <= 0:
		return PaymentStatusPaid
	case refundCents >= totalCents:
		return PaymentStatusRefunded
	default:
		return PaymentStatusPartiallyRefunded
	}
}
