package domain

import (
	"fmt"
	"time"
)

const (
	CancellationGracePeriod = time.Hour
	NoCancellationWindow    = 2 * time.Hour
	HalfFeeWindow           = 24 * time.Hour
	QuarterFeeDays          = 3

	halfFeePercent    = 50
	quarterFeePercent = 25
)

type CancellationEligibility struct {
	CanCancel       bool    `json:"can_cancel"`
	Reason          string  `json:"reason"`
	FeeCents        int32   `json:"fee_cents"`
	RefundCents     int32   `json:"refund_cents"`
	HoursUntilStart float64 `json:"hours_until_start"`
	DaysUntilStart  float64 `json:"days_until_start"`
}

// EvaluateCancellation applies the fee schedule to a booking snapshot at now. The first
// matching rule wins, so the grace period beats every later rule including the status check.
func EvaluateCancellation(b *Booking, now time.Time) CancellationEligibility {
	untilStart := b.StartDate.Sub(now)
	e := CancellationEligibility{
		CanCancel:       true,
		RefundCents:     b.TotalPriceCents,
		HoursUntilStart: untilStart.Hours(),
		DaysUntilStart:  untilStart.Hours() / 24,
	}

	switch {
	case now.Sub(b.CreatedAt) <= CancellationGracePeriod:
		e.Reason = "Free cancellation within one hour of booking."
	case !b.Status.Cancellable():
		e.CanCancel = false
		e.Reason = fmt.Sprintf("A booking in status %q can no longer be cancelled.", b.Status)
	case untilStart < NoCancellationWindow:
		e.CanCancel = false
		e.FeeCents = b.TotalPriceCents
		e.RefundCents = 0
		e.Reason = "Cancellation is not possible less than 2 hours before the rental starts."
	case untilStart < HalfFeeWindow:
		e.FeeCents = PercentOf(b.TotalPriceCents, halfFeePercent)
		e.RefundCents = b.TotalPriceCents - e.FeeCents
		e.Reason = "Cancellation less than 24 hours before the start incurs a 50% fee."
	case e.DaysUntilStart < QuarterFeeDays:
		e.FeeCents = PercentOf(b.TotalPriceCents, quarterFeePercent)
		e.RefundCents = b.TotalPriceCents - e.FeeCents
		e.Reason = "Cancellation less than 3 days before the start incurs a 25% fee."
	default:
		e.Reason = "Free cancellation 3 or more days before the start."
	}
	return e
}

// PercentOf rounds half up on whole cents.
func PercentOf(amountCents int32, percent int32) int32 {
	return int32((int64(amountCents)*int64(percent) + 50) / 100)
}
