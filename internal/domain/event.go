package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingCreated   EventType = "booking_created"
	EventBookingApproved  EventType = "booking_approved"
	EventBookingRejected  EventType = "booking_rejected"
	EventBookingCancelled EventType = "booking_cancelled"
	EventBookingActivated EventType = "booking_activated"
	EventBookingCompleted EventType = "booking_completed"
	EventPaymentFailed    EventType = "payment_failed"
)

// BookingEvent is emitted after a committed booking change, addressed to one recipient.
type BookingEvent struct {
	ID          uuid.UUID `json:"id"`
	Type        EventType `json:"type"`
	Booking     Booking   `json:"booking"`
	RecipientID int32     `json:"recipient_id"`
	ActorID     int32     `json:"actor_id,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	FeeCents    int32     `json:"fee_cents,omitempty"`
	RefundCents int32     `json:"refund_cents,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewBookingEvent(t EventType, b *Booking, recipientID int32, now time.Time) BookingEvent {
	snapshot := *b
	snapshot.PaymentClientSecret = ""
	return BookingEvent{
		ID:          uuid.New(),
		Type:        t,
		Booking:     snapshot,
		RecipientID: recipientID,
		OccurredAt:  now,
	}
}
