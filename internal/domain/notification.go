package domain

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "PENDING"
	DeliverySent    DeliveryStatus = "SENT"
	DeliveryFailed  DeliveryStatus = "FAILED"
	DeliverySkipped DeliveryStatus = "SKIPPED"
)

// Notification is the in-app record of a booking event for one recipient. It lives in its own
// table and tracks out-of-band delivery separately from the booking.
type Notification struct {
	ID          int32             `json:"id"`
	UserID      int32             `json:"user_id"`
	BookingID   *uuid.UUID        `json:"booking_id,omitempty"`
	Type        EventType         `json:"type"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	IsRead      bool              `json:"is_read"`
	Attributes  map[string]string `json:"attributes"`
	EmailStatus DeliveryStatus    `json:"email_status"`
	PushStatus  DeliveryStatus    `json:"push_status"`
	Attempts    int32             `json:"attempts"`
	CreatedOn   time.Time         `json:"created_on"`
}

func (n *Notification) NeedsRedelivery() bool {
	return n.EmailStatus == DeliveryFailed || n.PushStatus == DeliveryFailed
}
