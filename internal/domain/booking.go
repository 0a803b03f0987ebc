package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BlockingStatuses are the statuses that reserve a tool's dates.
var BlockingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusApproved,
	BookingStatusActive,
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusApproved, BookingStatusRejected,
		BookingStatusActive, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// BlocksAvailability reports whether a booking in this status holds its dates.
func (s BookingStatus) BlocksAvailability() bool {
	for _, b := range BlockingStatuses {
		if s == b {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusRejected || s == BookingStatusCompleted || s == BookingStatusCancelled
}

func (s BookingStatus) Cancellable() bool {
	return s == BookingStatusPending || s == BookingStatusApproved
}

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentStatusFailed            PaymentStatus = "failed"
	// PaymentStatusRefundPending marks captured money that is owed back but not yet confirmed
	// returned by the processor.
	PaymentStatusRefundPending PaymentStatus = "refund_pending"
)

type Booking struct {
	ID       uuid.UUID `json:"id"`
	ToolID   int32     `json:"tool_id"`
	RenterID int32     `json:"renter_id"`
	// OwnerID is copied from the tool when the booking is created and never follows later
	// ownership changes.
	OwnerID   int32         `json:"owner_id"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Status    BookingStatus `json:"status"`

	// Price snapshot fields, captured from the tool at creation time.
	DailyRateCents  int32 `json:"daily_rate_cents"`
	TotalPriceCents int32 `json:"total_price_cents"`
	DepositCents    int32 `json:"deposit_cents"`

	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty"`
	// PaymentClientSecret is handed to the renter once, right after creation. It is not stored.
	PaymentClientSecret string `json:"payment_client_secret,omitempty"`
	RejectionReason     string `json:"rejection_reason,omitempty"`

	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy          *int32     `json:"cancelled_by,omitempty"`
	CancellationReason   *string    `json:"cancellation_reason,omitempty"`
	CancellationFeeCents *int32     `json:"cancellation_fee_cents,omitempty"`
	RefundAmountCents    *int32     `json:"refund_amount_cents,omitempty"`

	Version   int32     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingRef is the id-only view of a booking used in conflict reports and listings.
type BookingRef struct {
	ID        uuid.UUID     `json:"id"`
	ToolID    int32         `json:"tool_id"`
	RenterID  int32         `json:"renter_id"`
	OwnerID   int32         `json:"owner_id"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Status    BookingStatus `json:"status"`
}

// BookingDetailed is a booking with its tool and both participants hydrated.
type BookingDetailed struct {
	Booking
	Tool   *Tool `json:"tool"`
	Renter *User `json:"renter"`
	Owner  *User `json:"owner"`
}

func (b *Booking) Ref() BookingRef {
	return BookingRef{
		ID:        b.ID,
		ToolID:    b.ToolID,
		RenterID:  b.RenterID,
		OwnerID:   b.OwnerID,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		Status:    b.Status,
	}
}

func (b *Booking) Period() Period {
	return Period{Start: b.StartDate, End: b.EndDate}
}

// IsParticipant reports whether userID is the renter or the owner.
func (b *Booking) IsParticipant(userID int32) bool {
	return userID != 0 && (userID == b.RenterID || userID == b.OwnerID)
}

// CounterParty returns the participant on the other side of userID.
func (b *Booking) CounterParty(userID int32) int32 {
	if userID == b.OwnerID {
		return b.RenterID
	}
	return b.OwnerID
}

// Period is a rental date range.
type Period struct {
	Start time.Time
	End   time.Time
}

// Overlaps uses inclusive bounds: a booking ending at the instant another starts conflicts
// with it, leaving the owner a turnover point between rentals.
func (p Period) Overlaps(o Period) bool {
	return !p.Start.After(o.End) && !p.End.Before(o.Start)
}

// BookingReportRow is one line of the admin bookings report.
type BookingReportRow struct {
	BookingID            uuid.UUID
	ToolName             string
	RenterName           string
	OwnerName            string
	StartDate            time.Time
	EndDate              time.Time
	Status               BookingStatus
	PaymentStatus        PaymentStatus
	TotalPriceCents      int32
	DepositCents         int32
	CancellationFeeCents int32
	RefundAmountCents    int32
	CreatedAt            time.Time
}
