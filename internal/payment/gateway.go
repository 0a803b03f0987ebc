// Package payment talks to the card processor. Amounts are integer cents.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

type Intent struct {
	ID           string
	ClientSecret string
}

type EventKind string

const (
	EventIntentSucceeded EventKind = "payment_intent.succeeded"
	EventIntentFailed    EventKind = "payment_intent.payment_failed"
)

// Event is a verified webhook notification about a payment intent.
type Event struct {
	ID        string
	Kind      EventKind
	IntentID  string
	BookingID string
	// Handled is false for event types the booking flow does not act on.
	Handled bool
}

type Gateway interface {
	CreatePaymentIntent(ctx context.Context, bookingID uuid.UUID, amountCents int64, currency string) (*Intent, error)
	CancelPaymentIntent(ctx context.Context, intentID string) error
	// Refund returns the processor's refund id. idempotencyKey makes retries safe.
	Refund(ctx context.Context, intentID string, amountCents int64, idempotencyKey string) (string, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// LocalGateway issues fake intents so the service runs without processor credentials.
// Payments never complete on their own; webhooks are rejected.
type LocalGateway struct{}

func (LocalGateway) CreatePaymentIntent(_ context.Context, bookingID uuid.UUID, _ int64, _ string) (*Intent, error) {
	id := "pi_local_" + bookingID.String()
	return &Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (LocalGateway) CancelPaymentIntent(context.Context, string) error {
	return nil
}

func (LocalGateway) Refund(_ context.Context, intentID string, _ int64, _ string) (string, error) {
	return "re_local_" + intentID, nil
}

func (LocalGateway) ParseWebhook([]byte, string) (*Event, error) {
	return nil, fmt.Errorf("local gateway: %w", ErrInvalidSignature)
}
