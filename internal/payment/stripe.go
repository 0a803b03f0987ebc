package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ubertool-booking/internal/logger"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway uses the default Stripe backends when backends is nil.
func NewStripeGateway(secretKey, webhookSecret string, backends *stripe.Backends) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{api: api, webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, bookingID uuid.UUID, amountCents int64, currency string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("booking_id", bookingID.String())
	params.SetIdempotencyKey("booking-intent-" + bookingID.String())

	logger.ExternalServiceCall("stripe", "PaymentIntents.New", "bookingID", bookingID, "amountCents", amountCents)
	pi, err := g.api.PaymentIntents.New(params)
	logger.ExternalServiceResult("stripe", "PaymentIntents.New", err, "bookingID", bookingID)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) CancelPaymentIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	logger.ExternalServiceCall("stripe", "PaymentIntents.Cancel", "intentID", intentID)
	_, err := g.api.PaymentIntents.Cancel(intentID, params)
	logger.ExternalServiceResult("stripe", "PaymentIntents.Cancel", err, "intentID", intentID)
	if err != nil {
		return fmt.Errorf("cancel payment intent %s: %w", intentID, err)
	}
	return nil
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string, amountCents int64, idempotencyKey string) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(amountCents),
	}
	params.Context = ctx
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	logger.ExternalServiceCall("stripe", "Refunds.New", "intentID", intentID, "amountCents", amountCents)
	r, err := g.api.Refunds.New(params)
	logger.ExternalServiceResult("stripe", "Refunds.New", err, "intentID", intentID)
	if err != nil {
		return "", fmt.Errorf("refund %s: %w", intentID, err)
	}
	return r.ID, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: event.ID, Kind: EventKind(event.Type)}
	switch out.Kind {
	case EventIntentSucceeded, EventIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.IntentID = pi.ID
		out.BookingID = pi.Metadata["booking_id"]
		out.Handled = true
	}
	return out, nil
}
