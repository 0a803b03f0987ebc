package http

import (
	"errors"
	"io"
	"net/http"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/payment"
	"ubertool-booking/internal/service"
)

const maxWebhookBytes = 64 << 10

// WebhookHandler receives payment processor callbacks. Processors retry on any non-2xx answer,
// so only failures worth retrying return one.
type WebhookHandler struct {
	payments   payment.Gateway
	bookingSvc service.BookingService
}

func NewWebhookHandler(payments payment.Gateway, bookingSvc service.BookingService) *WebhookHandler {
	return &WebhookHandler{payments: payments, bookingSvc: bookingSvc}
}

func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "unreadable body")
		return
	}

	event, err := h.payments.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			logger.WarnContext(r.Context(), "Rejected webhook", "error", err)
			writeMessage(w, http.StatusBadRequest, "invalid signature")
			return
		}
		writeError(w, r, err)
		return
	}

	if !event.Handled {
		logger.DebugContext(r.Context(), "Ignoring webhook event", "eventID", event.ID, "kind", event.Kind)
		w.WriteHeader(http.StatusOK)
		return
	}

	switch event.Kind {
	case payment.EventIntentSucceeded:
		_, err = h.bookingSvc.HandlePaymentSucceeded(r.Context(), event.IntentID)
	case payment.EventIntentFailed:
		_, err = h.bookingSvc.HandlePaymentFailed(r.Context(), event.IntentID)
	}

	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, domain.ErrNotFound):
		logger.WarnContext(r.Context(), "Webhook for unknown payment intent", "eventID", event.ID, "intentID", event.IntentID)
		w.WriteHeader(http.StatusOK)
	case domain.IsConflict(err):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Webhook processing failed", "eventID", event.ID, "intentID", event.IntentID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "webhook processing failed")
	}
}
