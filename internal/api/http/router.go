package http

import (
	"context"
	"net/http"

	"ubertool-booking/internal/payment"
	"ubertool-booking/internal/security"
	"ubertool-booking/internal/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Bookings      service.BookingService
	Notifications service.NotificationService
	Reports       service.ReportService
	Payments      payment.Gateway
	Tokens        security.TokenManager
	// Health reports readiness of the backing stores. Nil means always healthy.
	Health      func(ctx context.Context) error
	RateLimiter *RateLimiter
}

func NewRouter(deps RouterDeps) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger)
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware)
	}
	r.Use(NewAuthMiddleware(deps.Tokens).Handler)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler(deps.Health)).Methods(http.MethodGet)

	webhooks := NewWebhookHandler(deps.Payments, deps.Bookings)
	r.HandleFunc("/api/v1/webhooks/stripe", webhooks.HandleStripe).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()

	bookings := NewBookingHandler(deps.Bookings)
	api.HandleFunc("/bookings", bookings.CreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}", bookings.GetBooking).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/cancellation", bookings.PreviewCancellation).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/cancel", bookings.CancelBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/confirm", bookings.ConfirmBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/reject", bookings.RejectBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/complete", bookings.CompleteBooking).Methods(http.MethodPost)
	api.HandleFunc("/rentals", bookings.ListRentals).Methods(http.MethodGet)
	api.HandleFunc("/lendings", bookings.ListLendings).Methods(http.MethodGet)
	api.HandleFunc("/tools/{id}/availability", bookings.ToolAvailability).Methods(http.MethodGet)

	notes := NewNotificationHandler(deps.Notifications)
	api.HandleFunc("/notifications", notes.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", notes.MarkAsRead).Methods(http.MethodPost)

	reports := NewReportHandler(deps.Reports)
	api.HandleFunc("/admin/reports/bookings.xlsx", reports.BookingsReport).Methods(http.MethodGet)

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				writeMessage(w, http.StatusServiceUnavailable, err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
