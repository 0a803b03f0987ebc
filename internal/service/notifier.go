package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/events"
	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/metrics"
	"ubertool-booking/internal/repository"
	"ubertool-booking/internal/utils"
)

// NotificationDispatcher records every booking event as an in-app notification and fans it
// out to email, push and the event stream. Delivery failures are logged and retried later.
type NotificationDispatcher struct {
	noteRepo  repository.NotificationRepository
	userRepo  repository.UserRepository
	toolRepo  repository.ToolRepository
	email     EmailSender
	push      PushSender
	publisher events.Publisher

	async bool
	wg    sync.WaitGroup
}

func NewNotificationDispatcher(noteRepo repository.NotificationRepository, userRepo repository.UserRepository, toolRepo repository.ToolRepository,
	email EmailSender, push PushSender, publisher events.Publisher, async bool) *NotificationDispatcher {
	return &NotificationDispatcher{
		noteRepo:  noteRepo,
		userRepo:  userRepo,
		toolRepo:  toolRepo,
		email:     email,
		push:      push,
		publisher: publisher,
		async:     async,
	}
}

func (d *NotificationDispatcher) Notify(ctx context.Context, event domain.BookingEvent) {
	if !d.async {
		d.deliver(ctx, event)
		return
	}
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(ctx, event)
	}()
}

// Wait blocks until in-flight asynchronous deliveries finish.
func (d *NotificationDispatcher) Wait() {
	d.wg.Wait()
}

func (d *NotificationDispatcher) deliver(ctx context.Context, event domain.BookingEvent) {
	methodName := "NotificationDispatcher.deliver"
	logger.EnterMethod(methodName, "eventType", event.Type, "bookingID", event.Booking.ID, "recipientID", event.RecipientID)

	recipient, err := d.userRepo.GetByID(ctx, event.RecipientID)
	if err != nil {
		logger.Error("Failed to load notification recipient", "userID", event.RecipientID, "error", err)
		recipient = nil
	}

	toolName := fmt.Sprintf("tool #%d", event.Booking.ToolID)
	if tool, err := d.toolRepo.GetByID(ctx, event.Booking.ToolID); err == nil {
		toolName = tool.Name
	}

	title, message := renderEvent(event, toolName)
	bookingID := event.Booking.ID
	note := &domain.Notification{
		UserID:    event.RecipientID,
		BookingID: &bookingID,
		Type:      event.Type,
		Title:     title,
		Message:   message,
		Attributes: map[string]string{
			"event_id":   event.ID.String(),
			"booking_id": bookingID.String(),
			"status":     string(event.Booking.Status),
		},
		EmailStatus: domain.DeliveryPending,
		PushStatus:  domain.DeliveryPending,
	}

	persisted := true
	if err := d.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to save notification", "userID", note.UserID, "bookingID", bookingID, "error", err)
		persisted = false
	}

	d.sendChannels(ctx, note, recipient)
	if persisted {
		if err := d.noteRepo.UpdateDelivery(ctx, note); err != nil {
			logger.Error("Failed to record delivery status", "notificationID", note.ID, "error", err)
		}
	}

	if err := d.publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish booking event", "eventID", event.ID, "type", event.Type, "error", err)
	}

	logger.ExitMethod(methodName, "notificationID", note.ID, "emailStatus", note.EmailStatus, "pushStatus", note.PushStatus)
}

// Redeliver retries the channels of note that are still pending or failed.
func (d *NotificationDispatcher) Redeliver(ctx context.Context, note *domain.Notification) error {
	recipient, err := d.userRepo.GetByID(ctx, note.UserID)
	if err != nil {
		return fmt.Errorf("load recipient %d: %w", note.UserID, err)
	}
	d.sendChannels(ctx, note, recipient)
	return d.noteRepo.UpdateDelivery(ctx, note)
}

func (d *NotificationDispatcher) sendChannels(ctx context.Context, note *domain.Notification, recipient *domain.User) {
	if needsSend(note.EmailStatus) {
		switch {
		case recipient == nil || recipient.Email == "":
			note.EmailStatus = domain.DeliverySkipped
		default:
			plain := note.Message + "\n\nThe Ubertool Team"
			body := "<p>" + html.EscapeString(note.Message) + "</p><p>The Ubertool Team</p>"
			note.EmailStatus = deliveryStatus(d.email.Send(ctx, recipient.Email, recipient.Name, note.Title, plain, body))
			if note.EmailStatus == domain.DeliveryFailed {
				logger.Warn("Email delivery failed", "notificationID", note.ID, "userID", note.UserID)
			}
		}
		metrics.IncDelivery("email", string(note.EmailStatus))
	}

	if needsSend(note.PushStatus) {
		switch {
		case recipient == nil || recipient.PushToken == "":
			note.PushStatus = domain.DeliverySkipped
		default:
			note.PushStatus = deliveryStatus(d.push.Send(ctx, recipient.PushToken, note.Title, note.Message, note.Attributes))
			if note.PushStatus == domain.DeliveryFailed {
				logger.Warn("Push delivery failed", "notificationID", note.ID, "userID", note.UserID)
			}
		}
		metrics.IncDelivery("push", string(note.PushStatus))
	}
	note.Attempts++
}

func needsSend(s domain.DeliveryStatus) bool {
	return s == domain.DeliveryPending || s == domain.DeliveryFailed
}

func deliveryStatus(err error) domain.DeliveryStatus {
	if err != nil {
		return domain.DeliveryFailed
	}
	return domain.DeliverySent
}

func formatCents(cents int32) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

func renderEvent(event domain.BookingEvent, toolName string) (string, string) {
	b := event.Booking
	period := fmt.Sprintf("%s from %s to %s", toolName, utils.FormatDate(b.StartDate), utils.FormatDate(b.EndDate))

	var title string
	var msg strings.Builder
	switch event.Type {
	case domain.EventBookingCreated:
		title = "New booking request"
		fmt.Fprintf(&msg, "You have a new request to rent %s. Total %s.", period, formatCents(b.TotalPriceCents))
	case domain.EventBookingApproved:
		title = "Booking approved"
		fmt.Fprintf(&msg, "Your booking of %s was approved.", period)
	case domain.EventBookingRejected:
		title = "Booking rejected"
		fmt.Fprintf(&msg, "Your booking of %s was rejected.", period)
	case domain.EventBookingCancelled:
		title = "Booking cancelled"
		fmt.Fprintf(&msg, "The booking of %s was cancelled.", period)
		if b.CancellationFeeCents != nil {
			fmt.Fprintf(&msg, " Cancellation fee %s, refund %s", formatCents(event.FeeCents), formatCents(event.RefundCents))
			if b.PaymentStatus != domain.PaymentStatusPending && b.PaymentStatus != domain.PaymentStatusFailed {
				fmt.Fprintf(&msg, " plus the %s deposit", formatCents(b.DepositCents))
			}
			msg.WriteString(".")
		}
	case domain.EventBookingActivated:
		title = "Booking paid"
		fmt.Fprintf(&msg, "Payment for %s was received. The rental is now active.", period)
	case domain.EventBookingCompleted:
		title = "Rental completed"
		fmt.Fprintf(&msg, "The rental of %s is complete.", period)
	case domain.EventPaymentFailed:
		title = "Payment failed"
		fmt.Fprintf(&msg, "Payment for your booking of %s failed. Please retry with another payment method.", period)
	default:
		title = "Booking update"
		fmt.Fprintf(&msg, "Your booking of %s was updated.", period)
	}
	if event.Reason != "" {
		fmt.Fprintf(&msg, " Reason: %s", event.Reason)
	}
	return title, msg.String()
}
