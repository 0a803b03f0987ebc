package service

import (
	"context"
	"errors"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/repository"
)

const (
	maxDeliveryAttempts = 5
	redeliveryBatchSize = 100
)

type redeliverer interface {
	Redeliver(ctx context.Context, note *domain.Notification) error
}

type notificationService struct {
	noteRepo   repository.NotificationRepository
	dispatcher redeliverer
}

func NewNotificationService(noteRepo repository.NotificationRepository, dispatcher *NotificationDispatcher) NotificationService {
	return &notificationService{noteRepo: noteRepo, dispatcher: dispatcher}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}

func (s *notificationService) RetryUndelivered(ctx context.Context) (int, error) {
	notes, err := s.noteRepo.ListUndelivered(ctx, maxDeliveryAttempts, redeliveryBatchSize)
	if err != nil {
		return 0, err
	}

	var errs []error
	retried := 0
	for i := range notes {
		note := &notes[i]
		if !note.NeedsRedelivery() && note.EmailStatus != domain.DeliveryPending && note.PushStatus != domain.DeliveryPending {
			continue
		}
		if err := s.dispatcher.Redeliver(ctx, note); err != nil {
			logger.Error("Failed to redeliver notification", "notificationID", note.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		retried++
	}
	return retried, errors.Join(errs...)
}
