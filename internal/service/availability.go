package service

import (
	"context"
	"time"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/repository"

	"github.com/google/uuid"
)

type availabilityChecker struct {
	bookingRepo repository.BookingRepository
}

func NewAvailabilityChecker(bookingRepo repository.BookingRepository) AvailabilityChecker {
	return &availabilityChecker{bookingRepo: bookingRepo}
}

func (c *availabilityChecker) IsAvailable(ctx context.Context, toolID int32, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	conflicts, err := c.Conflicts(ctx, toolID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// Conflicts lists the blocking bookings that overlap [start, end]. The overlap test is
// re-applied here so a repository returning a broader candidate set stays correct.
func (c *availabilityChecker) Conflicts(ctx context.Context, toolID int32, start, end time.Time, excludeID *uuid.UUID) ([]domain.BookingRef, error) {
	candidates, err := c.bookingRepo.FindOverlapping(ctx, toolID, start, end, domain.BlockingStatuses, excludeID)
	if err != nil {
		logger.Error("Failed to load bookings for availability check", "toolID", toolID, "error", err)
		return nil, err
	}

	want := domain.Period{Start: start, End: end}
	var conflicts []domain.BookingRef
	for _, ref := range candidates {
		if excludeID != nil && ref.ID == *excludeID {
			continue
		}
		if !ref.Status.BlocksAvailability() {
			continue
		}
		if (domain.Period{Start: ref.StartDate, End: ref.EndDate}).Overlaps(want) {
			conflicts = append(conflicts, ref)
		}
	}
	return conflicts, nil
}
