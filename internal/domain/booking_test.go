package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(n int) time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestPeriod_Overlaps(t *testing.T) {
	booked := Period{Start: day(3), End: day(7)}

	t.Run("Partial overlap", func(t *testing.T) {
		assert.True(t, booked.Overlaps(Period{Start: day(5), End: day(9)}))
	})

	t.Run("Touching boundary counts as overlap", func(t *testing.T) {
		assert.True(t, booked.Overlaps(Period{Start: day(7), End: day(10)}))
		assert.True(t, booked.Overlaps(Period{Start: day(1), End: day(3)}))
	})

	t.Run("Disjoint", func(t *testing.T) {
		assert.False(t, booked.Overlaps(Period{Start: day(8), End: day(10)}))
		assert.False(t, booked.Overlaps(Period{Start: day(0), End: day(2)}))
	})

	t.Run("Containment", func(t *testing.T) {
		assert.True(t, booked.Overlaps(Period{Start: day(4), End: day(5)}))
		assert.True(t, booked.Overlaps(Period{Start: day(0), End: day(20)}))
	})
}

func TestPeriod_OverlapsIsSymmetricAndReflexive(t *testing.T) {
	var periods []Period
	for s := 0; s < 6; s++ {
		for e := s + 1; e <= 7; e++ {
			periods = append(periods, Period{Start: day(s), End: day(e)})
		}
	}

	for _, a := range periods {
		assert.True(t, a.Overlaps(a), "period must overlap itself: %v", a)
		for _, b := range periods {
			assert.Equal(t, a.Overlaps(b), b.Overlaps(a), "asymmetric for %v and %v", a, b)
		}
	}
}

func TestBookingStatus(t *testing.T) {
	tests := []struct {
		status      BookingStatus
		blocks      bool
		terminal    bool
		cancellable bool
	}{
		{BookingStatusPending, true, false, true},
		{BookingStatusApproved, true, false, true},
		{BookingStatusActive, true, false, false},
		{BookingStatusRejected, false, true, false},
		{BookingStatusCompleted, false, true, false},
		{BookingStatusCancelled, false, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.True(t, tt.status.Valid())
			assert.Equal(t, tt.blocks, tt.status.BlocksAvailability())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.cancellable, tt.status.Cancellable())
		})
	}

	assert.False(t, BookingStatus("overdue").Valid())
}

func TestBooking_Participants(t *testing.T) {
	b := &Booking{RenterID: 1, OwnerID: 2}

	assert.True(t, b.IsParticipant(1))
	assert.True(t, b.IsParticipant(2))
	assert.False(t, b.IsParticipant(3))
	assert.False(t, b.IsParticipant(0))
	assert.Equal(t, int32(2), b.CounterParty(1))
	assert.Equal(t, int32(1), b.CounterParty(2))
}
