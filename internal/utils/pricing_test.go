package utils

import (
	"testing"
	"time"

	"ubertool-booking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRentalDate(t *testing.T) {
	t.Run("Date only", func(t *testing.T) {
		d, err := ParseRentalDate("2024-01-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("RFC 3339 is normalised to UTC", func(t *testing.T) {
		d, err := ParseRentalDate("2024-01-15T10:00:00+02:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), d)
	})

	t.Run("Invalid format", func(t *testing.T) {
		_, err := ParseRentalDate("2024/01/15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid date")
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := ParseRentalDate("  ")
		assert.EqualError(t, err, "date is required")
	})
}

func TestRentalDays(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		end      time.Time
		expected int
	}{
		{"one day", base.AddDate(0, 0, 1), 1},
		{"four days", base.AddDate(0, 0, 4), 4},
		{"partial day rounds up", base.Add(25 * time.Hour), 2},
		{"same instant", base, 0},
		{"end before start", base.Add(-time.Hour), 0},
		{"thirty days", base.AddDate(0, 0, 30), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RentalDays(base, tt.end))
		})
	}
}

func TestCalculateRentalPrice(t *testing.T) {
	tool := &domain.Tool{ID: 7, PricePerDayCents: 2500, DepositCents: 10000}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Daily rate times days", func(t *testing.T) {
		p, err := CalculateRentalPrice(start, start.AddDate(0, 0, 4), tool)
		require.NoError(t, err)
		assert.Equal(t, 4, p.Days)
		assert.Equal(t, int32(10000), p.TotalPriceCents)
		assert.Equal(t, int32(10000), p.DepositCents)
		assert.Equal(t, int64(20000), p.ChargeCents())
	})

	t.Run("Reversed dates", func(t *testing.T) {
		_, err := CalculateRentalPrice(start, start, tool)
		assert.EqualError(t, err, "end date must be after start date")
	})

	t.Run("Negative price", func(t *testing.T) {
		_, err := CalculateRentalPrice(start, start.AddDate(0, 0, 1), &domain.Tool{ID: 1, PricePerDayCents: -1})
		assert.Error(t, err)
	})
}
