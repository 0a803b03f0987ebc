package utils

import (
	"fmt"
	"math"
	"strings"
	"time"

	"ubertool-booking/internal/domain"
)

const dateLayout = "2006-01-02"

// RentalPrice is the price snapshot taken when a booking is created.
type RentalPrice struct {
	Days            int
	DailyRateCents  int32
	TotalPriceCents int32
	DepositCents    int32
}

// ChargeCents is what the renter authorizes up front: rental plus deposit.
func (p RentalPrice) ChargeCents() int64 {
	return int64(p.TotalPriceCents) + int64(p.DepositCents)
}

// ParseRentalDate accepts a bare yyyy-mm-dd date (midnight UTC) or an RFC 3339 timestamp.
func ParseRentalDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd or RFC 3339", value)
	}
	return t, nil
}

// FormatDate renders the calendar date part only.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// RentalDays counts the days in [start, end). A started day is charged as a full day.
func RentalDays(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// CalculateRentalPrice charges the tool's daily rate for every rental day.
func CalculateRentalPrice(start, end time.Time, tool *domain.Tool) (RentalPrice, error) {
	days := RentalDays(start, end)
	if days <= 0 {
		return RentalPrice{}, fmt.Errorf("end date must be after start date")
	}
	if tool.PricePerDayCents < 0 || tool.DepositCents < 0 {
		return RentalPrice{}, fmt.Errorf("tool %d has a negative price", tool.ID)
	}
	total := int64(tool.PricePerDayCents) * int64(days)
	if total > math.MaxInt32 {
		return RentalPrice{}, fmt.Errorf("rental price overflows")
	}
	return RentalPrice{
		Days:            days,
		DailyRateCents:  tool.PricePerDayCents,
		TotalPriceCents: int32(total),
		DepositCents:    tool.DepositCents,
	}, nil
}
