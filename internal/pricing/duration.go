// Package pricing turns a rental request into money: rental days, extras,
// coupon discount, total and payment status. Everything here is pure.
package pricing

import (
	"fmt"
	"strings"
	"time"

	"rental-booking-backend/internal/domain"
)

const (
	timeLayout = "15:04"
	day        = 24 * time.Hour
)

// ParseDate converts a yyyy-mm-dd formatted string into a UTC midnight time
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domain.Validation("invalid date %q, expected yyyy-mm-dd", s)
	}
	return t, nil
}

// ParseTimeOfDay validates an HH:MM string and returns its offset from midnight
func ParseTimeOfDay(s string) (time.Duration, error) {
	t, err := time.Parse(timeLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, domain.Validation("invalid time %q, expected HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// CombineDateTime returns the wall-clock instant for a calendar date and HH:MM.
// The instant is expressed in UTC so that DST transitions never stretch or
// shrink a rental day.
func CombineDateTime(date time.Time, hhmm string) (time.Time, error) {
	offset, err := ParseTimeOfDay(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(offset), nil
}

// RentalDays counts billable days between pickup and dropoff. Any started
// 24h period is billed as a full day.
func RentalDays(pickupDate time.Time, pickupTime string, dropoffDate time.Time, dropoffTime string) (int, error) {
	pickup, err := CombineDateTime(pickupDate, pickupTime)
	if err != nil {
		return 0, err
	}
	dropoff, err := CombineDateTime(dropoffDate, dropoffTime)
	if err != nil {
		return 0, err
	}

	if !dropoff.After(pickup) {
		return 0, domain.NewError(domain.KindInvalidRange,
			"dropoff %s %s must be after pickup %s %s",
			dropoffDate.Format(domain.DateLayout), dropoffTime,
			pickupDate.Format(domain.DateLayout), pickupTime)
	}

	diff := dropoff.Sub(pickup)
	days := int(diff / day)
	if diff%day != 0 {
		days++
	}
	return days, nil
}

// FormatCents renders minor units as a decimal amount, e.g. 27000 -> "270.00"
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
