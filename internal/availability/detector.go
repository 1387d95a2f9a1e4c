// Package availability decides whether a vehicle is free for a date range.
package availability

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"rental-booking-backend/internal/domain"
)

// Policy holds the booking rules that are a business decision rather than a fact.
type Policy struct {
	// AllowSameDayTurnover lets a new booking pick up on the day an existing
	// one drops off. When false, both ranges are treated as closed intervals
	// and touching ends conflict.
	AllowSameDayTurnover bool
}

// Candidate is the date range being requested for a vehicle.
type Candidate struct {
	VehicleID   string
	PickupDate  time.Time
	DropoffDate time.Time
	// ExcludeBookingID skips the booking being edited.
	ExcludeBookingID string
}

// Occupancy is what already holds a vehicle around the candidate range.
type Occupancy struct {
	Bookings []domain.Booking
	Blocked  []domain.BlockedPeriod
}

type Detector struct {
	policy Policy
}

func NewDetector(policy Policy) *Detector {
	return &Detector{policy: policy}
}

// Policy returns the rules this detector applies.
func (d *Detector) Policy() Policy {
	return d.policy
}

// Detect lists every booking and blocked period that collides with c.
// Cancelled bookings and other vehicles are ignored. An empty result means
// the vehicle is available.
func (d *Detector) Detect(c Candidate, occ Occupancy) []domain.Conflict {
	var conflicts []domain.Conflict

	for _, b := range occ.Bookings {
		if b.VehicleID != c.VehicleID || !b.IsActive() || (c.ExcludeBookingID != "" && b.ID == c.ExcludeBookingID) {
			continue
		}
		if !d.bookingsOverlap(c.PickupDate, c.DropoffDate, b.PickupDate, b.DropoffDate) {
			continue
		}
		conflicts = append(conflicts, domain.Conflict{
			Kind:          domain.ConflictBooking,
			BookingID:     b.ID,
			BookingNumber: b.BookingNumber,
			CustomerName:  b.Customer.Name,
			StartDate:     b.PickupDate,
			EndDate:       b.DropoffDate,
		})
	}

	for _, p := range occ.Blocked {
		if p.VehicleID != c.VehicleID {
			continue
		}
		if !ClosedOverlap(c.PickupDate, c.DropoffDate, p.StartDate, p.EndDate) {
			continue
		}
		conflicts = append(conflicts, domain.Conflict{
			Kind:      domain.ConflictBlocked,
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
			Reason:    p.Reason,
		})
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].StartDate.Before(conflicts[j].StartDate)
	})
	return conflicts
}

// Check is Detect turned into an error carrying the conflicts.
func (d *Detector) Check(c Candidate, occ Occupancy) error {
	conflicts := d.Detect(c, occ)
	if len(conflicts) == 0 {
		return nil
	}
	return UnavailableError(conflicts)
}

func (d *Detector) bookingsOverlap(p1, d1, p2, d2 time.Time) bool {
	if d.policy.AllowSameDayTurnover {
		return p1.Before(d2) && d1.After(p2)
	}
	return ClosedOverlap(p1, d1, p2, d2)
}

// ClosedOverlap reports whether [p1, d1] and [p2, d2] share at least one day.
func ClosedOverlap(p1, d1, p2, d2 time.Time) bool {
	return !p1.After(d2) && !d1.Before(p2)
}

// UnavailableError builds the vehicle_unavailable error listing each conflict.
func UnavailableError(conflicts []domain.Conflict) *domain.Error {
	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		span := c.StartDate.Format(domain.DateLayout) + " to " + c.EndDate.Format(domain.DateLayout)
		switch c.Kind {
		case domain.ConflictBlocked:
			reason := c.Reason
			if reason == "" {
				reason = "blocked"
			}
			parts = append(parts, fmt.Sprintf("%s (%s)", reason, span))
		default:
			parts = append(parts, fmt.Sprintf("%s - %s (%s)", c.BookingNumber, c.CustomerName, span))
		}
	}
	err := domain.NewError(domain.KindVehicleUnavailable,
		"vehicle is not available for the selected dates: %s", strings.Join(parts, "; "))
	err.Conflicts = conflicts
	return err
}
