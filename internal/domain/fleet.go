package domain

import "time"

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusRetired     VehicleStatus = "retired"
)

type Vehicle struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	InternalCode         string        `json:"internal_code"`
	BasePricePerDayCents int64         `json:"base_price_per_day_cents"`
	IsForRent            bool          `json:"is_for_rent"`
	Status               VehicleStatus `json:"status"`
}

type Location struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	IsActive bool   `json:"is_active"`
}

// BlockedPeriod takes a vehicle out of service for a closed date range.
type BlockedPeriod struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicle_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type Customer struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	TotalBookings   int       `json:"total_bookings"`
	TotalSpentCents int64     `json:"total_spent_cents"`
	CreatedAt       time.Time `json:"created_at"`
}

// Snapshot copies the fields a booking keeps for display.
func (c *Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

type ExtraPriceType string

const (
	ExtraPricePerDay    ExtraPriceType = "per_day"
	ExtraPricePerRental ExtraPriceType = "per_rental"
)

type Extra struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	PricePerDayCents    *int64         `json:"price_per_day_cents,omitempty"`
	PricePerRentalCents *int64         `json:"price_per_rental_cents,omitempty"`
	PriceType           ExtraPriceType `json:"price_type"`
	IsActive            bool           `json:"is_active"`
}

// UnitPriceCents returns the price selected by PriceType, or false when it is unset.
func (e *Extra) UnitPriceCents() (int64, bool) {
	switch e.PriceType {
	case ExtraPricePerDay:
		if e.PricePerDayCents != nil {
			return *e.PricePerDayCents, true
		}
	case ExtraPricePerRental:
		if e.PricePerRentalCents != nil {
			return *e.PricePerRentalCents, true
		}
	}
	return 0, false
}
