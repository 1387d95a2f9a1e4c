package domain

import "time"

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// CustomerSnapshot is copied onto a booking at creation and never re-read
// from the customer record.
type CustomerSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Booking struct {
	ID                string    `json:"id"`
	BookingNumber     string    `json:"booking_number"`
	VehicleID         string    `json:"vehicle_id"`
	CustomerID        string    `json:"customer_id"`
	PickupLocationID  string    `json:"pickup_location_id"`
	DropoffLocationID string    `json:"dropoff_location_id"`
	PickupDate        time.Time `json:"pickup_date"`
	PickupTime        string    `json:"pickup_time"`
	DropoffDate       time.Time `json:"dropoff_date"`
	DropoffTime       string    `json:"dropoff_time"`
	Days              int       `json:"days"`
	// Price snapshot fields, fixed when the booking is written.
	BasePriceCents   int64   `json:"base_price_cents"`
	ExtrasPriceCents int64   `json:"extras_price_cents"`
	DiscountCents    int64   `json:"discount_cents"`
	CouponID         *string `json:"coupon_id,omitempty"`
	CouponCode       string  `json:"coupon_code,omitempty"`
	TotalPriceCents  int64   `json:"total_price_cents"`
	AmountPaidCents  int64   `json:"amount_paid_cents"`
	// PaymentStatus is derived from TotalPriceCents and AmountPaidCents.
	PaymentStatus PaymentStatus    `json:"payment_status"`
	Status        BookingStatus    `json:"status"`
	Customer      CustomerSnapshot `json:"customer"`
	Notes         string           `json:"notes"`
	AdminNotes    string           `json:"admin_notes"`
	Extras        []BookingExtra   `json:"extras"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// IsActive reports whether the booking occupies its vehicle.
func (b *Booking) IsActive() bool {
	return b.Status != BookingStatusCancelled
}

// BalanceCents is what is still owed, never negative.
func (b *Booking) BalanceCents() int64 {
	if b.AmountPaidCents >= b.TotalPriceCents {
		return 0
	}
	return b.TotalPriceCents - b.AmountPaidCents
}

// BookingExtra is a priced line item. Unit and total prices are snapshots.
type BookingExtra struct {
	ID              string `json:"id"`
	BookingID       string `json:"booking_id"`
	ExtraID         string `json:"extra_id"`
	ExtraName       string `json:"extra_name"`
	Quantity        int    `json:"quantity"`
	UnitPriceCents  int64  `json:"unit_price_cents"`
	TotalPriceCents int64  `json:"total_price_cents"`
}

// BookingFilter narrows booking listings. Zero values mean "any".
type BookingFilter struct {
	Status     BookingStatus
	VehicleID  string
	CustomerID string
	PickupFrom *time.Time
	PickupTo   *time.Time
	Page       int32
	PageSize   int32
}

// Conflict describes one reason a vehicle cannot take a date range.
type Conflict struct {
	Kind          ConflictKind `json:"kind"`
	BookingID     string       `json:"booking_id,omitempty"`
	BookingNumber string       `json:"booking_number,omitempty"`
	CustomerName  string       `json:"customer_name,omitempty"`
	StartDate     time.Time    `json:"start_date"`
	EndDate       time.Time    `json:"end_date"`
	Reason        string       `json:"reason,omitempty"`
}

type ConflictKind string

const (
	ConflictBooking ConflictKind = "booking"
	ConflictBlocked ConflictKind = "blocked"
)

// BookingSnapshot is the finalized view of a booking handed to notifiers.
type BookingSnapshot struct {
	BookingNumber   string
	Customer        CustomerSnapshot
	VehicleName     string
	PickupLocation  string
	DropoffLocation string
	PickupDate      time.Time
	PickupTime      string
	DropoffDate     time.Time
	DropoffTime     string
	Days            int
	Extras          []BookingExtra
	BasePriceCents  int64
	ExtrasCents     int64
	DiscountCents   int64
	CouponCode      string
	TotalCents      int64
	AmountPaidCents int64
	BalanceCents    int64
	PaymentStatus   PaymentStatus
	Status          BookingStatus
}
