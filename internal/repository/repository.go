package repository

import (
	"context"
	"errors"
	"time"

	"rental-booking-backend/internal/availability"
	"rental-booking-backend/internal/domain"
)

// ErrDuplicateBookingNumber signals a booking number collision; callers
// generate a new number and retry.
var ErrDuplicateBookingNumber = errors.New("booking number already exists")

// AvailabilityCheck is re-run inside the write transaction with the booking as
// it will be written (for status changes, the locked row) and the occupancy
// read under lock. A non-nil error aborts the write.
type AvailabilityCheck func(b *domain.Booking, occ availability.Occupancy) error

type VehicleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	// List returns vehicles ordered by internal code. rentableOnly drops
	// vehicles that are not for rent or not in available status.
	List(ctx context.Context, rentableOnly bool) ([]domain.Vehicle, error)
}

type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Location, error)
	ListActive(ctx context.Context) ([]domain.Location, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

type ExtraRepository interface {
	ListActive(ctx context.Context) ([]domain.Extra, error)
}

type CouponRepository interface {
	// Create fails with domain.ErrDuplicateCouponCode when the code is taken.
	Create(ctx context.Context, coupon *domain.Coupon) error
	GetByID(ctx context.Context, id string) (*domain.Coupon, error)
	// GetByCode matches case-insensitively.
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Coupon, error)
	Update(ctx context.Context, coupon *domain.Coupon) error
	// DeactivateExpired switches off active coupons whose valid_until is before today.
	DeactivateExpired(ctx context.Context, today time.Time) (int64, error)
}

type BlockedPeriodRepository interface {
	Create(ctx context.Context, period *domain.BlockedPeriod) error
	ListByVehicle(ctx context.Context, vehicleID string) ([]domain.BlockedPeriod, error)
	Delete(ctx context.Context, id string) error
}

type BookingRepository interface {
	// Create locks the vehicle, runs check against current occupancy, writes
	// the booking with its extras, takes one use of the coupon and updates
	// customer totals, all in one transaction.
	Create(ctx context.Context, booking *domain.Booking, check AvailabilityCheck) error
	// Update rewrites an existing booking. A coupon use is taken only when
	// the coupon changes to one the booking did not already hold.
	Update(ctx context.Context, booking *domain.Booking, check AvailabilityCheck) error
	// UpdateStatus re-runs check when a cancelled booking is reactivated.
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, check AvailabilityCheck) (*domain.Booking, error)
	// RecordPayment adds deltaCents to amount paid and re-derives payment status.
	RecordPayment(ctx context.Context, id string, deltaCents int64) (*domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByNumber(ctx context.Context, number string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error)
	// ListOccupancy returns non-cancelled bookings and blocked periods that
	// touch [from, to]. An empty vehicleID covers the whole fleet.
	ListOccupancy(ctx context.Context, vehicleID string, from, to time.Time) (availability.Occupancy, error)
	// Delete removes the booking and its extras together.
	Delete(ctx context.Context, id string) error
}

// Store groups every repository the services need.
type Store struct {
	VehicleRepository
	LocationRepository
	CustomerRepository
	ExtraRepository
	CouponRepository
	BlockedPeriodRepository
	BookingRepository
	// Ping reports storage health.
	Ping func(ctx context.Context) error
}
