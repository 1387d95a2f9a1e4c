package service

import (
	"context"
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/pricing"
)

// QuoteRequest describes a rental to be priced.
type QuoteRequest struct {
	VehicleID   string
	PickupDate  time.Time
	PickupTime  string // "HH:MM", empty uses the configured default
	DropoffDate time.Time
	DropoffTime string
	Extras      map[string]int
	CouponCode  string
	// BaseOverrideCents replaces the vehicle's daily rate times days.
	BaseOverrideCents *int64
}

// CustomerDetails are typed in by the operator when there is no customer ID.
type CustomerDetails struct {
	Name  string
	Email string
	Phone string
}

type CreateBookingRequest struct {
	QuoteRequest
	CustomerID        string
	Customer          *CustomerDetails
	PickupLocationID  string
	DropoffLocationID string
	Status            domain.BookingStatus // empty means pending
	AmountPaidCents   int64
	Notes             string
	AdminNotes        string
}

type UpdateBookingRequest struct {
	QuoteRequest
	ID                string
	PickupLocationID  string
	DropoffLocationID string
	Status            domain.BookingStatus // empty keeps the current status
	Notes             string
	AdminNotes        string
}

// CouponCheck is the rental a coupon code is previewed against.
type CouponCheck struct {
	Code          string
	RentalDays    int
	SubtotalCents int64
}

// CouponPreview is the outcome of a successful coupon check.
type CouponPreview struct {
	Coupon        *domain.Coupon
	DiscountCents int64
	TotalCents    int64
}

type BookingService interface {
	Quote(ctx context.Context, req QuoteRequest) (*pricing.Quote, error)
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, req UpdateBookingRequest) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error)
	RecordPayment(ctx context.Context, id string, amountCents int64) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	GetBookingByNumber(ctx context.Context, number string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error)
	DeleteBooking(ctx context.Context, id string) error
	CheckAvailability(ctx context.Context, vehicleID string, pickup, dropoff time.Time, excludeBookingID string) ([]domain.Conflict, error)
	ListAvailableVehicles(ctx context.Context, pickup, dropoff time.Time) ([]domain.Vehicle, error)
	Snapshot(ctx context.Context, booking *domain.Booking) (*domain.BookingSnapshot, error)
}

type CouponService interface {
	CreateCoupon(ctx context.Context, coupon *domain.Coupon) error
	UpdateCoupon(ctx context.Context, coupon *domain.Coupon) error
	GetCoupon(ctx context.Context, id string) (*domain.Coupon, error)
	ListCoupons(ctx context.Context, activeOnly bool) ([]domain.Coupon, error)
	DeactivateCoupon(ctx context.Context, id string) (*domain.Coupon, error)
	ValidateCoupon(ctx context.Context, check CouponCheck) (*CouponPreview, error)
	DeactivateExpired(ctx context.Context) (int64, error)
}

type FleetService interface {
	ListVehicles(ctx context.Context, rentableOnly bool) ([]domain.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	ListLocations(ctx context.Context) ([]domain.Location, error)
	ListExtras(ctx context.Context) ([]domain.Extra, error)
	CreateBlockedPeriod(ctx context.Context, period *domain.BlockedPeriod) error
	ListBlockedPeriods(ctx context.Context, vehicleID string) ([]domain.BlockedPeriod, error)
	DeleteBlockedPeriod(ctx context.Context, id string) error
	CreateCustomer(ctx context.Context, details CustomerDetails) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
}

type AuthService interface {
	// Login returns an access token and its expiry for a configured operator.
	Login(ctx context.Context, email, password string) (string, time.Time, error)
}

// Notifier receives finalized bookings. Implementations must not change them.
type Notifier interface {
	BookingConfirmed(ctx context.Context, booking domain.BookingSnapshot) error
	PickupReminder(ctx context.Context, booking domain.BookingSnapshot) error
	BalanceReminder(ctx context.Context, booking domain.BookingSnapshot) error
}
