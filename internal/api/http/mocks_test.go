package http

import (
	"context"
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/pricing"
	"rental-booking-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Quote(ctx context.Context, req service.QuoteRequest) (*pricing.Quote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Quote), args.Error(1)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, req service.CreateBookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) UpdateBooking(ctx context.Context, req service.UpdateBookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) RecordPayment(ctx context.Context, id string, amountCents int64) (*domain.Booking, error) {
	args := m.Called(ctx, id, amountCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) GetBookingByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}

func (m *MockBookingService) DeleteBooking(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingService) CheckAvailability(ctx context.Context, vehicleID string, pickup, dropoff time.Time, excludeBookingID string) ([]domain.Conflict, error) {
	args := m.Called(ctx, vehicleID, pickup, dropoff, excludeBookingID)
	return args.Get(0).([]domain.Conflict), args.Error(1)
}

func (m *MockBookingService) ListAvailableVehicles(ctx context.Context, pickup, dropoff time.Time) ([]domain.Vehicle, error) {
	args := m.Called(ctx, pickup, dropoff)
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

func (m *MockBookingService) Snapshot(ctx context.Context, booking *domain.Booking) (*domain.BookingSnapshot, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingSnapshot), args.Error(1)
}

type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) CreateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCouponService) UpdateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCouponService) GetCoupon(ctx context.Context, id string) (*domain.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}

func (m *MockCouponService) ListCoupons(ctx context.Context, activeOnly bool) ([]domain.Coupon, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]domain.Coupon), args.Error(1)
}

func (m *MockCouponService) DeactivateCoupon(ctx context.Context, id string) (*domain.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}

func (m *MockCouponService) ValidateCoupon(ctx context.Context, check service.CouponCheck) (*service.CouponPreview, error) {
	args := m.Called(ctx, check)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CouponPreview), args.Error(1)
}

func (m *MockCouponService) DeactivateExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockFleetService struct {
	mock.Mock
}

func (m *MockFleetService) ListVehicles(ctx context.Context, rentableOnly bool) ([]domain.Vehicle, error) {
	args := m.Called(ctx, rentableOnly)
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

func (m *MockFleetService) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockFleetService) ListLocations(ctx context.Context) ([]domain.Location, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Location), args.Error(1)
}

func (m *MockFleetService) ListExtras(ctx context.Context) ([]domain.Extra, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Extra), args.Error(1)
}

func (m *MockFleetService) CreateBlockedPeriod(ctx context.Context, period *domain.BlockedPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockFleetService) ListBlockedPeriods(ctx context.Context, vehicleID string) ([]domain.BlockedPeriod, error) {
	args := m.Called(ctx, vehicleID)
	return args.Get(0).([]domain.BlockedPeriod), args.Error(1)
}

func (m *MockFleetService) DeleteBlockedPeriod(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFleetService) CreateCustomer(ctx context.Context, details service.CustomerDetails) (*domain.Customer, error) {
	args := m.Called(ctx, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockFleetService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
