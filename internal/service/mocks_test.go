package service

import (
	"context"
	"time"

	"rental-booking-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) BookingConfirmed(ctx context.Context, b domain.BookingSnapshot) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockNotifier) PickupReminder(ctx context.Context, b domain.BookingSnapshot) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockNotifier) BalanceReminder(ctx context.Context, b domain.BookingSnapshot) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

// MockMailSender
type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) Send(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockCouponRepo
type MockCouponRepo struct {
	mock.Mock
}

func (m *MockCouponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCouponRepo) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}
func (m *MockCouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}
func (m *MockCouponRepo) List(ctx context.Context, activeOnly bool) ([]domain.Coupon, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]domain.Coupon), args.Error(1)
}
func (m *MockCouponRepo) Update(ctx context.Context, c *domain.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCouponRepo) DeactivateExpired(ctx context.Context, today time.Time) (int64, error) {
	args := m.Called(ctx, today)
	return args.Get(0).(int64), args.Error(1)
}
