package jobs

import (
	"context"
	"testing"
	"time"

	"rental-booking-backend/internal/availability"
	"rental-booking-backend/internal/config"
	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/repository/memory"
	"rental-booking-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BookingConfirmed(ctx context.Context, b domain.BookingSnapshot) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockNotifier) PickupReminder(ctx context.Context, b domain.BookingSnapshot) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockNotifier) BalanceReminder(ctx context.Context, b domain.BookingSnapshot) error {
	return m.Called(ctx, b).Error(0)
}

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newRunner(t *testing.T) (*JobRunner, *mockNotifier, *memory.Store) {
	t.Helper()
	now := time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	st := memory.NewStore()
	van := st.AddVehicle(domain.Vehicle{Name: "California Ocean", InternalCode: "CA-01", BasePricePerDayCents: 5000, IsForRent: true, Status: domain.VehicleStatusAvailable})
	van2 := st.AddVehicle(domain.Vehicle{Name: "Grand California", InternalCode: "GC-01", BasePricePerDayCents: 8000, IsForRent: true, Status: domain.VehicleStatusAvailable})
	loc := st.AddLocation(domain.Location{Name: "Barcelona Airport", IsActive: true})

	bookings := service.NewBookingService(st.Store, availability.NewDetector(availability.Policy{}), nil, service.BookingOptions{Now: clock})
	coupons := service.NewCouponService(st.CouponRepository, time.UTC, clock)

	create := func(vehicleID, pickup, dropoff string, status domain.BookingStatus, paid int64) {
		_, err := bookings.CreateBooking(context.Background(), service.CreateBookingRequest{
			QuoteRequest:      service.QuoteRequest{VehicleID: vehicleID, PickupDate: day(pickup), DropoffDate: day(dropoff)},
			Customer:          &service.CustomerDetails{Name: "Ana Lopez", Email: "ana@example.com"},
			PickupLocationID:  loc.ID,
			DropoffLocationID: loc.ID,
			Status:            status,
			AmountPaidCents:   paid,
		})
		require.NoError(t, err)
	}
	create(van.ID, "2024-06-01", "2024-06-03", domain.BookingStatusConfirmed, 5000)
	create(van2.ID, "2024-06-01", "2024-06-03", domain.BookingStatusPending, 0)
	create(van.ID, "2024-06-05", "2024-06-07", domain.BookingStatusConfirmed, 10000)
	create(van.ID, "2024-06-20", "2024-06-22", domain.BookingStatusConfirmed, 0)

	notifier := new(mockNotifier)
	jr := NewJobRunner(&Services{Booking: bookings, Coupon: coupons, Notifier: notifier}, &config.Config{})
	jr.now = clock
	return jr, notifier, st
}

func TestSendPickupReminders(t *testing.T) {
	jr, notifier, _ := newRunner(t)
	notifier.On("PickupReminder", mock.Anything, mock.MatchedBy(func(s domain.BookingSnapshot) bool {
		return s.PickupDate.Equal(day("2024-06-01")) && s.Status == domain.BookingStatusConfirmed
	})).Return(nil)

	sent, err := jr.sendPickupReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	notifier.AssertNumberOfCalls(t, "PickupReminder", 1)
}

func TestSendBalanceReminders(t *testing.T) {
	jr, notifier, _ := newRunner(t)
	notifier.On("BalanceReminder", mock.Anything, mock.MatchedBy(func(s domain.BookingSnapshot) bool {
		return s.BalanceCents == 5000 && s.VehicleName == "California Ocean"
	})).Return(nil)

	sent, err := jr.sendBalanceReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	notifier.AssertNumberOfCalls(t, "BalanceReminder", 1)
}

func TestDeactivateExpiredCoupons(t *testing.T) {
	jr, _, st := newRunner(t)
	ctx := context.Background()
	yesterday := day("2024-05-30")
	require.NoError(t, st.CouponRepository.Create(ctx, &domain.Coupon{Code: "SPRING", DiscountType: domain.DiscountFixed, DiscountValue: 100, ValidUntil: &yesterday, IsActive: true}))

	jr.DeactivateExpiredCoupons()

	active, err := st.CouponRepository.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestRunWithRecovery(t *testing.T) {
	jr, _, _ := newRunner(t)
	assert.NotPanics(t, func() {
		jr.runWithRecovery("boom", func() { panic("boom") })
	})
}
