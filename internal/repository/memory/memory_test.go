package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rental-booking-backend/internal/availability"
	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func setup(t *testing.T) (*Store, domain.Vehicle, domain.Customer) {
	t.Helper()
	st := NewStore()
	v := st.AddVehicle(domain.Vehicle{Name: "California Ocean", InternalCode: "CA-01", BasePricePerDayCents: 9500, IsForRent: true, Status: domain.VehicleStatusAvailable})
	c := domain.Customer{Name: "Ana Lopez", Email: "ana@example.com"}
	require.NoError(t, st.CustomerRepository.Create(context.Background(), &c))
	return st, v, c
}

func booking(vehicleID, customerID, number, pickup, dropoff string) *domain.Booking {
	return &domain.Booking{
		BookingNumber:   number,
		VehicleID:       vehicleID,
		CustomerID:      customerID,
		PickupDate:      day(pickup),
		DropoffDate:     day(dropoff),
		TotalPriceCents: 30000,
		Status:          domain.BookingStatusPending,
		Extras:          []domain.BookingExtra{{ExtraID: "bike", ExtraName: "Bike rack", Quantity: 1, UnitPriceCents: 1000, TotalPriceCents: 3000}},
	}
}

func detectorCheck() repository.AvailabilityCheck {
	d := availability.NewDetector(availability.Policy{})
	return func(b *domain.Booking, occ availability.Occupancy) error {
		return d.Check(availability.Candidate{
			VehicleID:        b.VehicleID,
			PickupDate:       b.PickupDate,
			DropoffDate:      b.DropoffDate,
			ExcludeBookingID: b.ID,
		}, occ)
	}
}

func TestBookingRepository_CreateUpdatesCustomerAndCoupon(t *testing.T) {
	st, v, c := setup(t)
	ctx := context.Background()
	one := 1
	coupon := domain.Coupon{Code: "GIFT-ANA", CouponType: domain.CouponTypeGift, DiscountType: domain.DiscountFixed, DiscountValue: 5000, MaxUses: &one, IsActive: true}
	require.NoError(t, st.CouponRepository.Create(ctx, &coupon))

	b := booking(v.ID, c.ID, "FG00000001", "2024-07-01", "2024-07-04")
	b.CouponID = &coupon.ID
	b.CouponCode = coupon.Code
	b.AmountPaidCents = 10000
	require.NoError(t, st.BookingRepository.Create(ctx, b, detectorCheck()))
	assert.Equal(t, domain.PaymentStatusPartial, b.PaymentStatus)
	assert.Equal(t, 1, st.CountLineItems(b.ID))

	got, err := st.CouponRepository.GetByID(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentUses)

	cust, err := st.CustomerRepository.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cust.TotalBookings)
	assert.Equal(t, int64(30000), cust.TotalSpentCents)

	second := booking(v.ID, c.ID, "FG00000002", "2024-08-01", "2024-08-04")
	second.CouponID = &coupon.ID
	second.CouponCode = coupon.Code
	err = st.BookingRepository.Create(ctx, second, detectorCheck())
	assert.True(t, errors.Is(err, domain.ErrCouponExhausted))
}

func TestBookingRepository_CreateRejectsOverlap(t *testing.T) {
	st, v, c := setup(t)
	ctx := context.Background()

	first := booking(v.ID, c.ID, "FG00000001", "2024-07-01", "2024-07-04")
	require.NoError(t, st.BookingRepository.Create(ctx, first, detectorCheck()))

	touching := booking(v.ID, c.ID, "FG00000002", "2024-07-04", "2024-07-06")
	err := st.BookingRepository.Create(ctx, touching, detectorCheck())
	require.True(t, errors.Is(err, domain.ErrVehicleUnavailable))
	de, ok := domain.AsError(err)
	require.True(t, ok)
	require.Len(t, de.Conflicts, 1)
	assert.Equal(t, "FG00000001", de.Conflicts[0].BookingNumber)

	dup := booking(v.ID, c.ID, "FG00000001", "2024-09-01", "2024-09-02")
	assert.ErrorIs(t, st.BookingRepository.Create(ctx, dup, detectorCheck()), repository.ErrDuplicateBookingNumber)
}

func TestBookingRepository_ConcurrentOverlapHasOneWinner(t *testing.T) {
	st, v, c := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := booking(v.ID, c.ID, "FG0000000"+string(rune('0'+i)), "2024-07-01", "2024-07-04")
			errs[i] = st.BookingRepository.Create(ctx, b, detectorCheck())
		}(i)
	}
	wg.Wait()

	var ok, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrVehicleUnavailable):
			unavailable++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, len(errs)-1, unavailable)
}

func TestBookingRepository_UpdateKeepsPaymentAndAppliesDelta(t *testing.T) {
	st, v, c := setup(t)
	ctx := context.Background()

	b := booking(v.ID, c.ID, "FG00000001", "2024-07-01", "2024-07-04")
	require.NoError(t, st.BookingRepository.Create(ctx, b, detectorCheck()))
	_, err := st.BookingRepository.RecordPayment(ctx, b.ID, 30000)
	require.NoError(t, err)

	edit := *b
	edit.DropoffDate = day("2024-07-06")
	edit.TotalPriceCents = 50000
	edit.AmountPaidCents = 0
	edit.Extras = nil
	require.NoError(t, st.BookingRepository.Update(ctx, &edit, detectorCheck()))
	assert.Equal(t, int64(30000), edit.AmountPaidCents)
	assert.Equal(t, domain.PaymentStatusPartial, edit.PaymentStatus)
	assert.Equal(t, 0, st.CountLineItems(b.ID))

	cust, err := st.CustomerRepository.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), cust.TotalSpentCents)
}

func TestBookingRepository_StatusAndPayments(t *testing.T) {
	st, v, c := setup(t)
	ctx := context.Background()

	first := booking(v.ID, c.ID, "FG00000001", "2024-07-01", "2024-07-04")
	require.NoError(t, st.BookingRepository.Create(ctx, first, detectorCheck()))

	cancelled, err := st.BookingRepository.UpdateStatus(ctx, first.ID, domain.BookingStatusCancelled, detectorCheck())
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)

	second := booking(v.ID, c.ID, "FG00000002", "2024-07-02", "2024-07-03")
	require.NoError(t, st.BookingRepository.Create(ctx, second, detectorCheck()))

	_, err = st.BookingRepository.UpdateStatus(ctx, first.ID, domain.BookingStatusConfirmed, detectorCheck())
	assert.True(t, errors.Is(err, domain.ErrVehicleUnavailable))

	_, err = st.BookingRepository.RecordPayment(ctx, second.ID, -100)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	paid, err := st.BookingRepository.RecordPayment(ctx, second.ID, 30000)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)
}

func TestBookingRepository_ListAndDelete(t *testing.T) {
	st, v, c := setup(t)
	ctx := context.Background()

	for i, dates := range [][2]string{{"2024-08-01", "2024-08-03"}, {"2024-07-01", "2024-07-03"}, {"2024-09-01", "2024-09-03"}} {
		b := booking(v.ID, c.ID, "FG0000000"+string(rune('1'+i)), dates[0], dates[1])
		require.NoError(t, st.BookingRepository.Create(ctx, b, detectorCheck()))
	}

	list, total, err := st.BookingRepository.List(ctx, domain.BookingFilter{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int32(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, day("2024-07-01"), list[0].PickupDate)
	assert.Len(t, list[0].Extras, 1)

	from := day("2024-08-15")
	list, total, err = st.BookingRepository.List(ctx, domain.BookingFilter{PickupFrom: &from})
	require.NoError(t, err)
	assert.Equal(t, int32(1), total)

	id := list[0].ID
	require.NoError(t, st.BookingRepository.Delete(ctx, id))
	assert.Equal(t, 0, st.CountLineItems(id))
	assert.True(t, errors.Is(st.BookingRepository.Delete(ctx, id), domain.ErrNotFound))
}

func TestCouponRepository(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	yesterday := day("2024-05-31")
	one := 1

	c := domain.Coupon{Code: "SUMMER10", DiscountType: domain.DiscountPercentage, DiscountValue: 1000, ValidUntil: &yesterday, IsActive: true}
	require.NoError(t, st.CouponRepository.Create(ctx, &c))
	assert.True(t, errors.Is(st.CouponRepository.Create(ctx, &domain.Coupon{Code: "summer10"}), domain.ErrDuplicateCouponCode))

	got, err := st.CouponRepository.GetByCode(ctx, "Summer10")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	got.CurrentUses = 2
	st.s.coupons[got.ID] = *got
	got.MaxUses = &one
	assert.True(t, errors.Is(st.CouponRepository.Update(ctx, got), domain.ErrCouponUsageExceeded))

	n, err := st.CouponRepository.DeactivateExpired(ctx, day("2024-06-01"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	active, err := st.CouponRepository.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestSeedDemo(t *testing.T) {
	st := NewStore()
	st.SeedDemo()
	ctx := context.Background()

	rentable, err := st.VehicleRepository.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, rentable, 2)
	extras, err := st.ExtraRepository.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, extras, 3)
}
