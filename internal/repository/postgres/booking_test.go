package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"rental-booking-backend/internal/availability"
	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingColumnNames = []string{
	"id", "booking_number", "vehicle_id", "customer_id", "pickup_location_id", "dropoff_location_id",
	"pickup_date", "pickup_time", "dropoff_date", "dropoff_time", "days", "base_price_cents", "extras_price_cents",
	"discount_cents", "coupon_id", "coupon_code", "total_price_cents", "amount_paid_cents", "payment_status", "status",
	"customer_name", "customer_email", "customer_phone", "notes", "admin_notes", "created_at", "updated_at",
}

var blockedColumnNames = []string{"id", "vehicle_id", "start_date", "end_date", "reason", "created_at"}

var extraColumnNames = []string{"id", "booking_id", "extra_id", "extra_name", "quantity", "unit_price_cents", "total_price_cents"}

func day(s string) time.Time {
	t, _ := time.Parse(domain.DateLayout, s)
	return t
}

func bookingRow(id, number string, couponID any, total, paid int64, status string) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, number, "van-1", "cust-1", "loc-1", "loc-1",
		day("2024-06-01"), "11:00", day("2024-06-06"), "11:00", 5, int64(25000), int64(5000),
		int64(3000), couponID, "SUMMER10", total, paid, "pending", status,
		"Ana Lopez", "ana@example.com", "", "", "", now, now,
	}
}

func newBooking() *domain.Booking {
	couponID := "coupon-1"
	return &domain.Booking{
		BookingNumber:     "FG12345678",
		VehicleID:         "van-1",
		CustomerID:        "cust-1",
		PickupLocationID:  "loc-1",
		DropoffLocationID: "loc-1",
		PickupDate:        day("2024-06-01"),
		PickupTime:        "11:00",
		DropoffDate:       day("2024-06-06"),
		DropoffTime:       "11:00",
		Days:              5,
		BasePriceCents:    25000,
		ExtrasPriceCents:  5000,
		DiscountCents:     3000,
		CouponID:          &couponID,
		CouponCode:        "SUMMER10",
		TotalPriceCents:   27000,
		AmountPaidCents:   13500,
		Status:            domain.BookingStatusConfirmed,
		Customer:          domain.CustomerSnapshot{Name: "Ana Lopez", Email: "ana@example.com"},
		Extras: []domain.BookingExtra{
			{ExtraID: "bike", ExtraName: "Bike rack", Quantity: 1, UnitPriceCents: 1000, TotalPriceCents: 5000},
		},
	}
}

func expectOccupancy(mock sqlmock.Sqlmock, bookings *sqlmock.Rows) {
	if bookings == nil {
		bookings = sqlmock.NewRows(bookingColumnNames)
	}
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE status <> 'cancelled'").
		WithArgs(day("2024-06-01"), day("2024-06-06"), "van-1").
		WillReturnRows(bookings)
	mock.ExpectQuery("SELECT (.+) FROM blocked_periods").
		WithArgs(day("2024-06-01"), day("2024-06-06"), "van-1").
		WillReturnRows(sqlmock.NewRows(blockedColumnNames))
}

func TestBookingRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		b := newBooking()
		var checked bool

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM vehicles WHERE id = \\$1 FOR UPDATE").
			WithArgs("van-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("van-1"))
		expectOccupancy(mock, nil)
		mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO booking_extras").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "bike", "Bike rack", 1, int64(1000), int64(5000)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE coupons SET current_uses = current_uses \\+ 1").
			WithArgs("coupon-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE customers SET total_bookings = total_bookings \\+ 1").
			WithArgs("cust-1", int64(27000)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.Create(ctx, b, func(_ *domain.Booking, occ availability.Occupancy) error {
			checked = true
			assert.Empty(t, occ.Bookings)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, checked)
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, b.ID, b.Extras[0].BookingID)
		assert.Equal(t, domain.PaymentStatusPartial, b.PaymentStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Availability check fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("van-1"))
		expectOccupancy(mock, sqlmock.NewRows(bookingColumnNames).
			AddRow(bookingRow("b-9", "FG00000009", nil, 10000, 0, "confirmed")...))
		mock.ExpectRollback()

		detector := availability.NewDetector(availability.Policy{})
		b := newBooking()
		err = repo.Create(ctx, b, func(_ *domain.Booking, occ availability.Occupancy) error {
			return detector.Check(availability.Candidate{VehicleID: b.VehicleID, PickupDate: b.PickupDate, DropoffDate: b.DropoffDate}, occ)
		})
		assert.True(t, errors.Is(err, domain.ErrVehicleUnavailable))
		assert.Contains(t, err.Error(), "FG00000009")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Last coupon use already taken", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("van-1"))
		expectOccupancy(mock, nil)
		mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO booking_extras").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE coupons SET current_uses").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT is_active FROM coupons").
			WithArgs("coupon-1").
			WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(true))
		mock.ExpectRollback()

		err = repo.Create(ctx, newBooking(), nil)
		assert.True(t, errors.Is(err, domain.ErrCouponExhausted))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Exclusion constraint backstop", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("van-1"))
		expectOccupancy(mock, nil)
		mock.ExpectExec("INSERT INTO bookings").
			WillReturnError(&pq.Error{Code: "23P01", Constraint: "bookings_no_overlap"})
		mock.ExpectRollback()

		err = repo.Create(ctx, newBooking(), nil)
		assert.True(t, errors.Is(err, domain.ErrVehicleUnavailable))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate booking number", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("van-1"))
		expectOccupancy(mock, nil)
		mock.ExpectExec("INSERT INTO bookings").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "bookings_booking_number_key"})
		mock.ExpectRollback()

		err = repo.Create(ctx, newBooking(), nil)
		assert.ErrorIs(t, err, repository.ErrDuplicateBookingNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("New customer is inserted with the booking", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		b := newBooking()
		b.CustomerID = ""
		b.CouponID = nil

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("van-1"))
		expectOccupancy(mock, nil)
		mock.ExpectExec("INSERT INTO customers (.+) ON CONFLICT").
			WithArgs(sqlmock.AnyArg(), "Ana Lopez", "ana@example.com", "", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT id FROM customers WHERE lower\\(email\\)").
			WithArgs("ana@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cust-9"))
		mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO booking_extras").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE customers SET total_bookings = total_bookings \\+ 1").
			WithArgs("cust-9", int64(27000)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Create(ctx, b, nil))
		assert.Equal(t, "cust-9", b.CustomerID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rejected booking leaves no new customer", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		b := newBooking()
		b.CustomerID = ""

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("van-1"))
		expectOccupancy(mock, nil)
		mock.ExpectRollback()

		err = repo.Create(ctx, b, func(*domain.Booking, availability.Occupancy) error {
			return domain.ErrVehicleUnavailable
		})
		assert.True(t, errors.Is(err, domain.ErrVehicleUnavailable))
		assert.Empty(t, b.CustomerID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown vehicle", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM vehicles").WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		err = repo.Create(ctx, newBooking(), nil)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_Update(t *testing.T) {
	ctx := context.Background()

	expectUpdate := func(mock sqlmock.Sqlmock, oldCoupon any) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT coupon_id, total_price_cents, amount_paid_cents, customer_id FROM bookings WHERE id = \\$1 FOR UPDATE").
			WithArgs("b-1").
			WillReturnRows(sqlmock.NewRows([]string{"coupon_id", "total_price_cents", "amount_paid_cents", "customer_id"}).
				AddRow(oldCoupon, int64(27000), int64(27000), "cust-1"))
		mock.ExpectQuery("SELECT id FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("van-1"))
		// The booking's own row is returned and must not count as a conflict.
		expectOccupancy(mock, sqlmock.NewRows(bookingColumnNames).
			AddRow(bookingRow("b-1", "FG00000001", oldCoupon, 27000, 27000, "confirmed")...))
		mock.ExpectExec("UPDATE bookings SET vehicle_id").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM booking_extras WHERE booking_id = \\$1").
			WithArgs("b-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO booking_extras").WillReturnResult(sqlmock.NewResult(0, 1))
	}

	check := func(_ *domain.Booking, occ availability.Occupancy) error {
		if len(occ.Bookings) > 0 {
			return domain.ErrVehicleUnavailable
		}
		return nil
	}

	t.Run("Re-save with same coupon takes no new use", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		expectUpdate(mock, "coupon-1")
		mock.ExpectCommit()

		b := newBooking()
		b.ID = "b-1"
		b.TotalPriceCents = 27000
		require.NoError(t, repo.Update(ctx, b, check))
		assert.Equal(t, int64(27000), b.AmountPaidCents)
		assert.Equal(t, domain.PaymentStatusPaid, b.PaymentStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Newly attached coupon takes one use and total change updates customer", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		expectUpdate(mock, nil)
		mock.ExpectExec("UPDATE coupons SET current_uses = current_uses \\+ 1").
			WithArgs("coupon-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE customers SET total_spent_cents").
			WithArgs("cust-1", int64(-2000)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		b := newBooking()
		b.ID = "b-1"
		b.TotalPriceCents = 25000
		require.NoError(t, repo.Update(ctx, b, check))
		assert.Equal(t, domain.PaymentStatusPaid, b.PaymentStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_RecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Partial payment", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1 FOR UPDATE").
			WithArgs("b-1").
			WillReturnRows(sqlmock.NewRows(bookingColumnNames).AddRow(bookingRow("b-1", "FG1", nil, 27000, 0, "confirmed")...))
		mock.ExpectExec("UPDATE bookings SET amount_paid_cents").
			WithArgs(int64(13500), domain.PaymentStatusPartial, sqlmock.AnyArg(), "b-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM booking_extras WHERE booking_id = \\$1").
			WithArgs("b-1").
			WillReturnRows(sqlmock.NewRows(extraColumnNames).AddRow("e-1", "b-1", "bike", "Bike rack", 1, int64(1000), int64(5000)))
		mock.ExpectCommit()

		b, err := repo.RecordPayment(ctx, "b-1", 13500)
		require.NoError(t, err)
		assert.Equal(t, int64(13500), b.AmountPaidCents)
		assert.Equal(t, domain.PaymentStatusPartial, b.PaymentStatus)
		assert.Len(t, b.Extras, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Refund below zero is rejected", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1 FOR UPDATE").
			WillReturnRows(sqlmock.NewRows(bookingColumnNames).AddRow(bookingRow("b-1", "FG1", nil, 27000, 1000, "confirmed")...))
		mock.ExpectRollback()

		_, err = repo.RecordPayment(ctx, "b-1", -2000)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Reactivating a cancelled booking re-checks availability", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1 FOR UPDATE").
			WithArgs("b-1").
			WillReturnRows(sqlmock.NewRows(bookingColumnNames).AddRow(bookingRow("b-1", "FG1", nil, 27000, 0, "cancelled")...))
		mock.ExpectQuery("SELECT id FROM vehicles").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("van-1"))
		expectOccupancy(mock, sqlmock.NewRows(bookingColumnNames).
			AddRow(bookingRow("b-2", "FG2", nil, 10000, 0, "confirmed")...))
		mock.ExpectRollback()

		_, err = repo.UpdateStatus(ctx, "b-1", domain.BookingStatusConfirmed, func(locked *domain.Booking, occ availability.Occupancy) error {
			assert.Equal(t, "b-1", locked.ID)
			assert.Equal(t, domain.BookingStatusCancelled, locked.Status)
			require.Len(t, occ.Bookings, 1)
			return domain.ErrVehicleUnavailable
		})
		assert.True(t, errors.Is(err, domain.ErrVehicleUnavailable))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Cancelling skips the check", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1 FOR UPDATE").
			WillReturnRows(sqlmock.NewRows(bookingColumnNames).AddRow(bookingRow("b-1", "FG1", nil, 27000, 0, "confirmed")...))
		mock.ExpectExec("UPDATE bookings SET status = \\$1").
			WithArgs(domain.BookingStatusCancelled, sqlmock.AnyArg(), "b-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM booking_extras").WillReturnRows(sqlmock.NewRows(extraColumnNames))
		mock.ExpectCommit()

		b, err := repo.UpdateStatus(ctx, "b-1", domain.BookingStatusCancelled, func(*domain.Booking, availability.Occupancy) error {
			t.Fatal("check must not run when cancelling")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, b.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes extras with the booking", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM booking_extras WHERE booking_id = \\$1").WithArgs("b-1").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM bookings WHERE id = \\$1").WithArgs("b-1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Delete(ctx, "b-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Retries after a deadlock", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM booking_extras").WillReturnError(&pq.Error{Code: "40P01"})
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM booking_extras").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM bookings").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Delete(ctx, "b-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM booking_extras").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM bookings").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.Delete(ctx, "missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewBookingRepository(db)

	from := day("2024-06-01")
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM bookings WHERE 1=1 AND status = \\$1 AND pickup_date >= \\$2").
		WithArgs(domain.BookingStatusConfirmed, from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE 1=1 AND status = \\$1 AND pickup_date >= \\$2 ORDER BY pickup_date, booking_number LIMIT \\$3 OFFSET \\$4").
		WithArgs(domain.BookingStatusConfirmed, from, int32(10), int32(10)).
		WillReturnRows(sqlmock.NewRows(bookingColumnNames).
			AddRow(bookingRow("b-1", "FG1", nil, 1000, 0, "confirmed")...).
			AddRow(bookingRow("b-2", "FG2", "coupon-1", 2000, 0, "confirmed")...))
	mock.ExpectQuery("SELECT (.+) FROM booking_extras WHERE booking_id::text = ANY\\(\\$1\\)").
		WithArgs(pq.Array([]string{"b-1", "b-2"})).
		WillReturnRows(sqlmock.NewRows(extraColumnNames).AddRow("e-1", "b-2", "bike", "Bike rack", 1, int64(1000), int64(5000)))

	bookings, count, err := repo.List(context.Background(), domain.BookingFilter{
		Status:     domain.BookingStatusConfirmed,
		PickupFrom: &from,
		Page:       2,
		PageSize:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), count)
	require.Len(t, bookings, 2)
	assert.Nil(t, bookings[0].CouponID)
	assert.Equal(t, "coupon-1", *bookings[1].CouponID)
	assert.Len(t, bookings[1].Extras, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
