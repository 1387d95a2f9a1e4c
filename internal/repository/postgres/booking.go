package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"rental-booking-backend/internal/availability"
	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/pricing"
	"rental-booking-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, booking_number, vehicle_id, customer_id, pickup_location_id, dropoff_location_id,
	pickup_date, pickup_time, dropoff_date, dropoff_time, days, base_price_cents, extras_price_cents,
	discount_cents, coupon_id, coupon_code, total_price_cents, amount_paid_cents, payment_status, status,
	customer_name, customer_email, customer_phone, notes, admin_notes, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking, check repository.AvailabilityCheck) error {
	logger.EnterMethod("bookingRepository.Create", "vehicleID", b.VehicleID, "bookingNumber", b.BookingNumber)

	newCustomer := b.CustomerID == ""
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockVehicle(ctx, tx, b.VehicleID); err != nil {
			return err
		}
		occ, err := listOccupancy(ctx, tx, b.VehicleID, b.PickupDate, b.DropoffDate)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(b, occ); err != nil {
				return err
			}
		}

		if newCustomer {
			if b.CustomerID, err = upsertCustomer(ctx, tx, b.Customer); err != nil {
				return err
			}
		}

		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		now := time.Now()
		b.CreatedAt, b.UpdatedAt = now, now
		b.PaymentStatus = pricing.DerivePaymentStatus(b.TotalPriceCents, b.AmountPaidCents)

		query := `INSERT INTO bookings (` + bookingColumns + `)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		                  $21, $22, $23, $24, $25, $26, $27)`
		logger.DatabaseCall("INSERT", "bookings", "bookingID", b.ID)
		_, err = tx.ExecContext(ctx, query,
			b.ID, b.BookingNumber, b.VehicleID, b.CustomerID, b.PickupLocationID, b.DropoffLocationID,
			b.PickupDate, b.PickupTime, b.DropoffDate, b.DropoffTime, b.Days, b.BasePriceCents, b.ExtrasPriceCents,
			b.DiscountCents, nullString(b.CouponID), b.CouponCode, b.TotalPriceCents, b.AmountPaidCents, b.PaymentStatus, b.Status,
			b.Customer.Name, b.Customer.Email, b.Customer.Phone, b.Notes, b.AdminNotes, b.CreatedAt, b.UpdatedAt,
		)
		if err != nil {
			return bookingWriteError(err)
		}

		if err := insertExtras(ctx, tx, b); err != nil {
			return err
		}

		if b.CouponID != nil {
			if err := takeCouponUse(ctx, tx, *b.CouponID, b.CouponCode); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE customers SET total_bookings = total_bookings + 1, total_spent_cents = total_spent_cents + $2 WHERE id = $1`,
			b.CustomerID, b.TotalPriceCents)
		return err
	})
	if err != nil {
		if newCustomer {
			b.CustomerID = ""
		}
		logger.ExitMethodWithError("bookingRepository.Create", err, "vehicleID", b.VehicleID)
		return err
	}

	logger.ExitMethod("bookingRepository.Create", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking, check repository.AvailabilityCheck) error {
	logger.EnterMethod("bookingRepository.Update", "bookingID", b.ID)

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			oldCoupon     sql.NullString
			oldTotal      int64
			amountPaid    int64
			oldCustomerID string
		)
		err := tx.QueryRowContext(ctx,
			`SELECT coupon_id, total_price_cents, amount_paid_cents, customer_id FROM bookings WHERE id = $1 FOR UPDATE`,
			b.ID).Scan(&oldCoupon, &oldTotal, &amountPaid, &oldCustomerID)
		if err != nil {
			return notFound(err, "booking", b.ID)
		}

		if err := lockVehicle(ctx, tx, b.VehicleID); err != nil {
			return err
		}
		if b.IsActive() && check != nil {
			occ, err := listOccupancy(ctx, tx, b.VehicleID, b.PickupDate, b.DropoffDate)
			if err != nil {
				return err
			}
			if err := check(b, withoutBooking(occ, b.ID)); err != nil {
				return err
			}
		}

		b.AmountPaidCents = amountPaid
		b.PaymentStatus = pricing.DerivePaymentStatus(b.TotalPriceCents, amountPaid)
		b.UpdatedAt = time.Now()

		query := `UPDATE bookings SET vehicle_id=$1, pickup_location_id=$2, dropoff_location_id=$3, pickup_date=$4,
		              pickup_time=$5, dropoff_date=$6, dropoff_time=$7, days=$8, base_price_cents=$9,
		              extras_price_cents=$10, discount_cents=$11, coupon_id=$12, coupon_code=$13,
		              total_price_cents=$14, payment_status=$15, status=$16, notes=$17, admin_notes=$18, updated_at=$19
		          WHERE id=$20`
		logger.DatabaseCall("UPDATE", "bookings", "bookingID", b.ID)
		_, err = tx.ExecContext(ctx, query,
			b.VehicleID, b.PickupLocationID, b.DropoffLocationID, b.PickupDate,
			b.PickupTime, b.DropoffDate, b.DropoffTime, b.Days, b.BasePriceCents,
			b.ExtrasPriceCents, b.DiscountCents, nullString(b.CouponID), b.CouponCode,
			b.TotalPriceCents, b.PaymentStatus, b.Status, b.Notes, b.AdminNotes, b.UpdatedAt,
			b.ID,
		)
		if err != nil {
			return bookingWriteError(err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM booking_extras WHERE booking_id = $1`, b.ID); err != nil {
			return err
		}
		if err := insertExtras(ctx, tx, b); err != nil {
			return err
		}

		// A use is taken once per coupon association, never on a re-save.
		if b.CouponID != nil && (!oldCoupon.Valid || oldCoupon.String != *b.CouponID) {
			if err := takeCouponUse(ctx, tx, *b.CouponID, b.CouponCode); err != nil {
				return err
			}
		}

		if delta := b.TotalPriceCents - oldTotal; delta != 0 {
			_, err = tx.ExecContext(ctx,
				`UPDATE customers SET total_spent_cents = total_spent_cents + $2 WHERE id = $1`, oldCustomerID, delta)
		}
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Update", err, "bookingID", b.ID)
		return err
	}

	logger.ExitMethod("bookingRepository.Update", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, check repository.AvailabilityCheck) (*domain.Booking, error) {
	logger.EnterMethod("bookingRepository.UpdateStatus", "bookingID", id, "status", status)

	var out *domain.Booking
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		b, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return notFound(err, "booking", id)
		}

		if !b.IsActive() && status != domain.BookingStatusCancelled {
			if err := lockVehicle(ctx, tx, b.VehicleID); err != nil {
				return err
			}
			if check != nil {
				occ, err := listOccupancy(ctx, tx, b.VehicleID, b.PickupDate, b.DropoffDate)
				if err != nil {
					return err
				}
				if err := check(b, withoutBooking(occ, b.ID)); err != nil {
					return err
				}
			}
		}

		b.Status = status
		b.UpdatedAt = time.Now()
		if _, err := tx.ExecContext(ctx, `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`, status, b.UpdatedAt, id); err != nil {
			return bookingWriteError(err)
		}
		if b.Extras, err = loadExtras(ctx, tx, b.ID); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.UpdateStatus", err, "bookingID", id)
		return nil, err
	}

	logger.ExitMethod("bookingRepository.UpdateStatus", "bookingID", id)
	return out, nil
}

func (r *bookingRepository) RecordPayment(ctx context.Context, id string, deltaCents int64) (*domain.Booking, error) {
	logger.EnterMethod("bookingRepository.RecordPayment", "bookingID", id, "deltaCents", deltaCents)

	var out *domain.Booking
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		b, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return notFound(err, "booking", id)
		}

		paid := b.AmountPaidCents + deltaCents
		if paid < 0 {
			return domain.Validation("payment of %s would leave a negative amount paid", pricing.FormatCents(deltaCents))
		}
		b.AmountPaidCents = paid
		b.PaymentStatus = pricing.DerivePaymentStatus(b.TotalPriceCents, paid)
		b.UpdatedAt = time.Now()

		_, err = tx.ExecContext(ctx,
			`UPDATE bookings SET amount_paid_cents = $1, payment_status = $2, updated_at = $3 WHERE id = $4`,
			b.AmountPaidCents, b.PaymentStatus, b.UpdatedAt, id)
		if err != nil {
			return err
		}
		if b.Extras, err = loadExtras(ctx, tx, b.ID); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.RecordPayment", err, "bookingID", id)
		return nil, err
	}

	logger.ExitMethod("bookingRepository.RecordPayment", "bookingID", id, "paymentStatus", out.PaymentStatus)
	return out, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func (r *bookingRepository) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_number = $1`, number)
}

func (r *bookingRepository) getOne(ctx context.Context, query, key string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		return nil, notFound(err, "booking", key)
	}
	if b.Extras, err = loadExtras(ctx, r.db, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int32, error) {
	where := ` WHERE 1=1`
	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(clause, len(args))
	}
	if f.Status != "" {
		add(" AND status = $%d", f.Status)
	}
	if f.VehicleID != "" {
		add(" AND vehicle_id = $%d", f.VehicleID)
	}
	if f.CustomerID != "" {
		add(" AND customer_id = $%d", f.CustomerID)
	}
	if f.PickupFrom != nil {
		add(" AND pickup_date >= $%d", *f.PickupFrom)
	}
	if f.PickupTo != nil {
		add(" AND pickup_date <= $%d", *f.PickupTo)
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM bookings`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings` + where +
		fmt.Sprintf(` ORDER BY pickup_date, booking_number LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := attachExtras(ctx, r.db, bookings); err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

func (r *bookingRepository) ListOccupancy(ctx context.Context, vehicleID string, from, to time.Time) (availability.Occupancy, error) {
	return listOccupancy(ctx, r.db, vehicleID, from, to)
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	logger.EnterMethod("bookingRepository.Delete", "bookingID", id)

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM booking_extras WHERE booking_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NotFound("booking", id)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Delete", err, "bookingID", id)
		return err
	}

	logger.ExitMethod("bookingRepository.Delete", "bookingID", id)
	return nil
}

func lockVehicle(ctx context.Context, tx *sql.Tx, vehicleID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM vehicles WHERE id = $1 FOR UPDATE`, vehicleID).Scan(&id)
	return notFound(err, "vehicle", vehicleID)
}

// upsertCustomer returns the id of the customer owning the snapshot's email,
// inserting one when none exists.
func upsertCustomer(ctx context.Context, tx *sql.Tx, c domain.CustomerSnapshot) (string, error) {
	logger.DatabaseCall("INSERT", "customers", "email", c.Email)
	_, err := tx.ExecContext(ctx,
		`INSERT INTO customers (id, name, email, phone, created_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT ((lower(email))) DO NOTHING`,
		uuid.NewString(), c.Name, strings.ToLower(c.Email), c.Phone, time.Now())
	if err != nil {
		return "", err
	}
	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM customers WHERE lower(email) = lower($1)`, c.Email).Scan(&id)
	return id, err
}

// takeCouponUse increments current_uses only while uses remain. Zero rows
// updated means another booking took the last use or the coupon was switched off.
func takeCouponUse(ctx context.Context, tx *sql.Tx, couponID, code string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE coupons SET current_uses = current_uses + 1, updated_at = $2
		 WHERE id = $1 AND is_active AND (max_uses IS NULL OR current_uses < max_uses)`,
		couponID, time.Now())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var active bool
	err = tx.QueryRowContext(ctx, `SELECT is_active FROM coupons WHERE id = $1`, couponID).Scan(&active)
	switch {
	case err == sql.ErrNoRows:
		return domain.NewError(domain.KindCouponNotFound, "coupon %s not found", code)
	case err != nil:
		return err
	case !active:
		return domain.NewError(domain.KindCouponInactive, "coupon %s is not active", code)
	}
	return domain.NewError(domain.KindCouponExhausted, "coupon %s has reached its usage limit", code)
}

func insertExtras(ctx context.Context, tx *sql.Tx, b *domain.Booking) error {
	for i := range b.Extras {
		e := &b.Extras[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		e.BookingID = b.ID
		_, err := tx.ExecContext(ctx,
			`INSERT INTO booking_extras (id, booking_id, extra_id, extra_name, quantity, unit_price_cents, total_price_cents)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.ID, e.BookingID, e.ExtraID, e.ExtraName, e.Quantity, e.UnitPriceCents, e.TotalPriceCents)
		if err != nil {
			return err
		}
	}
	return nil
}

func loadExtras(ctx context.Context, q queryer, bookingID string) ([]domain.BookingExtra, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, booking_id, extra_id, extra_name, quantity, unit_price_cents, total_price_cents
		 FROM booking_extras WHERE booking_id = $1 ORDER BY extra_name`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExtras(rows)
}

// attachExtras loads the line items of many bookings in one query.
func attachExtras(ctx context.Context, q queryer, bookings []domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]string, len(bookings))
	index := make(map[string]int, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		index[b.ID] = i
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, booking_id, extra_id, extra_name, quantity, unit_price_cents, total_price_cents
		 FROM booking_extras WHERE booking_id::text = ANY($1) ORDER BY extra_name`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	extras, err := scanExtras(rows)
	if err != nil {
		return err
	}
	for _, e := range extras {
		if i, ok := index[e.BookingID]; ok {
			bookings[i].Extras = append(bookings[i].Extras, e)
		}
	}
	return nil
}

func scanExtras(rows *sql.Rows) ([]domain.BookingExtra, error) {
	var extras []domain.BookingExtra
	for rows.Next() {
		var e domain.BookingExtra
		if err := rows.Scan(&e.ID, &e.BookingID, &e.ExtraID, &e.ExtraName, &e.Quantity, &e.UnitPriceCents, &e.TotalPriceCents); err != nil {
			return nil, err
		}
		extras = append(extras, e)
	}
	return extras, rows.Err()
}

func listOccupancy(ctx context.Context, q queryer, vehicleID string, from, to time.Time) (availability.Occupancy, error) {
	var occ availability.Occupancy

	args := []any{from, to}
	bookingQuery := `SELECT ` + bookingColumns + ` FROM bookings
	                 WHERE status <> 'cancelled' AND pickup_date <= $2 AND dropoff_date >= $1`
	blockedQuery := `SELECT id, vehicle_id, start_date, end_date, reason, created_at FROM blocked_periods
	                 WHERE start_date <= $2 AND end_date >= $1`
	if vehicleID != "" {
		args = append(args, vehicleID)
		bookingQuery += ` AND vehicle_id = $3`
		blockedQuery += ` AND vehicle_id = $3`
	}

	logger.DatabaseCall("SELECT", "occupancy", "vehicleID", vehicleID)
	rows, err := q.QueryContext(ctx, bookingQuery+` ORDER BY pickup_date`, args...)
	if err != nil {
		return occ, err
	}
	if occ.Bookings, err = scanBookings(rows); err != nil {
		return occ, err
	}

	rows, err = q.QueryContext(ctx, blockedQuery+` ORDER BY start_date`, args...)
	if err != nil {
		return occ, err
	}
	defer rows.Close()
	occ.Blocked, err = scanBlockedPeriods(rows)
	return occ, err
}

func withoutBooking(occ availability.Occupancy, id string) availability.Occupancy {
	kept := occ.Bookings[:0:0]
	for _, b := range occ.Bookings {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	occ.Bookings = kept
	return occ
}

func scanBookings(rows *sql.Rows) ([]domain.Booking, error) {
	defer rows.Close()
	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var couponID sql.NullString
	err := row.Scan(&b.ID, &b.BookingNumber, &b.VehicleID, &b.CustomerID, &b.PickupLocationID, &b.DropoffLocationID,
		&b.PickupDate, &b.PickupTime, &b.DropoffDate, &b.DropoffTime, &b.Days, &b.BasePriceCents, &b.ExtrasPriceCents,
		&b.DiscountCents, &couponID, &b.CouponCode, &b.TotalPriceCents, &b.AmountPaidCents, &b.PaymentStatus, &b.Status,
		&b.Customer.Name, &b.Customer.Email, &b.Customer.Phone, &b.Notes, &b.AdminNotes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.CouponID = ptrString(couponID)
	b.PickupDate = asDate(b.PickupDate)
	b.DropoffDate = asDate(b.DropoffDate)
	return &b, nil
}

func bookingWriteError(err error) error {
	switch pqCode(err) {
	case codeExclusionViolation:
		return domain.NewError(domain.KindVehicleUnavailable, "vehicle is already booked for an overlapping period")
	case codeUniqueViolation:
		if pqConstraint(err) == "bookings_booking_number_key" {
			return repository.ErrDuplicateBookingNumber
		}
	}
	return err
}
