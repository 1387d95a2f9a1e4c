package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/repository"

	"github.com/google/uuid"
)

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

const vehicleColumns = `id, name, internal_code, base_price_per_day_cents, is_for_rent, status`

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Name, &v.InternalCode, &v.BasePricePerDayCents, &v.IsForRent, &v.Status)
	if err != nil {
		return nil, notFound(err, "vehicle", id)
	}
	return v, nil
}

func (r *vehicleRepository) List(ctx context.Context, rentableOnly bool) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	if rentableOnly {
		query += ` WHERE is_for_rent AND status = 'available'`
	}
	query += ` ORDER BY internal_code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.InternalCode, &v.BasePricePerDayCents, &v.IsForRent, &v.Status); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

type locationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) repository.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	l := &domain.Location{}
	query := `SELECT id, name, city, is_active FROM locations WHERE id = $1`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.Name, &l.City, &l.IsActive); err != nil {
		return nil, notFound(err, "location", id)
	}
	return l, nil
}

func (r *locationRepository) ListActive(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, city, is_active FROM locations WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []domain.Location
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.City, &l.IsActive); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	logger.EnterMethod("customerRepository.Create", "email", c.Email)

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `INSERT INTO customers (id, name, email, phone, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, c.ID, c.Name, strings.ToLower(c.Email), c.Phone, time.Now()).Scan(&c.CreatedAt)
	if err != nil {
		if pqCode(err) == codeUniqueViolation {
			err = domain.Validation("a customer with email %s already exists", c.Email)
		}
		logger.ExitMethodWithError("customerRepository.Create", err)
		return err
	}

	logger.ExitMethod("customerRepository.Create", "customerID", c.ID)
	return nil
}

const customerColumns = `id, name, email, phone, total_bookings, total_spent_cents, created_at`

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.TotalBookings, &c.TotalSpentCents, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "customer", id)
	}
	return c, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE lower(email) = lower($1)`, email).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.TotalBookings, &c.TotalSpentCents, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "customer", email)
	}
	return c, nil
}

type extraRepository struct {
	db *sql.DB
}

func NewExtraRepository(db *sql.DB) repository.ExtraRepository {
	return &extraRepository{db: db}
}

func (r *extraRepository) ListActive(ctx context.Context) ([]domain.Extra, error) {
	query := `SELECT id, name, price_per_day_cents, price_per_rental_cents, price_type, is_active
	          FROM extras WHERE is_active ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extras []domain.Extra
	for rows.Next() {
		var e domain.Extra
		var perDay, perRental sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Name, &perDay, &perRental, &e.PriceType, &e.IsActive); err != nil {
			return nil, err
		}
		e.PricePerDayCents = ptrInt64(perDay)
		e.PricePerRentalCents = ptrInt64(perRental)
		extras = append(extras, e)
	}
	return extras, rows.Err()
}

type blockedPeriodRepository struct {
	db *sql.DB
}

func NewBlockedPeriodRepository(db *sql.DB) repository.BlockedPeriodRepository {
	return &blockedPeriodRepository{db: db}
}

func (r *blockedPeriodRepository) Create(ctx context.Context, p *domain.BlockedPeriod) error {
	logger.EnterMethod("blockedPeriodRepository.Create", "vehicleID", p.VehicleID)

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	query := `INSERT INTO blocked_periods (id, vehicle_id, start_date, end_date, reason, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, p.ID, p.VehicleID, p.StartDate, p.EndDate, p.Reason, time.Now()).Scan(&p.CreatedAt)
	if err != nil {
		logger.ExitMethodWithError("blockedPeriodRepository.Create", err)
		return err
	}

	logger.ExitMethod("blockedPeriodRepository.Create", "periodID", p.ID)
	return nil
}

func (r *blockedPeriodRepository) ListByVehicle(ctx context.Context, vehicleID string) ([]domain.BlockedPeriod, error) {
	query := `SELECT id, vehicle_id, start_date, end_date, reason, created_at
	          FROM blocked_periods WHERE vehicle_id = $1 ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBlockedPeriods(rows)
}

func (r *blockedPeriodRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blocked_periods WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("blocked period", id)
	}
	return nil
}

func scanBlockedPeriods(rows *sql.Rows) ([]domain.BlockedPeriod, error) {
	var periods []domain.BlockedPeriod
	for rows.Next() {
		var p domain.BlockedPeriod
		if err := rows.Scan(&p.ID, &p.VehicleID, &p.StartDate, &p.EndDate, &p.Reason, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.StartDate = asDate(p.StartDate)
		p.EndDate = asDate(p.EndDate)
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return periods, nil
}
