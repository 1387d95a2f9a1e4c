package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/repository"

	"github.com/google/uuid"
)

type couponRepository struct {
	db *sql.DB
}

func NewCouponRepository(db *sql.DB) repository.CouponRepository {
	return &couponRepository{db: db}
}

const couponColumns = `id, code, name, description, coupon_type, discount_type, discount_value,
	min_rental_days, min_rental_amount_cents, valid_from, valid_until, max_uses, current_uses,
	is_active, created_at, updated_at`

func (r *couponRepository) Create(ctx context.Context, c *domain.Coupon) error {
	logger.EnterMethod("couponRepository.Create", "code", c.Code)

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `INSERT INTO coupons (id, code, name, description, coupon_type, discount_type, discount_value,
	              min_rental_days, min_rental_amount_cents, valid_from, valid_until, max_uses, current_uses,
	              is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
	          RETURNING created_at, updated_at`
	logger.DatabaseCall("INSERT", "coupons", "code", c.Code)
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.Code, c.Name, c.Description, c.CouponType, c.DiscountType, c.DiscountValue,
		c.MinRentalDays, c.MinRentalAmountCents, nullTime(c.ValidFrom), nullTime(c.ValidUntil), nullInt(c.MaxUses), c.CurrentUses,
		c.IsActive, time.Now(),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		err = couponWriteError(err, c.Code)
		logger.ExitMethodWithError("couponRepository.Create", err, "code", c.Code)
		return err
	}

	logger.ExitMethod("couponRepository.Create", "couponID", c.ID)
	return nil
}

func (r *couponRepository) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "coupon", id)
	}
	return c, nil
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE upper(code) = $1`, strings.ToUpper(code)))
	if err != nil {
		return nil, notFound(err, "coupon", code)
	}
	return c, nil
}

func (r *couponRepository) List(ctx context.Context, activeOnly bool) ([]domain.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

// Update rewrites the editable fields. current_uses is owned by bookings and
// is never written here.
func (r *couponRepository) Update(ctx context.Context, c *domain.Coupon) error {
	logger.EnterMethod("couponRepository.Update", "couponID", c.ID)

	query := `UPDATE coupons SET code=$1, name=$2, description=$3, coupon_type=$4, discount_type=$5,
	              discount_value=$6, min_rental_days=$7, min_rental_amount_cents=$8, valid_from=$9,
	              valid_until=$10, max_uses=$11, is_active=$12, updated_at=$13
	          WHERE id=$14
	          RETURNING current_uses, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		c.Code, c.Name, c.Description, c.CouponType, c.DiscountType,
		c.DiscountValue, c.MinRentalDays, c.MinRentalAmountCents, nullTime(c.ValidFrom),
		nullTime(c.ValidUntil), nullInt(c.MaxUses), c.IsActive, time.Now(), c.ID,
	).Scan(&c.CurrentUses, &c.UpdatedAt)
	if err != nil {
		err = notFound(couponWriteError(err, c.Code), "coupon", c.ID)
		logger.ExitMethodWithError("couponRepository.Update", err, "couponID", c.ID)
		return err
	}

	logger.ExitMethod("couponRepository.Update", "couponID", c.ID)
	return nil
}

func (r *couponRepository) DeactivateExpired(ctx context.Context, today time.Time) (int64, error) {
	query := `UPDATE coupons SET is_active = false, updated_at = $2
	          WHERE is_active AND valid_until IS NOT NULL AND valid_until < $1`
	logger.DatabaseCall("UPDATE", query)
	res, err := r.db.ExecContext(ctx, query, today, time.Now())
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return 0, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoupon(row rowScanner) (*domain.Coupon, error) {
	var c domain.Coupon
	var validFrom, validUntil sql.NullTime
	var maxUses sql.NullInt64
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.CouponType, &c.DiscountType, &c.DiscountValue,
		&c.MinRentalDays, &c.MinRentalAmountCents, &validFrom, &validUntil, &maxUses, &c.CurrentUses,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ValidFrom = ptrTime(validFrom)
	c.ValidUntil = ptrTime(validUntil)
	c.MaxUses = ptrInt(maxUses)
	return &c, nil
}

func couponWriteError(err error, code string) error {
	switch pqCode(err) {
	case codeUniqueViolation:
		return domain.NewError(domain.KindDuplicateCouponCode, "coupon code %s already exists", code)
	case codeCheckViolation:
		if pqConstraint(err) == "coupons_uses_within_max" {
			return domain.NewError(domain.KindCouponUsageExceeded, "coupon %s already has more uses than the new maximum", code)
		}
	}
	return err
}
