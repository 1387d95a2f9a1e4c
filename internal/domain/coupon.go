package domain

import "time"

type CouponType string

const (
	CouponTypeGift      CouponType = "gift"
	CouponTypePermanent CouponType = "permanent"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// MaxPercentageValue is 100.00% expressed in hundredths of a percent.
const MaxPercentageValue = 10000

type Coupon struct {
	ID           string       `json:"id"`
	Code         string       `json:"code"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	CouponType   CouponType   `json:"coupon_type"`
	DiscountType DiscountType `json:"discount_type"`
	// DiscountValue is cents for fixed coupons and hundredths of a percent
	// for percentage coupons (1000 = 10%).
	DiscountValue        int64      `json:"discount_value"`
	MinRentalDays        int        `json:"min_rental_days"`
	MinRentalAmountCents int64      `json:"min_rental_amount_cents"`
	ValidFrom            *time.Time `json:"valid_from,omitempty"`
	ValidUntil           *time.Time `json:"valid_until,omitempty"`
	MaxUses              *int       `json:"max_uses,omitempty"`
	CurrentUses          int        `json:"current_uses"`
	IsActive             bool       `json:"is_active"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// HasUsesLeft reports whether another booking may take this coupon.
func (c *Coupon) HasUsesLeft() bool {
	return c.MaxUses == nil || c.CurrentUses < *c.MaxUses
}
