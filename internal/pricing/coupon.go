package pricing

import (
	"strings"
	"time"

	"rental-booking-backend/internal/domain"
)

const maxCouponCodeLength = 50

// NormalizeCouponCode upper-cases a code and rejects malformed input
func NormalizeCouponCode(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return "", domain.NewError(domain.KindInvalidCouponCode, "coupon code is required")
	}
	if len(c) > maxCouponCodeLength {
		return "", domain.NewError(domain.KindInvalidCouponCode, "coupon code must be at most %d characters", maxCouponCodeLength)
	}
	for _, r := range c {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return "", domain.NewError(domain.KindInvalidCouponCode, "coupon code %q contains invalid characters", code)
		}
	}
	return c, nil
}

// CouponRequest is the candidate booking a coupon is checked against
type CouponRequest struct {
	Today         time.Time
	RentalDays    int
	SubtotalCents int64
}

// EvaluateCoupon runs the applicability checks in order and returns the
// discount in cents. The first failing check decides the error. A nil coupon
// means the code did not resolve.
func EvaluateCoupon(c *domain.Coupon, req CouponRequest) (int64, error) {
	if c == nil {
		return 0, domain.ErrCouponNotFound
	}
	if !c.IsActive {
		return 0, domain.NewError(domain.KindCouponInactive, "coupon %s is not active", c.Code)
	}

	today := dateOnly(req.Today)
	if c.ValidFrom != nil && today.Before(dateOnly(*c.ValidFrom)) {
		return 0, domain.NewError(domain.KindCouponNotYetValid, "coupon %s is valid from %s",
			c.Code, c.ValidFrom.Format(domain.DateLayout))
	}
	if c.ValidUntil != nil && today.After(dateOnly(*c.ValidUntil)) {
		return 0, domain.NewError(domain.KindCouponExpired, "coupon %s expired on %s",
			c.Code, c.ValidUntil.Format(domain.DateLayout))
	}
	if !c.HasUsesLeft() {
		return 0, domain.NewError(domain.KindCouponExhausted, "coupon %s has reached its usage limit", c.Code)
	}
	return EvaluateHeldCoupon(c, req)
}

// EvaluateHeldCoupon prices a coupon a booking already holds. Only the rental
// minimums are checked; activity, validity dates and uses were settled when
// the coupon was attached.
func EvaluateHeldCoupon(c *domain.Coupon, req CouponRequest) (int64, error) {
	if c == nil {
		return 0, domain.ErrCouponNotFound
	}
	if req.RentalDays < c.MinRentalDays {
		return 0, domain.NewError(domain.KindMinimumDaysNotMet, "coupon %s requires at least %d rental days",
			c.Code, c.MinRentalDays)
	}
	if req.SubtotalCents < c.MinRentalAmountCents {
		return 0, domain.NewError(domain.KindMinimumAmountNotMet, "coupon %s requires a minimum amount of %s",
			c.Code, FormatCents(c.MinRentalAmountCents))
	}

	return CouponDiscount(c, req.SubtotalCents), nil
}

// CouponDiscount computes the discount a valid coupon grants on subtotal
func CouponDiscount(c *domain.Coupon, subtotalCents int64) int64 {
	if subtotalCents <= 0 {
		return 0
	}
	switch c.DiscountType {
	case domain.DiscountPercentage:
		return RoundHalfUp(subtotalCents*c.DiscountValue, domain.MaxPercentageValue)
	case domain.DiscountFixed:
		if c.DiscountValue > subtotalCents {
			return subtotalCents
		}
		return c.DiscountValue
	}
	return 0
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
