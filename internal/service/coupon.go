package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/pricing"
	"rental-booking-backend/internal/repository"
)

type couponService struct {
	couponRepo repository.CouponRepository
	location   *time.Location
	now        func() time.Time
}

func NewCouponService(couponRepo repository.CouponRepository, location *time.Location, now func() time.Time) CouponService {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &couponService{couponRepo: couponRepo, location: location, now: now}
}

func (s *couponService) CreateCoupon(ctx context.Context, c *domain.Coupon) error {
	logger.EnterMethod("couponService.CreateCoupon", "code", c.Code)

	if err := prepareCoupon(c); err != nil {
		logger.ExitMethodWithError("couponService.CreateCoupon", err, "code", c.Code)
		return err
	}
	c.CurrentUses = 0
	if err := s.couponRepo.Create(ctx, c); err != nil {
		logger.ExitMethodWithError("couponService.CreateCoupon", err, "code", c.Code)
		return err
	}

	logger.ExitMethod("couponService.CreateCoupon", "couponID", c.ID, "code", c.Code)
	return nil
}

func (s *couponService) UpdateCoupon(ctx context.Context, c *domain.Coupon) error {
	logger.EnterMethod("couponService.UpdateCoupon", "couponID", c.ID, "code", c.Code)

	if err := prepareCoupon(c); err != nil {
		logger.ExitMethodWithError("couponService.UpdateCoupon", err, "couponID", c.ID)
		return err
	}
	if err := s.couponRepo.Update(ctx, c); err != nil {
		logger.ExitMethodWithError("couponService.UpdateCoupon", err, "couponID", c.ID)
		return err
	}

	logger.ExitMethod("couponService.UpdateCoupon", "couponID", c.ID)
	return nil
}

func (s *couponService) GetCoupon(ctx context.Context, id string) (*domain.Coupon, error) {
	return s.couponRepo.GetByID(ctx, id)
}

func (s *couponService) ListCoupons(ctx context.Context, activeOnly bool) ([]domain.Coupon, error) {
	return s.couponRepo.List(ctx, activeOnly)
}

func (s *couponService) DeactivateCoupon(ctx context.Context, id string) (*domain.Coupon, error) {
	logger.EnterMethod("couponService.DeactivateCoupon", "couponID", id)

	c, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("couponService.DeactivateCoupon", err, "couponID", id)
		return nil, err
	}
	if c.IsActive {
		c.IsActive = false
		if err := s.couponRepo.Update(ctx, c); err != nil {
			logger.ExitMethodWithError("couponService.DeactivateCoupon", err, "couponID", id)
			return nil, err
		}
	}

	logger.ExitMethod("couponService.DeactivateCoupon", "couponID", id)
	return c, nil
}

// ValidateCoupon previews a code against a rental without taking a use.
func (s *couponService) ValidateCoupon(ctx context.Context, check CouponCheck) (*CouponPreview, error) {
	logger.EnterMethod("couponService.ValidateCoupon", "code", check.Code, "days", check.RentalDays)

	code, err := pricing.NormalizeCouponCode(check.Code)
	if err != nil {
		logger.ExitMethodWithError("couponService.ValidateCoupon", err, "code", check.Code)
		return nil, err
	}
	if check.RentalDays < 1 || check.SubtotalCents < 0 {
		err := domain.Validation("rental days must be at least 1 and subtotal must not be negative")
		logger.ExitMethodWithError("couponService.ValidateCoupon", err, "code", code)
		return nil, err
	}

	c, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.ExitMethodWithError("couponService.ValidateCoupon", err, "code", code)
		return nil, err
	}

	discount, err := pricing.EvaluateCoupon(c, pricing.CouponRequest{
		Today:         s.today(),
		RentalDays:    check.RentalDays,
		SubtotalCents: check.SubtotalCents,
	})
	if err != nil {
		logger.ExitMethodWithError("couponService.ValidateCoupon", err, "code", code)
		return nil, err
	}

	logger.ExitMethod("couponService.ValidateCoupon", "code", code, "discount", discount)
	return &CouponPreview{
		Coupon:        c,
		DiscountCents: discount,
		TotalCents:    pricing.TotalPrice(check.SubtotalCents, 0, discount),
	}, nil
}

func (s *couponService) DeactivateExpired(ctx context.Context) (int64, error) {
	return s.couponRepo.DeactivateExpired(ctx, s.today())
}

func (s *couponService) today() time.Time {
	now := s.now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// prepareCoupon normalizes the code and enforces field rules. Gift coupons
// are always single use.
func prepareCoupon(c *domain.Coupon) error {
	code, err := pricing.NormalizeCouponCode(c.Code)
	if err != nil {
		return err
	}
	c.Code = code
	c.Name = strings.TrimSpace(c.Name)

	switch c.CouponType {
	case domain.CouponTypeGift:
		one := 1
		c.MaxUses = &one
	case domain.CouponTypePermanent:
	default:
		return domain.Validation("coupon type must be gift or permanent")
	}

	switch c.DiscountType {
	case domain.DiscountPercentage:
		if c.DiscountValue < 0 || c.DiscountValue > domain.MaxPercentageValue {
			return domain.Validation("percentage discount must be between 0%% and 100%%")
		}
	case domain.DiscountFixed:
		if c.DiscountValue < 0 {
			return domain.Validation("fixed discount must not be negative")
		}
	default:
		return domain.Validation("discount type must be percentage or fixed")
	}

	if c.MinRentalDays == 0 {
		c.MinRentalDays = 1
	}
	if c.MinRentalDays < 1 {
		return domain.Validation("minimum rental days must be at least 1")
	}
	if c.MinRentalAmountCents < 0 {
		return domain.Validation("minimum rental amount must not be negative")
	}
	if c.MaxUses != nil && *c.MaxUses < 1 {
		return domain.Validation("maximum uses must be at least 1")
	}
	if c.ValidFrom != nil && c.ValidUntil != nil && c.ValidUntil.Before(*c.ValidFrom) {
		return domain.Validation("valid until must not be before valid from")
	}
	return nil
}
