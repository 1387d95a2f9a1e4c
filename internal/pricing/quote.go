package pricing

import (
	"time"

	"rental-booking-backend/internal/domain"
)

// TotalPrice is base + extras - discount, never below zero
func TotalPrice(baseCents, extrasCents, discountCents int64) int64 {
	total := baseCents + extrasCents - discountCents
	if total < 0 {
		return 0
	}
	return total
}

// DerivePaymentStatus classifies how much of total has been paid
func DerivePaymentStatus(totalCents, paidCents int64) domain.PaymentStatus {
	switch {
	case paidCents <= 0:
		return domain.PaymentStatusPending
	case paidCents < totalCents:
		return domain.PaymentStatusPartial
	default:
		return domain.PaymentStatusPaid
	}
}

// QuoteInput is everything needed to price a rental
type QuoteInput struct {
	PickupDate  time.Time
	PickupTime  string
	DropoffDate time.Time
	DropoffTime string
	// DailyRateCents is used when BaseOverrideCents is nil.
	DailyRateCents    int64
	BaseOverrideCents *int64
	Extras            map[string]int
	ActiveExtras      []domain.Extra
	// Coupon is nil when no code was supplied.
	Coupon    *domain.Coupon
	HasCoupon bool
	// HeldCoupon marks Coupon as already attached to the booking being priced.
	HeldCoupon bool
	Today      time.Time
	PaidCents  int64
}

// Quote is the priced result of a rental request
type Quote struct {
	Days             int
	BasePriceCents   int64
	ExtrasPriceCents int64
	ExtraLines       []domain.BookingExtra
	SubtotalCents    int64
	DiscountCents    int64
	Coupon           *domain.Coupon
	TotalPriceCents  int64
	PaymentStatus    domain.PaymentStatus
}

// BuildQuote runs the duration, extras, coupon and total steps in order
func BuildQuote(in QuoteInput) (*Quote, error) {
	days, err := RentalDays(in.PickupDate, in.PickupTime, in.DropoffDate, in.DropoffTime)
	if err != nil {
		return nil, err
	}

	base := in.DailyRateCents * int64(days)
	if in.BaseOverrideCents != nil {
		if *in.BaseOverrideCents < 0 {
			return nil, domain.Validation("base price must not be negative")
		}
		base = *in.BaseOverrideCents
	}

	extras, err := CalculateExtras(in.Extras, days, in.ActiveExtras)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		Days:             days,
		BasePriceCents:   base,
		ExtrasPriceCents: extras.SubtotalCents,
		ExtraLines:       extras.Lines,
		SubtotalCents:    base + extras.SubtotalCents,
	}

	if in.HasCoupon {
		evaluate := EvaluateCoupon
		if in.HeldCoupon {
			evaluate = EvaluateHeldCoupon
		}
		discount, err := evaluate(in.Coupon, CouponRequest{
			Today:         in.Today,
			RentalDays:    days,
			SubtotalCents: q.SubtotalCents,
		})
		if err != nil {
			return nil, err
		}
		q.DiscountCents = discount
		q.Coupon = in.Coupon
	}

	q.TotalPriceCents = TotalPrice(q.BasePriceCents, q.ExtrasPriceCents, q.DiscountCents)
	q.PaymentStatus = DerivePaymentStatus(q.TotalPriceCents, in.PaidCents)
	return q, nil
}
