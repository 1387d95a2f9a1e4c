package http

import (
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/pricing"
	"rental-booking-backend/internal/service"
)

type ConflictResponse struct {
	Kind          string `json:"kind"`
	BookingID     string `json:"booking_id,omitempty"`
	BookingNumber string `json:"booking_number,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Reason        string `json:"reason,omitempty"`
}

type ExtraLineResponse struct {
	ExtraID         string `json:"extra_id"`
	ExtraName       string `json:"extra_name"`
	Quantity        int    `json:"quantity"`
	UnitPriceCents  int64  `json:"unit_price_cents"`
	TotalPriceCents int64  `json:"total_price_cents"`
}

type QuoteResponse struct {
	Days             int                 `json:"days"`
	BasePriceCents   int64               `json:"base_price_cents"`
	ExtrasPriceCents int64               `json:"extras_price_cents"`
	Extras           []ExtraLineResponse `json:"extras"`
	SubtotalCents    int64               `json:"subtotal_cents"`
	DiscountCents    int64               `json:"discount_cents"`
	CouponCode       string              `json:"coupon_code,omitempty"`
	TotalPriceCents  int64               `json:"total_price_cents"`
	Total            string              `json:"total"`
}

type BookingResponse struct {
	ID                string                  `json:"id"`
	BookingNumber     string                  `json:"booking_number"`
	VehicleID         string                  `json:"vehicle_id"`
	CustomerID        string                  `json:"customer_id"`
	Customer          domain.CustomerSnapshot `json:"customer"`
	PickupLocationID  string                  `json:"pickup_location_id"`
	DropoffLocationID string                  `json:"dropoff_location_id"`
	PickupDate        string                  `json:"pickup_date"`
	PickupTime        string                  `json:"pickup_time"`
	DropoffDate       string                  `json:"dropoff_date"`
	DropoffTime       string                  `json:"dropoff_time"`
	Days              int                     `json:"days"`
	BasePriceCents    int64                   `json:"base_price_cents"`
	ExtrasPriceCents  int64                   `json:"extras_price_cents"`
	DiscountCents     int64                   `json:"discount_cents"`
	CouponCode        string                  `json:"coupon_code,omitempty"`
	TotalPriceCents   int64                   `json:"total_price_cents"`
	AmountPaidCents   int64                   `json:"amount_paid_cents"`
	BalanceCents      int64                   `json:"balance_cents"`
	PaymentStatus     string                  `json:"payment_status"`
	Status            string                  `json:"status"`
	Notes             string                  `json:"notes"`
	AdminNotes        string                  `json:"admin_notes"`
	Extras            []ExtraLineResponse     `json:"extras"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int32             `json:"total"`
	Page     int32             `json:"page"`
	PageSize int32             `json:"page_size"`
}

type CouponResponse struct {
	ID                   string    `json:"id"`
	Code                 string    `json:"code"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	CouponType           string    `json:"coupon_type"`
	DiscountType         string    `json:"discount_type"`
	// Same units as CouponRequest.DiscountValue.
	DiscountValue        int64     `json:"discount_value"`
	MinRentalDays        int       `json:"min_rental_days"`
	MinRentalAmountCents int64     `json:"min_rental_amount_cents"`
	ValidFrom            string    `json:"valid_from,omitempty"`
	ValidUntil           string    `json:"valid_until,omitempty"`
	MaxUses              *int      `json:"max_uses,omitempty"`
	CurrentUses          int       `json:"current_uses"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// CouponPreviewResponse is what a customer sees after entering a code.
type CouponPreviewResponse struct {
	Valid         bool   `json:"valid"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	DiscountType  string `json:"discount_type"`
	DiscountValue int64  `json:"discount_value"`
	DiscountCents int64  `json:"discount_cents"`
	TotalCents    int64  `json:"total_cents"`
}

type BlockedPeriodResponse struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicle_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type AvailabilityResponse struct {
	VehicleID string             `json:"vehicle_id"`
	Available bool               `json:"available"`
	Conflicts []ConflictResponse `json:"conflicts"`
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func mapConflict(c domain.Conflict) ConflictResponse {
	return ConflictResponse{
		Kind:          string(c.Kind),
		BookingID:     c.BookingID,
		BookingNumber: c.BookingNumber,
		CustomerName:  c.CustomerName,
		StartDate:     formatDate(c.StartDate),
		EndDate:       formatDate(c.EndDate),
		Reason:        c.Reason,
	}
}

func mapConflicts(conflicts []domain.Conflict) []ConflictResponse {
	out := make([]ConflictResponse, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, mapConflict(c))
	}
	return out
}

func mapExtraLines(lines []domain.BookingExtra) []ExtraLineResponse {
	out := make([]ExtraLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, ExtraLineResponse{
			ExtraID:         l.ExtraID,
			ExtraName:       l.ExtraName,
			Quantity:        l.Quantity,
			UnitPriceCents:  l.UnitPriceCents,
			TotalPriceCents: l.TotalPriceCents,
		})
	}
	return out
}

func mapQuote(q *pricing.Quote) QuoteResponse {
	resp := QuoteResponse{
		Days:             q.Days,
		BasePriceCents:   q.BasePriceCents,
		ExtrasPriceCents: q.ExtrasPriceCents,
		Extras:           mapExtraLines(q.ExtraLines),
		SubtotalCents:    q.SubtotalCents,
		DiscountCents:    q.DiscountCents,
		TotalPriceCents:  q.TotalPriceCents,
		Total:            pricing.FormatCents(q.TotalPriceCents),
	}
	if q.Coupon != nil {
		resp.CouponCode = q.Coupon.Code
	}
	return resp
}

func mapBooking(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:                b.ID,
		BookingNumber:     b.BookingNumber,
		VehicleID:         b.VehicleID,
		CustomerID:        b.CustomerID,
		Customer:          b.Customer,
		PickupLocationID:  b.PickupLocationID,
		DropoffLocationID: b.DropoffLocationID,
		PickupDate:        formatDate(b.PickupDate),
		PickupTime:        b.PickupTime,
		DropoffDate:       formatDate(b.DropoffDate),
		DropoffTime:       b.DropoffTime,
		Days:              b.Days,
		BasePriceCents:    b.BasePriceCents,
		ExtrasPriceCents:  b.ExtrasPriceCents,
		DiscountCents:     b.DiscountCents,
		CouponCode:        b.CouponCode,
		TotalPriceCents:   b.TotalPriceCents,
		AmountPaidCents:   b.AmountPaidCents,
		BalanceCents:      b.BalanceCents(),
		PaymentStatus:     string(b.PaymentStatus),
		Status:            string(b.Status),
		Notes:             b.Notes,
		AdminNotes:        b.AdminNotes,
		Extras:            mapExtraLines(b.Extras),
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func mapCoupon(c *domain.Coupon) CouponResponse {
	return CouponResponse{
		ID:                   c.ID,
		Code:                 c.Code,
		Name:                 c.Name,
		Description:          c.Description,
		CouponType:           string(c.CouponType),
		DiscountType:         string(c.DiscountType),
		DiscountValue:        c.DiscountValue,
		MinRentalDays:        c.MinRentalDays,
		MinRentalAmountCents: c.MinRentalAmountCents,
		ValidFrom:            formatOptionalDate(c.ValidFrom),
		ValidUntil:           formatOptionalDate(c.ValidUntil),
		MaxUses:              c.MaxUses,
		CurrentUses:          c.CurrentUses,
		IsActive:             c.IsActive,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

func mapCouponPreview(p *service.CouponPreview) CouponPreviewResponse {
	return CouponPreviewResponse{
		Valid:         true,
		Code:          p.Coupon.Code,
		Name:          p.Coupon.Name,
		DiscountType:  string(p.Coupon.DiscountType),
		DiscountValue: p.Coupon.DiscountValue,
		DiscountCents: p.DiscountCents,
		TotalCents:    p.TotalCents,
	}
}

func mapBlockedPeriod(p *domain.BlockedPeriod) BlockedPeriodResponse {
	return BlockedPeriodResponse{
		ID:        p.ID,
		VehicleID: p.VehicleID,
		StartDate: formatDate(p.StartDate),
		EndDate:   formatDate(p.EndDate),
		Reason:    p.Reason,
		CreatedAt: p.CreatedAt,
	}
}
