package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/pricing"
	"rental-booking-backend/internal/service"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Validation("malformed request body: %v", err)
	}
	return validate.Struct(dst)
}

func validationError(errs validator.ValidationErrors) *domain.Error {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must match %s", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return domain.Validation("%s", strings.Join(msgs, "; "))
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// QuoteRequest prices a rental without storing anything.
type QuoteRequest struct {
	VehicleID   string         `json:"vehicle_id" validate:"required,uuid"`
	PickupDate  string         `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	PickupTime  string         `json:"pickup_time" validate:"omitempty,datetime=15:04"`
	DropoffDate string         `json:"dropoff_date" validate:"required,datetime=2006-01-02"`
	DropoffTime string         `json:"dropoff_time" validate:"omitempty,datetime=15:04"`
	Extras      map[string]int `json:"extras" validate:"omitempty,dive,keys,uuid,endkeys,gte=0"`
	CouponCode  string         `json:"coupon_code" validate:"omitempty,max=64"`
	// BaseOverrideCents replaces the daily rate times days.
	BaseOverrideCents *int64 `json:"base_override_cents" validate:"omitempty,gte=0"`
}

func (q QuoteRequest) toService() (service.QuoteRequest, error) {
	pickup, err := pricing.ParseDate(q.PickupDate)
	if err != nil {
		return service.QuoteRequest{}, err
	}
	dropoff, err := pricing.ParseDate(q.DropoffDate)
	if err != nil {
		return service.QuoteRequest{}, err
	}
	return service.QuoteRequest{
		VehicleID:         q.VehicleID,
		PickupDate:        pickup,
		PickupTime:        q.PickupTime,
		DropoffDate:       dropoff,
		DropoffTime:       q.DropoffTime,
		Extras:            q.Extras,
		CouponCode:        q.CouponCode,
		BaseOverrideCents: q.BaseOverrideCents,
	}, nil
}

type CustomerRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,max=50"`
}

func (c *CustomerRequest) toService() *service.CustomerDetails {
	if c == nil {
		return nil
	}
	return &service.CustomerDetails{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

type CreateBookingRequest struct {
	QuoteRequest
	CustomerID        string           `json:"customer_id" validate:"required_without=Customer,omitempty,uuid"`
	Customer          *CustomerRequest `json:"customer" validate:"required_without=CustomerID,omitempty"`
	PickupLocationID  string           `json:"pickup_location_id" validate:"required,uuid"`
	DropoffLocationID string           `json:"dropoff_location_id" validate:"required,uuid"`
	Status            string           `json:"status" validate:"omitempty,oneof=pending confirmed in_progress completed cancelled"`
	AmountPaidCents   int64            `json:"amount_paid_cents" validate:"gte=0"`
	Notes             string           `json:"notes" validate:"max=2000"`
	AdminNotes        string           `json:"admin_notes" validate:"max=2000"`
}

func (b CreateBookingRequest) toService() (service.CreateBookingRequest, error) {
	q, err := b.QuoteRequest.toService()
	if err != nil {
		return service.CreateBookingRequest{}, err
	}
	return service.CreateBookingRequest{
		QuoteRequest:      q,
		CustomerID:        b.CustomerID,
		Customer:          b.Customer.toService(),
		PickupLocationID:  b.PickupLocationID,
		DropoffLocationID: b.DropoffLocationID,
		Status:            domain.BookingStatus(b.Status),
		AmountPaidCents:   b.AmountPaidCents,
		Notes:             b.Notes,
		AdminNotes:        b.AdminNotes,
	}, nil
}

type UpdateBookingRequest struct {
	QuoteRequest
	PickupLocationID  string `json:"pickup_location_id" validate:"required,uuid"`
	DropoffLocationID string `json:"dropoff_location_id" validate:"required,uuid"`
	Status            string `json:"status" validate:"omitempty,oneof=pending confirmed in_progress completed cancelled"`
	Notes             string `json:"notes" validate:"max=2000"`
	AdminNotes        string `json:"admin_notes" validate:"max=2000"`
}

func (b UpdateBookingRequest) toService(id string) (service.UpdateBookingRequest, error) {
	q, err := b.QuoteRequest.toService()
	if err != nil {
		return service.UpdateBookingRequest{}, err
	}
	return service.UpdateBookingRequest{
		QuoteRequest:      q,
		ID:                id,
		PickupLocationID:  b.PickupLocationID,
		DropoffLocationID: b.DropoffLocationID,
		Status:            domain.BookingStatus(b.Status),
		Notes:             b.Notes,
		AdminNotes:        b.AdminNotes,
	}, nil
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed in_progress completed cancelled"`
}

type PaymentRequest struct {
	// AmountCents may be negative to record a refund.
	AmountCents int64 `json:"amount_cents" validate:"required"`
}

type CouponValidateRequest struct {
	Code          string `json:"code" validate:"required,max=64"`
	RentalDays    int    `json:"rental_days" validate:"required,gte=1"`
	SubtotalCents int64  `json:"subtotal_cents" validate:"gte=0"`
}

type CouponRequest struct {
	Code                 string `json:"code" validate:"required,max=64"`
	Name                 string `json:"name" validate:"required,max=200"`
	Description          string `json:"description" validate:"max=2000"`
	CouponType           string `json:"coupon_type" validate:"required,oneof=gift permanent"`
	DiscountType         string `json:"discount_type" validate:"required,oneof=percentage fixed"`
	// DiscountValue is hundredths of a percent for percentage coupons
	// (1000 = 10%, at most 10000) and cents for fixed ones.
	DiscountValue        int64  `json:"discount_value" validate:"gte=0"`
	MinRentalDays        int    `json:"min_rental_days" validate:"gte=0"`
	MinRentalAmountCents int64  `json:"min_rental_amount_cents" validate:"gte=0"`
	ValidFrom            string `json:"valid_from" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil           string `json:"valid_until" validate:"omitempty,datetime=2006-01-02"`
	MaxUses              *int   `json:"max_uses" validate:"omitempty,gte=1"`
	IsActive             *bool  `json:"is_active"`
}

func (c CouponRequest) toDomain(id string) (*domain.Coupon, error) {
	coupon := &domain.Coupon{
		ID:                   id,
		Code:                 c.Code,
		Name:                 c.Name,
		Description:          c.Description,
		CouponType:           domain.CouponType(c.CouponType),
		DiscountType:         domain.DiscountType(c.DiscountType),
		DiscountValue:        c.DiscountValue,
		MinRentalDays:        c.MinRentalDays,
		MinRentalAmountCents: c.MinRentalAmountCents,
		MaxUses:              c.MaxUses,
		IsActive:             c.IsActive == nil || *c.IsActive,
	}
	var err error
	if coupon.ValidFrom, err = optionalDate(c.ValidFrom); err != nil {
		return nil, err
	}
	if coupon.ValidUntil, err = optionalDate(c.ValidUntil); err != nil {
		return nil, err
	}
	return coupon, nil
}

type BlockedPeriodRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"max=500"`
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := pricing.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
