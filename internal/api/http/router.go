package http

import (
	"context"
	"fmt"
	"net/http"

	"rental-booking-backend/internal/security"
	"rental-booking-backend/internal/service"

	"github.com/gorilla/mux"
)

// Dependencies are the collaborators the HTTP API is built from.
type Dependencies struct {
	Booking service.BookingService
	Coupon  service.CouponService
	Fleet   service.FleetService
	Auth    service.AuthService
	Tokens  security.TokenManager
	Limiter *RateLimiter
	// QuoteRate and CouponValidateRate use the "<limit>-<period>" format, e.g. "10-M".
	QuoteRate          string
	CouponValidateRate string
	// Ping reports storage health for /healthz.
	Ping func(ctx context.Context) error
}

// Handler serves the booking API.
type Handler struct {
	booking service.BookingService
	coupon  service.CouponService
	fleet   service.FleetService
	auth    service.AuthService
	ping    func(ctx context.Context) error
}

// NewRouter registers every route with its middleware.
func NewRouter(deps Dependencies) (*mux.Router, error) {
	h := &Handler{
		booking: deps.Booking,
		coupon:  deps.Coupon,
		fleet:   deps.Fleet,
		auth:    deps.Auth,
		ping:    deps.Ping,
	}

	limiter := deps.Limiter
	if limiter == nil {
		limiter = &RateLimiter{}
	}
	quote, err := limiter.Limit("quote", deps.QuoteRate, http.HandlerFunc(h.Quote))
	if err != nil {
		return nil, err
	}
	validateCoupon, err := limiter.Limit("coupon_validate", deps.CouponValidateRate, http.HandlerFunc(h.ValidateCoupon))
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path)})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method_not_allowed", Message: "method not allowed"})
	})
	router.Use(recoveryMiddleware, loggingMiddleware, NewAuthMiddleware(deps.Tokens).Middleware)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := "/api/v1"
	// Public
	router.HandleFunc(api+"/auth/login", h.Login).Methods(http.MethodPost)
	router.Handle(api+"/quote", quote).Methods(http.MethodPost)
	router.Handle(api+"/coupons/validate", validateCoupon).Methods(http.MethodPost)
	router.HandleFunc(api+"/vehicles/available", h.ListAvailableVehicles).Methods(http.MethodGet)
	router.HandleFunc(api+"/locations", h.ListLocations).Methods(http.MethodGet)
	router.HandleFunc(api+"/extras", h.ListExtras).Methods(http.MethodGet)

	// Bookings
	router.HandleFunc(api+"/bookings", h.ListBookings).Methods(http.MethodGet)
	router.HandleFunc(api+"/bookings", h.CreateBooking).Methods(http.MethodPost)
	router.HandleFunc(api+"/bookings/number/{number}", h.GetBookingByNumber).Methods(http.MethodGet)
	router.HandleFunc(api+"/bookings/{id}", h.GetBooking).Methods(http.MethodGet)
	router.HandleFunc(api+"/bookings/{id}", h.UpdateBooking).Methods(http.MethodPut)
	router.HandleFunc(api+"/bookings/{id}", h.DeleteBooking).Methods(http.MethodDelete)
	router.HandleFunc(api+"/bookings/{id}/status", h.UpdateBookingStatus).Methods(http.MethodPatch)
	router.HandleFunc(api+"/bookings/{id}/payments", h.RecordPayment).Methods(http.MethodPost)

	// Fleet
	router.HandleFunc(api+"/vehicles", h.ListVehicles).Methods(http.MethodGet)
	router.HandleFunc(api+"/vehicles/{id}/availability", h.VehicleAvailability).Methods(http.MethodGet)
	router.HandleFunc(api+"/vehicles/{id}/blocked-periods", h.ListBlockedPeriods).Methods(http.MethodGet)
	router.HandleFunc(api+"/vehicles/{id}/blocked-periods", h.CreateBlockedPeriod).Methods(http.MethodPost)
	router.HandleFunc(api+"/blocked-periods/{id}", h.DeleteBlockedPeriod).Methods(http.MethodDelete)

	// Coupons
	router.HandleFunc(api+"/coupons", h.ListCoupons).Methods(http.MethodGet)
	router.HandleFunc(api+"/coupons", h.CreateCoupon).Methods(http.MethodPost)
	router.HandleFunc(api+"/coupons/{id}", h.GetCoupon).Methods(http.MethodGet)
	router.HandleFunc(api+"/coupons/{id}", h.UpdateCoupon).Methods(http.MethodPut)
	router.HandleFunc(api+"/coupons/{id}/deactivate", h.DeactivateCoupon).Methods(http.MethodPost)

	// Customers
	router.HandleFunc(api+"/customers", h.CreateCustomer).Methods(http.MethodPost)
	router.HandleFunc(api+"/customers/{id}", h.GetCustomer).Methods(http.MethodGet)

	return router, nil
}
