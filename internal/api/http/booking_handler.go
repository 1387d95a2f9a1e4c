package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"
	"rental-booking-backend/internal/pricing"

	"github.com/gorilla/mux"
)

// pathUUID reads a UUID route variable. Anything else cannot exist, so it
// is reported as not found.
func pathUUID(r *http.Request, name, entity string) (string, error) {
	id := mux.Vars(r)[name]
	if err := validate.Var(id, "required,uuid"); err != nil {
		return "", domain.NotFound(entity, id)
	}
	return id, nil
}

// dateRangeQuery reads the pickup_date and dropoff_date query parameters.
func dateRangeQuery(r *http.Request) (pickup, dropoff time.Time, err error) {
	q := r.URL.Query()
	if pickup, err = pricing.ParseDate(q.Get("pickup_date")); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if dropoff, err = pricing.ParseDate(q.Get("dropoff_date")); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return pickup, dropoff, nil
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	q, err := req.toService()
	if err != nil {
		writeError(w, r, err)
		return
	}

	quote, err := h.booking.Quote(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapQuote(quote))
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	create, err := req.toService()
	if err != nil {
		writeError(w, r, err)
		return
	}

	booking, err := h.booking.CreateBooking(r.Context(), create)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapBooking(booking))
}

func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "booking")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req UpdateBookingRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	update, err := req.toService(id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	booking, err := h.booking.UpdateBooking(r.Context(), update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapBooking(booking))
}

func (h *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "booking")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req StatusRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	booking, err := h.booking.UpdateStatus(r.Context(), id, domain.BookingStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapBooking(booking))
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "booking")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req PaymentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	booking, err := h.booking.RecordPayment(r.Context(), id, req.AmountCents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("Payment recorded", "booking", booking.BookingNumber, "amount_cents", req.AmountCents, "operator", operatorEmail(r))
	writeJSON(w, http.StatusOK, mapBooking(booking))
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "booking")
	if err != nil {
		writeError(w, r, err)
		return
	}
	booking, err := h.booking.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapBooking(booking))
}

func (h *Handler) GetBookingByNumber(w http.ResponseWriter, r *http.Request) {
	booking, err := h.booking.GetBookingByNumber(r.Context(), mux.Vars(r)["number"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapBooking(booking))
}

func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "booking")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.booking.DeleteBooking(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("Booking deleted", "booking_id", id, "operator", operatorEmail(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	filter, err := bookingFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	bookings, total, err := h.booking.ListBookings(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	for i := range bookings {
		resp.Bookings = append(resp.Bookings, mapBooking(&bookings[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func bookingFilter(r *http.Request) (domain.BookingFilter, error) {
	q := r.URL.Query()
	filter := domain.BookingFilter{
		Status:     domain.BookingStatus(strings.TrimSpace(q.Get("status"))),
		VehicleID:  q.Get("vehicle_id"),
		CustomerID: q.Get("customer_id"),
		Page:       1,
		PageSize:   50,
	}

	for name, dst := range map[string]*int32{"page": &filter.Page, "page_size": &filter.PageSize} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n < 1 {
			return domain.BookingFilter{}, domain.Validation("%s must be a positive integer", name)
		}
		*dst = int32(n)
	}
	if filter.PageSize > 200 {
		filter.PageSize = 200
	}

	var err error
	if filter.PickupFrom, err = optionalDate(q.Get("pickup_from")); err != nil {
		return domain.BookingFilter{}, err
	}
	if filter.PickupTo, err = optionalDate(q.Get("pickup_to")); err != nil {
		return domain.BookingFilter{}, err
	}
	return filter, nil
}
