package http

import (
	"net/http"
	"strconv"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/pricing"
	"rental-booking-backend/internal/service"
)

func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	rentableOnly, _ := strconv.ParseBool(r.URL.Query().Get("rentable"))
	vehicles, err := h.fleet.ListVehicles(r.Context(), rentableOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(vehicles))
}

func (h *Handler) ListAvailableVehicles(w http.ResponseWriter, r *http.Request) {
	pickup, dropoff, err := dateRangeQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	vehicles, err := h.booking.ListAvailableVehicles(r.Context(), pickup, dropoff)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(vehicles))
}

func (h *Handler) VehicleAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "vehicle")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pickup, dropoff, err := dateRangeQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conflicts, err := h.booking.CheckAvailability(r.Context(), id, pickup, dropoff, r.URL.Query().Get("exclude_booking_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AvailabilityResponse{
		VehicleID: id,
		Available: len(conflicts) == 0,
		Conflicts: mapConflicts(conflicts),
	})
}

func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.fleet.ListLocations(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(locations))
}

func (h *Handler) ListExtras(w http.ResponseWriter, r *http.Request) {
	extras, err := h.fleet.ListExtras(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(extras))
}

func (h *Handler) ListBlockedPeriods(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "vehicle")
	if err != nil {
		writeError(w, r, err)
		return
	}
	periods, err := h.fleet.ListBlockedPeriods(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]BlockedPeriodResponse, 0, len(periods))
	for i := range periods {
		resp = append(resp, mapBlockedPeriod(&periods[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateBlockedPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "vehicle")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req BlockedPeriodRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := pricing.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := pricing.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	period := &domain.BlockedPeriod{VehicleID: id, StartDate: start, EndDate: end, Reason: req.Reason}
	if err := h.fleet.CreateBlockedPeriod(r.Context(), period); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapBlockedPeriod(period))
}

func (h *Handler) DeleteBlockedPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "blocked period")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.fleet.DeleteBlockedPeriod(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	customer, err := h.fleet.CreateCustomer(r.Context(), service.CustomerDetails{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "customer")
	if err != nil {
		writeError(w, r, err)
		return
	}
	customer, err := h.fleet.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
