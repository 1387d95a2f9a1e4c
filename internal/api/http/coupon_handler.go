package http

import (
	"net/http"
	"strconv"

	"rental-booking-backend/internal/service"
)

func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponValidateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	preview, err := h.coupon.ValidateCoupon(r.Context(), service.CouponCheck{
		Code:          req.Code,
		RentalDays:    req.RentalDays,
		SubtotalCents: req.SubtotalCents,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCouponPreview(preview))
}

func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))
	coupons, err := h.coupon.ListCoupons(r.Context(), activeOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]CouponResponse, 0, len(coupons))
	for i := range coupons {
		resp = append(resp, mapCoupon(&coupons[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	coupon, err := req.toDomain("")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.coupon.CreateCoupon(r.Context(), coupon); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapCoupon(coupon))
}

func (h *Handler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "coupon")
	if err != nil {
		writeError(w, r, err)
		return
	}
	coupon, err := h.coupon.GetCoupon(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCoupon(coupon))
}

func (h *Handler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "coupon")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req CouponRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	coupon, err := req.toDomain(id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.coupon.UpdateCoupon(r.Context(), coupon); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCoupon(coupon))
}

func (h *Handler) DeactivateCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id", "coupon")
	if err != nil {
		writeError(w, r, err)
		return
	}
	coupon, err := h.coupon.DeactivateCoupon(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCoupon(coupon))
}
