package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable half of a (kind, message) failure.
type ErrorKind string

const (
	// Input errors
	KindInvalidRange      ErrorKind = "invalid_range"
	KindUnknownExtra      ErrorKind = "unknown_extra"
	KindInvalidCouponCode ErrorKind = "invalid_coupon_code"
	KindValidation        ErrorKind = "validation"

	// Business-rule rejections
	KindCouponNotFound      ErrorKind = "coupon_not_found"
	KindCouponInactive      ErrorKind = "coupon_inactive"
	KindCouponNotYetValid   ErrorKind = "coupon_not_yet_valid"
	KindCouponExpired       ErrorKind = "coupon_expired"
	KindCouponExhausted     ErrorKind = "coupon_exhausted"
	KindMinimumDaysNotMet   ErrorKind = "minimum_days_not_met"
	KindMinimumAmountNotMet ErrorKind = "minimum_amount_not_met"
	KindVehicleUnavailable  ErrorKind = "vehicle_unavailable"

	// Integrity violations
	KindDuplicateCouponCode ErrorKind = "duplicate_coupon_code"
	KindCouponUsageExceeded ErrorKind = "coupon_usage_exceeded"

	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
)

// ErrorClass groups kinds by how callers should react to them.
type ErrorClass int

const (
	ClassPersistence ErrorClass = iota
	ClassInput
	ClassRejection
	ClassIntegrity
	ClassNotFound
	ClassUnauthorized
)

// Class returns the category a kind belongs to.
func (k ErrorKind) Class() ErrorClass {
	switch k {
	case KindInvalidRange, KindUnknownExtra, KindInvalidCouponCode, KindValidation:
		return ClassInput
	case KindCouponNotFound, KindCouponInactive, KindCouponNotYetValid, KindCouponExpired,
		KindCouponExhausted, KindMinimumDaysNotMet, KindMinimumAmountNotMet, KindVehicleUnavailable:
		return ClassRejection
	case KindDuplicateCouponCode, KindCouponUsageExceeded:
		return ClassIntegrity
	case KindNotFound:
		return ClassNotFound
	case KindUnauthorized:
		return ClassUnauthorized
	}
	return ClassPersistence
}

// Error is a failure carrying a kind and a message suitable for display.
type Error struct {
	Kind    ErrorKind
	Message string
	// Conflicts is set for KindVehicleUnavailable.
	Conflicts []Conflict
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Expected reports whether the error is a normal business outcome rather than a fault.
func (e *Error) Expected() bool {
	switch e.Kind.Class() {
	case ClassInput, ClassRejection, ClassIntegrity, ClassNotFound, ClassUnauthorized:
		return true
	}
	return false
}

// NewError builds an Error with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidRange        = &Error{Kind: KindInvalidRange, Message: "dropoff must be after pickup"}
	ErrUnknownExtra        = &Error{Kind: KindUnknownExtra, Message: "unknown extra"}
	ErrInvalidCouponCode   = &Error{Kind: KindInvalidCouponCode, Message: "malformed coupon code"}
	ErrValidation          = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrCouponNotFound      = &Error{Kind: KindCouponNotFound, Message: "coupon not found"}
	ErrCouponInactive      = &Error{Kind: KindCouponInactive, Message: "coupon is not active"}
	ErrCouponNotYetValid   = &Error{Kind: KindCouponNotYetValid, Message: "coupon is not valid yet"}
	ErrCouponExpired       = &Error{Kind: KindCouponExpired, Message: "coupon has expired"}
	ErrCouponExhausted     = &Error{Kind: KindCouponExhausted, Message: "coupon has reached its usage limit"}
	ErrMinimumDaysNotMet   = &Error{Kind: KindMinimumDaysNotMet, Message: "rental is shorter than the coupon minimum"}
	ErrMinimumAmountNotMet = &Error{Kind: KindMinimumAmountNotMet, Message: "rental amount is below the coupon minimum"}
	ErrVehicleUnavailable  = &Error{Kind: KindVehicleUnavailable, Message: "vehicle is not available for the selected dates"}
	ErrDuplicateCouponCode = &Error{Kind: KindDuplicateCouponCode, Message: "a coupon with this code already exists"}
	ErrCouponUsageExceeded = &Error{Kind: KindCouponUsageExceeded, Message: "coupon uses would exceed its maximum"}
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized, Message: "invalid credentials"}
)

// AsError extracts the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// NotFound reports a missing entity of the given type.
func NotFound(entity, id string) *Error {
	return NewError(KindNotFound, "%s %s not found", entity, id)
}

// Validation reports a field-level input problem.
func Validation(format string, args ...any) *Error {
	return NewError(KindValidation, format, args...)
}
