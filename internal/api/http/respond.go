package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/logger"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string             `json:"error"`
	Message   string             `json:"message"`
	Conflicts []ConflictResponse `json:"conflicts,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// statusFor maps an error kind onto an HTTP status code.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindVehicleUnavailable:
		return http.StatusConflict
	}
	switch kind.Class() {
	case domain.ClassInput:
		return http.StatusBadRequest
	case domain.ClassRejection:
		return http.StatusUnprocessableEntity
	case domain.ClassIntegrity:
		return http.StatusConflict
	case domain.ClassNotFound:
		return http.StatusNotFound
	case domain.ClassUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError renders err. Failures without a domain kind are logged and
// reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		err = validationError(verrs)
	}

	derr, ok := domain.AsError(err)
	if !ok || derr.Kind.Class() == domain.ClassPersistence {
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal",
			Message: "internal server error",
		})
		return
	}

	resp := ErrorResponse{Error: string(derr.Kind), Message: derr.Message}
	for _, c := range derr.Conflicts {
		resp.Conflicts = append(resp.Conflicts, mapConflict(c))
	}
	writeJSON(w, statusFor(derr.Kind), resp)
}
