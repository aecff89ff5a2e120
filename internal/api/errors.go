package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/parishworks/chms-core/internal/auth"
	"github.com/parishworks/chms-core/internal/finance"
	"github.com/parishworks/chms-core/internal/member"
	"github.com/parishworks/chms-core/internal/reporting"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeConflict     = "conflict"
	ErrCodeLocked       = "account_locked"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps a service-layer error onto an HTTP response.
// Validation sentinels become 400, missing records 404, duplicates 409,
// and anything unrecognised a generic 500. The underlying error string
// is only exposed to admins; everyone else gets the generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, member.ErrMemberNotFound),
		errors.Is(err, finance.ErrTransactionNotFound),
		errors.Is(err, finance.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())

	case errors.Is(err, auth.ErrUsernameExists),
		errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, finance.ErrCategoryExists):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())

	case errors.Is(err, auth.ErrUsernameTooShort),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidRole),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrWrongPassword),
		errors.Is(err, auth.ErrNoFields),
		errors.Is(err, member.ErrNameRequired),
		errors.Is(err, member.ErrInvalidDate),
		errors.Is(err, member.ErrFutureDate),
		errors.Is(err, member.ErrInvalidEmail),
		errors.Is(err, member.ErrInvalidStatus),
		errors.Is(err, member.ErrInvalidGender),
		errors.Is(err, finance.ErrInvalidType),
		errors.Is(err, finance.ErrInvalidAmount),
		errors.Is(err, finance.ErrInvalidDate),
		errors.Is(err, finance.ErrFutureDate),
		errors.Is(err, finance.ErrCategoryNameEmpty),
		errors.Is(err, reporting.ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())

	default:
		if u := currentUser(r); u != nil && u.Role == auth.RoleAdmin {
			writeError(w, http.StatusInternalServerError, ErrCodeInternal, err.Error())
			return
		}
		writeInternalError(w, "internal server error")
	}
}
