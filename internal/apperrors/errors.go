package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Every AppError wraps one of these so callers can use errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrInternal           = errors.New("internal error")
)

// AppError carries the HTTP status and a stable machine-readable code.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(message string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: message, Status: http.StatusBadRequest, Err: ErrValidation}
}

// InvalidReference is returned when an id supplied as a foreign key is malformed.
func InvalidReference(field string) *AppError {
	return &AppError{
		Code:    "INVALID_REFERENCE",
		Message: fmt.Sprintf("invalid %s", field),
		Status:  http.StatusBadRequest,
		Err:     ErrValidation,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: message, Status: http.StatusUnauthorized, Err: ErrUnauthorized}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: message, Status: http.StatusForbidden, Err: ErrForbidden}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Conflict covers business-rule collisions (duplicate vote, duplicate report, ...).
// They are reported as 400 to stay compatible with existing clients.
func Conflict(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusBadRequest, Err: ErrConflict}
}

func AlreadyVoted() *AppError {
	return Conflict("ALREADY_VOTED", "you have already voted for this product")
}

func DuplicateReport() *AppError {
	return Conflict("DUPLICATE_REPORT", "you have already reported this product")
}

func InvalidTransition(from, to string) *AppError {
	return Conflict("INVALID_TRANSITION", fmt.Sprintf("product is %s and cannot become %s", from, to))
}

func InvalidOrExpiredCoupon() *AppError {
	return Conflict("INVALID_COUPON", "invalid or expired coupon")
}

func QuotaExceeded(message string) *AppError {
	return &AppError{Code: "QUOTA_EXCEEDED", Message: message, Status: http.StatusForbidden, Err: ErrQuotaExceeded}
}

func ServiceUnavailable(message string) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavailable,
	}
}

// Internal hides the cause from clients; the cause stays reachable through Unwrap for logging.
func Internal(message string, err error) *AppError {
	if err == nil {
		err = ErrInternal
	}
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError, Err: err}
}

// Status returns the HTTP status for err, defaulting to 500.
func Status(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrQuotaExceeded):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable code for err.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "INTERNAL_ERROR"
}

// Message returns the client-facing message for err. Causes of internal errors are never exposed.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
