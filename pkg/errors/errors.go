package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status for the boundary layer.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest, ErrInvalidService, ErrInvalidDate:
		return http.StatusBadRequest
	case ErrSlotUnavailable:
		return http.StatusConflict
	case ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrInvalidService
	ErrInvalidDate
	ErrSlotUnavailable
	ErrStoreUnavailable
	ErrInternal
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInvalidService(serviceID string) *AppError {
	return &AppError{
		Code:    ErrInvalidService,
		Message: fmt.Sprintf("invalid service %q", serviceID),
	}
}

func NewInvalidDate(err error) *AppError {
	return &AppError{
		Code:    ErrInvalidDate,
		Message: "invalid date",
		Err:     err,
	}
}

// NewSlotUnavailable carries the single message the caller ever sees for a
// failed hold. The underlying cause stays in Err for logging only.
func NewSlotUnavailable(err error) *AppError {
	return &AppError{
		Code:    ErrSlotUnavailable,
		Message: "slot no longer available",
		Err:     err,
	}
}

func NewStoreUnavailable(err error) *AppError {
	return &AppError{
		Code:    ErrStoreUnavailable,
		Message: "booking store unavailable",
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// CodeOf extracts the application error code, if any.
func CodeOf(err error) (ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return 0, false
}

// IsCode reports whether err carries the given application error code.
func IsCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
