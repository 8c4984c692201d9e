package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// WithDetails returns a copy of the error carrying a structured payload for clients.
func (e *Error) WithDetails(details interface{}) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Details = details
	return &clone
}

// Predefined errors for common scenarios.
var (
	ErrNotFound   = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict   = New("SCHEDULE_CONFLICT", http.StatusConflict, "schedule conflict")
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal   = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrStorage    = New("STORAGE_ERROR", http.StatusInternalServerError, "storage failure")
	ErrRateLimit  = New("RATE_LIMITED", http.StatusTooManyRequests, "too many requests")

	ErrMissingField         = New("MISSING_FIELD", http.StatusBadRequest, "required field is missing")
	ErrInvalidCreditHours   = New("INVALID_CREDIT_HOURS", http.StatusBadRequest, "credit hours must be a non-negative integer")
	ErrInvalidTimeFormat    = New("INVALID_TIME_FORMAT", http.StatusBadRequest, "invalid time format, use HH:MM")
	ErrInvalidTimeRange     = New("INVALID_TIME_RANGE", http.StatusBadRequest, "start time must be before end time")
	ErrInvalidDay           = New("INVALID_DAY", http.StatusBadRequest, "invalid day")
	ErrEmptySchedule        = New("EMPTY_SCHEDULE", http.StatusBadRequest, "at least one schedule is required")
	ErrOverlappingIntervals = New("OVERLAPPING_INTERVALS", http.StatusBadRequest, "schedules within the booking overlap")

	// ErrCacheMiss signals an absent cache key; it never reaches clients.
	ErrCacheMiss = errors.New("cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
