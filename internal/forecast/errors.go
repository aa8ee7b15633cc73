package forecast

import (
	"errors"
	"fmt"
)

// Forecast errors.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrNotFound            = errors.New("location not found")
	ErrEmptyResult         = errors.New("empty result")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Message)
	}
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// PointError annotates an upstream failure with the sample point that caused it.
type PointError struct {
	Point GeoPoint
	Err   error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("point %q (%s): %v", e.Point.Name, e.Point.Query(), e.Err)
}

func (e *PointError) Unwrap() error {
	return e.Err
}
