package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound is returned when no order exists for the given id.
	ErrOrderNotFound = errors.New("order not found")
	// ErrProvisionalNotFound is returned when a client reference matches no provisional order.
	ErrProvisionalNotFound = errors.New("provisional order not found")
)

// ValidationError reports an amount, reason or range violation. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NetworkError wraps a failed round trip to the order API.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetwork reports whether err wraps a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StaleEventError describes an event that lost the ordering check. It is logged and dropped.
type StaleEventError struct {
	OrderID  string
	Current  OrderStatus
	Incoming OrderStatus
	Reason   string
}

func (e *StaleEventError) Error() string {
	return fmt.Sprintf("stale event for order %s: %s -> %s (%s)", e.OrderID, e.Current, e.Incoming, e.Reason)
}
