// Package apperrors defines the error kinds surfaced by the checkout service.
// Every error returned by a repository or service unwraps to exactly one of
// the sentinel kinds below so handlers can map it with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrPrecondition = errors.New("precondition failed")
	ErrRemote       = errors.New("remote failure")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Preconditions with a fixed message.
var (
	ErrNotReadyForCheckout = fmt.Errorf("%w: cart is not ready for checkout", ErrPrecondition)
	ErrEmptyCart           = fmt.Errorf("%w: cart has no items", ErrPrecondition)
	ErrCartNotEditable     = fmt.Errorf("%w: cart can no longer be changed", ErrPrecondition)
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrSessionExpired      = fmt.Errorf("%w: session expired or logged out", ErrUnauthorized)
)

// NotFound reports a lookup miss for a document of the given kind.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Remote wraps a failure of the underlying store or broker.
func Remote(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// ValidationError carries per-field messages for malformed input or documents.
type ValidationError struct {
	Fields map[string]string
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StockLimitError is returned when an add would exceed the product's stock.
type StockLimitError struct {
	ProductID   string
	ProductName string
	Available   int
}

func (e *StockLimitError) Error() string {
	if e.Available <= 0 {
		return fmt.Sprintf("%s is currently out of stock", e.ProductName)
	}
	return fmt.Sprintf("stock limit reached: only %d units of %s available", e.Available, e.ProductName)
}

func (e *StockLimitError) Unwrap() error { return ErrPrecondition }

// AgeVerificationError is returned when the entered customer age is below the
// highest age restriction in the cart.
type AgeVerificationError struct {
	RequiredAge int
	EnteredAge  int
}

func (e *AgeVerificationError) Error() string {
	return fmt.Sprintf("age verification failed: customer must be at least %d years old", e.RequiredAge)
}

func (e *AgeVerificationError) Unwrap() error { return ErrPrecondition }

// TransitionError reports an illegal cart status change.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move cart from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrPrecondition }
