package policy

import (
	"errors"
	"fmt"
)

// Validation errors are resolved locally and never reach the network.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field")
	ErrInvalidGuests        = errors.New("guest count must be a positive integer")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// Policy violations are recoverable by changing the input.
var (
	ErrDailyLimitReached       = errors.New("daily reservation limit reached")
	ErrPaymentMethodIneligible = errors.New("payment method is not eligible for this total")
	ErrReceiptRequired         = errors.New("proof of payment is required for this payment method")
)

// Transition errors are surfaced and never retried.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("role cannot perform this transition")
	ErrUnknownEntityKind = errors.New("unknown entity kind")
	ErrUnknownStatus     = errors.New("unknown status")
)

// FieldError reports a single invalid form field.
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Err }

// MissingField builds the MissingRequiredField(field) error.
func MissingField(field string) error {
	return &FieldError{Field: field, Reason: "is required", Err: ErrMissingRequiredField}
}

// InvalidField builds a field-level validation error.
func InvalidField(field, reason string) error {
	return &FieldError{Field: field, Reason: reason, Err: ErrInvalidField}
}

// TransitionError carries the rejected move and why it was rejected.
type TransitionError struct {
	Kind EntityKind
	From Status
	To   Status
	Role Role
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s cannot move %s from %s to %s", e.Err, e.Role, e.Kind, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// Category groups errors by how callers must react to them.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryPolicy     Category = "policy"
	CategoryTransition Category = "transition"
	CategoryTransport  Category = "transport"
	CategoryAuth       Category = "auth"
)

// Classify maps an error onto the taxonomy. Anything the policy package does
// not recognise is treated as a transport failure.
func Classify(err error) Category {
	switch {
	case errors.Is(err, ErrDailyLimitReached),
		errors.Is(err, ErrPaymentMethodIneligible),
		errors.Is(err, ErrReceiptRequired):
		return CategoryPolicy
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrUnknownEntityKind):
		return CategoryTransition
	case errors.Is(err, ErrMissingRequiredField),
		errors.Is(err, ErrInvalidField),
		errors.Is(err, ErrInvalidGuests),
		errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrUnknownPaymentMethod),
		errors.Is(err, ErrUnknownStatus):
		return CategoryValidation
	}
	var authErr interface{ Unauthorized() bool }
	if errors.As(err, &authErr) && authErr.Unauthorized() {
		return CategoryAuth
	}
	return CategoryTransport
}
