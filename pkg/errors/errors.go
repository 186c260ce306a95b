package errors

import (
	"errors"
	"fmt"
)

// Generic domain errors

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the caller is not the required party
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Option lifecycle errors

var (
	// ErrNotWriter indicates the caller is not the option writer
	ErrNotWriter = errors.New("caller is not the option writer")

	// ErrNotBuyer indicates the caller is not the option buyer
	ErrNotBuyer = errors.New("caller is not the option buyer")

	// ErrAlreadyBought indicates the option already has a buyer
	ErrAlreadyBought = errors.New("option already bought")

	// ErrAlreadyTerminal indicates the option was already exercised or canceled
	ErrAlreadyTerminal = errors.New("option already exercised or canceled")

	// ErrOptionExpired indicates the option can no longer be exercised
	ErrOptionExpired = errors.New("option expired")

	// ErrOptionNotExpired indicates collateral cannot be reclaimed yet
	ErrOptionNotExpired = errors.New("option not yet expired")

	// ErrExpiryInPast indicates the requested expiry is not in the future
	ErrExpiryInPast = errors.New("expiry must be in the future")
)

// Payment errors

var (
	// ErrPaymentMismatch indicates the attached value does not match the required amount
	ErrPaymentMismatch = errors.New("attached value does not match required amount")

	// ErrInsufficientPayment indicates the attached value is below the required minimum
	ErrInsufficientPayment = errors.New("attached value below required amount")
)

// Oracle errors

var (
	// ErrOracleUnavailable indicates the price feed cannot be reached
	ErrOracleUnavailable = errors.New("price oracle unavailable")

	// ErrZeroPrice indicates the price feed returned a zero or negative price
	ErrZeroPrice = errors.New("price feed returned zero price")

	// ErrUnknownSymbol indicates the price feed has no data for the symbol
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
