// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrChainUnavailable  = errors.New("option chain unavailable")
	ErrStoreUnavailable  = errors.New("run store unavailable")
	ErrRunNotFound       = errors.New("run not found")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrProviderExhausted = errors.New("chain provider retries exhausted")
)

// DataError represents a data-availability problem for one ticker. It is
// annotated onto the affected candidates; it never aborts a batch.
type DataError struct {
	Ticker  string
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s]: %s: %v", e.Ticker, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s]: %s", e.Ticker, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(ticker, message string, err error) *DataError {
	return &DataError{
		Ticker:  ticker,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a structural-field validation failure. It is
// fatal for the single candidate only; the batch continues.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ProviderError represents an error from a chain provider.
type ProviderError struct {
	Provider string
	Ticker   string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error [%s] %s: %v", e.Provider, e.Ticker, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, ticker string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Ticker:   ticker,
		Err:      err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
