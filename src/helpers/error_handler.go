package helpers

import (
	"fmt"
	"math"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type QuoteServerError struct {
	Message string
	Cause   error
}

func (e *QuoteServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *QuoteServerError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As classification.
// FetchError and DecodeError are treated the same by the refresher.
type ConfigurationError struct{ QuoteServerError }
type FetchError struct{ QuoteServerError }
type DecodeError struct{ QuoteServerError }

// -----------------------------------------------------------------------------

func NewConfigurationError(message string, cause error) error {
	return &ConfigurationError{QuoteServerError{Message: message, Cause: cause}}
}

func NewFetchError(symbol string, cause error) error {
	return &FetchError{QuoteServerError{Message: fmt.Sprintf("fetch %s failed", symbol), Cause: cause}}
}

func NewDecodeError(symbol string, format string, args ...interface{}) error {
	return &DecodeError{QuoteServerError{Message: fmt.Sprintf("decode %s: %s", symbol, fmt.Sprintf(format, args...))}}
}

// -----------------------------------------------------------------------------

// CheckPrice rejects prices that cannot be served: zero, negative, NaN or
// infinite.
func CheckPrice(symbol string, price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return NewDecodeError(symbol, "invalid price %v", price)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Backoff
// -----------------------------------------------------------------------------

const (
	backoffBase = 500 * time.Millisecond
	backoffMax  = 30 * time.Second
)

// CalculateBackoff returns base * 2^attempt, capped at backoffMax.
func CalculateBackoff(attempt int) time.Duration {
	if attempt < 0 {
		return backoffBase
	}
	if attempt > 30 {
		return backoffMax
	}
	d := backoffBase * time.Duration(1<<attempt)
	if d > backoffMax {
		return backoffMax
	}
	return d
}
