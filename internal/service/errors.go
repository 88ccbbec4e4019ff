package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotConnected  = errors.New("twitter not connected or expired")
	ErrInvalidState  = errors.New("invalid state or code")
	ErrInvalidInput  = errors.New("invalid data")
	ErrStorage       = errors.New("storage failure")
	ErrNotConfigured = errors.New("twitter client credentials are not configured")
)

// ProviderExchangeError is returned when the provider rejects a code
// exchange. Message is the provider's own explanation.
type ProviderExchangeError struct {
	Message string
	Err     error
}

func (e *ProviderExchangeError) Error() string {
	return fmt.Sprintf("provider exchange failed: %s", e.Message)
}

func (e *ProviderExchangeError) Unwrap() error { return e.Err }

// RateLimitedError carries the provider's reset time when it sent one.
type RateLimitedError struct {
	Reset *time.Time
}

func (e *RateLimitedError) Error() string {
	if e.Reset == nil {
		return "Rate limit exceeded. Try again later."
	}
	return fmt.Sprintf("Rate limit exceeded. Resets at %s.", e.Reset.Local().Format("15:04"))
}

type FetchFailedError struct {
	Message string
	Err     error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetch failed: %s", e.Message)
}

func (e *FetchFailedError) Unwrap() error { return e.Err }

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
