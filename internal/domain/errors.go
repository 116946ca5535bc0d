package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Failure classes the aggregator and its adapters report. Callers match
// them with errors.Is; the typed errors below unwrap to one of them.
var (
	// ErrNotFound is returned when a stored paper does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for malformed queries, papers or edges.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited is returned when a provider answers 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrProviderUnavailable is returned when a provider answers 5xx.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrSearchCancelled is returned when the caller abandons a search
	// before its results are ranked.
	ErrSearchCancelled = errors.New("search cancelled")

	// ErrStoreDisabled is returned by lookups that need persistence when
	// no store is configured.
	ErrStoreDisabled = errors.New("store disabled")
)

// ValidationError names the field that made an input invalid.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PaperNotFoundError reports a paper_uid with no stored record.
type PaperNotFoundError struct {
	PaperUID string
}

func (e *PaperNotFoundError) Error() string {
	return fmt.Sprintf("paper not found: %s", e.PaperUID)
}

func (e *PaperNotFoundError) Unwrap() error { return ErrNotFound }

// ProviderError is a non-2xx answer from a paper provider. Transport and
// decoding failures are wrapped errors, not ProviderErrors.
type ProviderError struct {
	Source     SourceType
	StatusCode int
	Message    string

	// RetryAfter is the provider's back-off hint on a 429 answer.
	RetryAfter time.Duration
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Source, e.StatusCode, e.Message)
}

// Unwrap classifies the status: 429 is ErrRateLimited, 5xx is
// ErrProviderUnavailable and anything else has no class.
func (e *ProviderError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode >= 500:
		return ErrProviderUnavailable
	default:
		return nil
	}
}

// NewProviderError creates a ProviderError for a status answered by source.
func NewProviderError(source SourceType, statusCode int, message string) *ProviderError {
	return &ProviderError{Source: source, StatusCode: statusCode, Message: message}
}
