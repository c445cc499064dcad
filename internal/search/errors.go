package search

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a provider is constructed without its
// credential.
var ErrMissingAPIKey = errors.New("search provider API key is required")

// ProviderError is a non-2xx answer from the search provider. Callers treat
// it as recoverable and fall back to partial results.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("search provider error (%d): %s", e.Status, e.Body)
	}
	return fmt.Sprintf("search provider error (%d)", e.Status)
}
