package llm

import (
	"errors"
	"fmt"
)

// ErrNotConfigured means no credentials are present for the provider (or,
// from the registry, for any provider in the priority list).
var ErrNotConfigured = errors.New("llm provider not configured")

// ErrEmptyResponse means the upstream call succeeded but returned zero
// choices.
var ErrEmptyResponse = errors.New("llm provider returned an empty response")

// ProviderError is an upstream non-success status. Body holds the raw error
// body for server-side diagnostics; it must not be shown to end users.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
}
