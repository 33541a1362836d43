package translate

import (
	"errors"
	"fmt"
)

// Sentinel errors for the translate package.
var (
	// ErrNoAPIKey is returned when the API key is missing.
	ErrNoAPIKey = errors.New("translate: API key required")

	// ErrEmptyText is returned when there is nothing to translate.
	ErrEmptyText = errors.New("translate: empty text")

	// ErrUnknownLanguage is returned for codes outside the table.
	ErrUnknownLanguage = errors.New("translate: unknown language code")

	// ErrProviderUnavailable is returned when no providers are configured.
	ErrProviderUnavailable = errors.New("translate: no providers available")
)

// ChainError aggregates errors from all providers in a chain.
type ChainError struct {
	Errors []error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	if len(e.Errors) == 0 {
		return "translate chain: no errors recorded"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("translate chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("translate chain: all %d providers failed, last error: %v", len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap returns the last error in the chain.
func (e *ChainError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}
