package scripture

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means the reference did not resolve to any passage.
	ErrNotFound = errors.New("passage not found")
	// ErrProviderUnavailable covers transport, auth and upstream failures.
	ErrProviderUnavailable = errors.New("passage provider unavailable")
)

// Passage is the provider's resolution of a reference.
type Passage struct {
	CanonicalReference string `json:"canonical_reference"`
	Text               string `json:"text"`
}

// Provider resolves a reference in a translation to canonical text.
type Provider interface {
	GetPassage(ctx context.Context, reference, translation string) (Passage, error)
}
