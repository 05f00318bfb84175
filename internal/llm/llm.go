package llm

import (
	"context"
	"errors"
)

// Improver rewrites a piece of text and returns the improved version.
type Improver interface {
	Improve(ctx context.Context, text string) (string, error)
}

// ErrNotConfigured is returned when no provider credentials are available.
var ErrNotConfigured = errors.New("llm provider not configured")

// Unconfigured is an Improver that always fails. It keeps the wiring simple
// when no API key is present: callers fall back to the original text.
type Unconfigured struct{}

func (Unconfigured) Improve(ctx context.Context, text string) (string, error) {
	return "", ErrNotConfigured
}
