package translate

import (
	"context"
	"fmt"
)

// Request is a batch of primary language texts bound for one target language.
type Request struct {
	Texts      []string
	SourceLang string
	SourceName string
	TargetLang string
	TargetName string
}

// Backend performs the actual machine translation.
type Backend interface {
	TranslateBatch(ctx context.Context, req Request) ([]string, error)
}

// ProviderError describes a backend failure.
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// DisabledBackend is used when no provider is configured; every call fails.
type DisabledBackend struct{}

// TranslateBatch implements Backend.
func (DisabledBackend) TranslateBatch(context.Context, Request) ([]string, error) {
	return nil, &ProviderError{Message: "translation provider not configured"}
}
