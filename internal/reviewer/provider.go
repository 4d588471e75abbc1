package reviewer

import (
	"context"
	"fmt"
)

// CompletionRequest contains the data sent to an LLM backend.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// CompletionResponse contains the raw response from an LLM backend.
type CompletionResponse struct {
	Content    string
	TokensUsed int
}

// Provider is the LLM backend abstraction. Concrete reviewer variants are
// configuration data (provider, model, focus preset), not distinct types.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// SupportedProviders lists valid provider names.
var SupportedProviders = []string{"anthropic", "openai"}

// NewProvider creates a provider by name.
func NewProvider(name, model string) (Provider, error) {
	switch name {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	default:
		return nil, fmt.Errorf("unknown provider %q, supported: %v", name, SupportedProviders)
	}
}

// rateLimitError marks responses worth retrying.
type rateLimitError struct {
	provider string
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited", e.provider)
}

// authError marks credential problems; retrying cannot help.
type authError struct {
	provider string
	message  string
}

func (e *authError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %s", e.provider, e.message)
}
