// Package llm provides the language-model clients that turn a coaching
// prompt into report text. Providers share the Client interface and are
// selected through the factory.
package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	// GenerateReport sends the prompt and returns the raw report text.
	GenerateReport(ctx context.Context, prompt string) (string, error)
}

// Config holds provider selection and tuning for a client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string // OpenAI-compatible endpoints only
	MaxRetries  int
	RetryDelay  time.Duration
	Temperature float64
	MaxTokens   int
}
