package llm

import (
	"context"
)

// Config represents a single generation request.
type Config struct {
	Model       string
	Temperature float64
	System      string
	Prompt      string
	MaxTokens   int
}

// Provider defines the interface for an LLM backend.
type Provider interface {
	Generate(ctx context.Context, config Config) (string, error)
}
