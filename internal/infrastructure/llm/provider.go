package llm

import (
	"context"
	"fmt"
)

// NewProvider builds the provider named in configuration.
func NewProvider(ctx context.Context, name, apiKey, model string) (Provider, error) {
	switch name {
	case "", "gemini":
		return NewGeminiProvider(ctx, apiKey, model)
	case "anthropic":
		if model == DefaultGeminiModel {
			model = ""
		}
		return NewAnthropicProvider(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", name)
	}
}
