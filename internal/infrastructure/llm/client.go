package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

var ErrEmptyResponse = errors.New("llm returned an empty response")

// Request is a single completion request sent to a provider.
type Request struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Provider is a text completion backend.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config tunes generation.
type Config struct {
	Temperature float64
	MaxTokens   int
}

type generateOptions struct {
	context      string
	systemPrompt string
}

// Option customizes a GenerateText call.
type Option func(*generateOptions)

// WithContext adds background context to the prompt.
func WithContext(text string) Option {
	return func(o *generateOptions) { o.context = text }
}

// WithSystemPrompt adds a system instruction to the prompt.
func WithSystemPrompt(text string) Option {
	return func(o *generateOptions) { o.systemPrompt = text }
}

// Client builds prompts for the assistant tasks on top of a Provider.
type Client struct {
	provider Provider
	cfg      Config
	logger   zerolog.Logger
}

func NewClient(provider Provider, cfg Config, logger zerolog.Logger) *Client {
	return &Client{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With().Str("service", "llm").Logger(),
	}
}

// GenerateText frames prompt with the optional system prompt and context
// and returns the trimmed completion.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts ...Option) (string, error) {
	var o generateOptions
	for _, opt := range opts {
		opt(&o)
	}

	var b strings.Builder
	if o.systemPrompt != "" {
		fmt.Fprintf(&b, "System: %s\n\n", o.systemPrompt)
	}
	if o.context != "" {
		fmt.Fprintf(&b, "Context: %s\n\n", o.context)
	}
	fmt.Fprintf(&b, "User: %s\n\nAssistant:", prompt)

	out, err := c.provider.Complete(ctx, Request{
		Prompt:      b.String(),
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("generate text failed")
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
