// Package gateway sends composed conversations to a hosted text-generation
// model and masks every failure behind a fixed apology.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shop-support-agent/internal/domain"
)

// FallbackText is returned to callers whenever generation fails.
const FallbackText = "I apologize, but I am experiencing a temporary technical issue with my AI core. Please try again in a moment."

// Provider performs a single generation call against a hosted model.
type Provider interface {
	Generate(ctx context.Context, messages []domain.ChatMessage) (string, error)
	Name() string
	Model() string
}

// Gateway wraps a Provider with the fallback contract. It never retries.
type Gateway struct {
	provider Provider
	timeout  time.Duration
}

type Option func(*Gateway)

// WithTimeout bounds each generation call. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// New creates a Gateway for provider.
func New(provider Provider, opts ...Option) (*Gateway, error) {
	if provider == nil {
		return nil, errors.New("gateway: provider must not be nil")
	}
	g := &Gateway{provider: provider}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate returns the model's text unmodified, or FallbackText on any failure.
func (g *Gateway) Generate(ctx context.Context, messages []domain.ChatMessage) string {
	text, err := g.generate(ctx, messages)
	if err != nil {
		attrs := []any{
			"provider", g.provider.Name(),
			"model", g.provider.Model(),
			"kind", string(KindOf(err)),
			"err", err,
		}
		var statusErr interface{ HTTPStatusCode() int }
		if errors.As(err, &statusErr) && statusErr.HTTPStatusCode() != 0 {
			attrs = append(attrs, "status", statusErr.HTTPStatusCode())
		}
		slog.ErrorContext(ctx, "generation call failed, returning fallback", attrs...)
		return FallbackText
	}
	return text
}

func (g *Gateway) generate(ctx context.Context, messages []domain.ChatMessage) (text string, err error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &Error{Kind: KindUnknown, Provider: g.provider.Name(), Err: fmt.Errorf("provider panic: %v", r)}
		}
	}()

	return g.provider.Generate(ctx, messages)
}
