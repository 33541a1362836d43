package translate

import (
	"context"
	"log/slog"

	"github.com/wavespeak/go-wavespeak/internal/log"
)

// Chain tries multiple providers in order until one succeeds.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain creates a provider chain. Providers are tried in the order
// given.
func NewChain(providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		logger:    log.Component("translate.chain"),
	}
}

// Translate tries each provider in order, returning the first success.
func (c *Chain) Translate(ctx context.Context, text, source, target string) (string, error) {
	if len(c.providers) == 0 {
		return "", ErrProviderUnavailable
	}

	var errs []error
	for i, p := range c.providers {
		out, err := p.Translate(ctx, text, source, target)
		if err == nil {
			return out, nil
		}
		c.logger.Warn("translation provider failed, trying next",
			"provider", i,
			"error", err,
		)
		errs = append(errs, err)

		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
	}
	return "", &ChainError{Errors: errs}
}

// Close closes all providers, returning the first error encountered.
func (c *Chain) Close() error {
	var firstErr error
	for _, p := range c.providers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Verify Chain implements Provider at compile time.
var _ Provider = (*Chain)(nil)
