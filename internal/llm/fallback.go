package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

var errBlankCompletion = errors.New("llm: blank completion")

// FallbackClient chains a primary provider with a standby. A request is
// served by the first provider returning a usable completion; blank text
// counts as a failure so a degraded provider cannot stall the
// conversation loop.
type FallbackClient struct {
	providers      []Client
	attemptTimeout time.Duration
	logger         *slog.Logger
}

// NewFallbackClient wires a primary provider with an optional standby.
// A nil standby leaves the client single-provider.
func NewFallbackClient(primary, standby Client, logger *slog.Logger) *FallbackClient {
	if primary == nil {
		panic("llm: primary client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	providers := []Client{primary}
	if standby != nil {
		providers = append(providers, standby)
	}
	return &FallbackClient{providers: providers, logger: logger}
}

// WithAttemptTimeout bounds each provider attempt independently, so a
// hung primary still leaves the standby its share of the deadline.
func (c *FallbackClient) WithAttemptTimeout(d time.Duration) *FallbackClient {
	c.attemptTimeout = d
	return c
}

// Complete tries each provider in order and returns the first usable
// completion. When every provider fails, the last failure is returned.
func (c *FallbackClient) Complete(ctx context.Context, req Request) (Response, error) {
	var lastErr error
	for i, provider := range c.providers {
		attemptCtx := ctx
		var cancel context.CancelFunc = func() {}
		if c.attemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		}
		resp, err := provider.Complete(attemptCtx, req)
		cancel()

		if err == nil && strings.TrimSpace(resp.Text) == "" {
			err = errBlankCompletion
		}
		if err == nil {
			if i > 0 {
				c.logger.Info("standby provider served the request")
			}
			return resp, nil
		}
		lastErr = err
		c.logger.Warn("completion provider failed",
			"provider", i,
			"error", err.Error(),
		)
		if ctx.Err() != nil {
			break
		}
	}
	return Response{}, lastErr
}
