// internal/ai/gateway.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"fitforge/pkg/logger"
)

var (
	// ErrProviderNotConfigured means the requested provider has no API key
	// or is unknown. Never retried; surfaced to the caller immediately.
	ErrProviderNotConfigured = errors.New("ai provider is not configured")

	// ErrEmptyResponse means the provider answered with no content.
	ErrEmptyResponse = errors.New("provider returned no content")
)

// statusError carries the HTTP status of a failed provider call so the
// gateway can tell rate limits and server errors from everything else.
type statusError struct {
	provider string
	code     int
	body     string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s api error: status=%d body=%s", e.provider, e.code, e.body)
}

// Request is one text-generation call.
type Request struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Provider generates text for a request. Implementations are safe for
// concurrent use.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
	// NormalizeModel maps a client-supplied model name onto one the
	// provider actually serves.
	NormalizeModel(model string) string
}

// Gateway routes generation calls to a named provider and retries
// transient failures with doubling backoff. Constructed once at startup
// and shared by injection; there is no package-level instance.
type Gateway struct {
	providers map[string]Provider
	attempts  int
	base      time.Duration
	cap       time.Duration
	log       *logger.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// GatewayOptions tune the retry loop. Zero values fall back to 3 attempts
// with 2s base backoff capped at 10s.
type GatewayOptions struct {
	Attempts    int
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// NewGateway builds a gateway over the given providers.
func NewGateway(log *logger.Logger, opts GatewayOptions, providers ...Provider) *Gateway {
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 2 * time.Second
	}
	if opts.BackoffCap <= 0 {
		opts.BackoffCap = 10 * time.Second
	}

	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[strings.ToLower(p.Name())] = p
	}
	return &Gateway{
		providers: byName,
		attempts:  opts.Attempts,
		base:      opts.BackoffBase,
		cap:       opts.BackoffCap,
		log:       log,
		sleep:     sleepCtx,
	}
}

// Configured reports whether the named provider can be invoked.
func (g *Gateway) Configured(provider string) bool {
	_, ok := g.providers[strings.ToLower(provider)]
	return ok
}

// Invoke calls the named provider, retrying transient failures up to the
// attempt budget. The returned text has markdown code fences stripped.
func (g *Gateway) Invoke(ctx context.Context, provider string, req Request) (string, error) {
	p, ok := g.providers[strings.ToLower(provider)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrProviderNotConfigured, provider)
	}
	req.Model = p.NormalizeModel(req.Model)

	backoff := g.base
	var lastErr error
	for attempt := 1; attempt <= g.attempts; attempt++ {
		out, err := p.Generate(ctx, req)
		if err == nil {
			return StripFences(out), nil
		}
		if !retryable(err) {
			return "", fmt.Errorf("%s: %w", p.Name(), err)
		}
		lastErr = err
		g.log.Warnw("provider call failed",
			"provider", p.Name(),
			"model", req.Model,
			"attempt", attempt,
			"error", err,
		)

		if attempt == g.attempts {
			break
		}
		if err := g.sleep(ctx, backoff); err != nil {
			return "", err
		}
		backoff *= 2
		if backoff > g.cap {
			backoff = g.cap
		}
	}
	return "", fmt.Errorf("%s: %d attempts exhausted: %w", p.Name(), g.attempts, lastErr)
}

// retryable classifies provider errors. Rate limits, server-side errors,
// and network failures are worth another attempt; everything else,
// including caller cancellation, is not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == 429 || se.code >= 500
	}
	// Any network-level failure: refused or reset connections as much as
	// timeouts. net.OpError and url.Error both satisfy net.Error.
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	// A per-call deadline firing mid-request looks like a slow provider.
	return errors.Is(err, context.DeadlineExceeded)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StripFences removes a wrapping markdown code block, with or without a
// json language tag, from a model response.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = s[len("```json"):]
	case strings.HasPrefix(s, "```"):
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
