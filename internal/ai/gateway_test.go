package ai

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitforge/pkg/logger"
)

type scriptedProvider struct {
	name    string
	results []result
	calls   int
	lastReq Request
}

type result struct {
	out string
	err error
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) NormalizeModel(model string) string {
	if model == "" {
		return "default-model"
	}
	return model
}

func (p *scriptedProvider) Generate(_ context.Context, req Request) (string, error) {
	p.lastReq = req
	r := p.results[p.calls]
	p.calls++
	return r.out, r.err
}

func newTestGateway(p Provider) *Gateway {
	g := NewGateway(logger.Nop(), GatewayOptions{Attempts: 3, BackoffBase: time.Millisecond, BackoffCap: 4 * time.Millisecond}, p)
	g.sleep = func(context.Context, time.Duration) error { return nil }
	return g
}

func TestInvokeRetriesTransientErrors(t *testing.T) {
	p := &scriptedProvider{
		name: "scripted",
		results: []result{
			{err: &statusError{provider: "scripted", code: 503}},
			{err: &statusError{provider: "scripted", code: 429}},
			{out: "{\"ok\":true}"},
		},
	}
	g := newTestGateway(p)

	out, err := g.Invoke(context.Background(), "scripted", Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, 3, p.calls)
}

func TestInvokeExhaustsAttempts(t *testing.T) {
	p := &scriptedProvider{
		name: "scripted",
		results: []result{
			{err: &statusError{code: 500}},
			{err: &statusError{code: 500}},
			{err: &statusError{code: 500}},
		},
	}
	g := newTestGateway(p)

	_, err := g.Invoke(context.Background(), "scripted", Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 attempts exhausted")
	assert.Equal(t, 3, p.calls)
}

func TestInvokeRetriesNetworkFailures(t *testing.T) {
	refused := &url.Error{
		Op:  "Post",
		URL: anthropicAPIURL,
		Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
	}
	p := &scriptedProvider{
		name: "scripted",
		results: []result{
			{err: refused},
			{out: "{}"},
		},
	}
	g := newTestGateway(p)

	out, err := g.Invoke(context.Background(), "scripted", Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
	assert.Equal(t, 2, p.calls, "a refused connection is a blip, not a verdict")
}

func TestInvokeDoesNotRetryClientErrors(t *testing.T) {
	p := &scriptedProvider{
		name:    "scripted",
		results: []result{{err: &statusError{code: 401, body: "bad key"}}},
	}
	g := newTestGateway(p)

	_, err := g.Invoke(context.Background(), "scripted", Request{})
	require.Error(t, err)
	assert.Equal(t, 1, p.calls, "auth errors must not be retried")
}

func TestInvokeUnknownProvider(t *testing.T) {
	g := newTestGateway(&scriptedProvider{name: "scripted"})

	_, err := g.Invoke(context.Background(), "gemini", Request{})
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
	assert.False(t, g.Configured("gemini"))
	assert.True(t, g.Configured("SCRIPTED"))
}

func TestInvokeNormalizesModel(t *testing.T) {
	p := &scriptedProvider{name: "scripted", results: []result{{out: "{}"}}}
	g := newTestGateway(p)

	_, err := g.Invoke(context.Background(), "scripted", Request{Model: ""})
	require.NoError(t, err)
	assert.Equal(t, "default-model", p.lastReq.Model)
}

func TestInvokeStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &scriptedProvider{name: "scripted", results: []result{{err: ctx.Err()}}}
	g := newTestGateway(p)

	_, err := g.Invoke(ctx, "scripted", Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.calls)
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &statusError{code: 429}, true},
		{"server error", &statusError{code: 502}, true},
		{"bad request", &statusError{code: 400}, false},
		{"unauthorized", &statusError{code: 401}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"connection refused", &url.Error{Op: "Post", Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}}, true},
		{"connection reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"canceled", context.Canceled, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, retryable(tc.err))
		})
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"bare fences", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{}\n```  ", "{}"},
		{"no closing fence", "```json\n{}", "{}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripFences(tc.in))
		})
	}
}

func TestAnthropicNormalizeModel(t *testing.T) {
	p := NewAnthropic("key", 0)
	assert.Equal(t, "claude-3-5-sonnet-20241022", p.NormalizeModel("gpt-4o"))
	assert.Equal(t, "claude-3-5-sonnet-20241022", p.NormalizeModel(""))
	assert.Equal(t, "claude-3-opus-20240229", p.NormalizeModel("claude-3-opus-20240229"))
}

func TestOpenAINormalizeModel(t *testing.T) {
	p := NewOpenAI("key", "gpt-4o-mini")
	assert.Equal(t, "gpt-4o-mini", p.NormalizeModel(""))
	assert.Equal(t, "gpt-4o-mini", p.NormalizeModel("claude-3-5-sonnet-20241022"))
	assert.Equal(t, "gpt-4o", p.NormalizeModel("gpt-4o"))
}
