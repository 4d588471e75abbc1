package reviewer

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

// resilientMaxAttempts covers transient rate limits and connection resets
// on a single completion call. Whole-reviewer retries belong to the
// orchestrator, not here.
const resilientMaxAttempts = 3

// ResilientProvider wraps a Provider with a per-call timeout and retry
// with exponential backoff.
type ResilientProvider struct {
	inner       Provider
	callTimeout time.Duration
}

// NewResilientProvider wraps inner; callTimeout bounds each completion call.
func NewResilientProvider(inner Provider, callTimeout time.Duration) *ResilientProvider {
	return &ResilientProvider{inner: inner, callTimeout: callTimeout}
}

func (p *ResilientProvider) Name() string {
	return p.inner.Name()
}

func (p *ResilientProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	r := retry.New[CompletionResponse](retry.Config{
		MaxAttempts:   resilientMaxAttempts,
		InitialDelay:  time.Second,
		BackoffPolicy: retry.BackoffExponential,
	})

	t := timeout.New[CompletionResponse](timeout.Config{
		DefaultTimeout: p.callTimeout,
	})

	return t.Execute(ctx, p.callTimeout, func(ctx context.Context) (CompletionResponse, error) {
		return r.Do(ctx, func(ctx context.Context) (CompletionResponse, error) {
			return p.inner.Complete(ctx, req)
		})
	})
}
