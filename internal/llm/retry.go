package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryProvider retries transient provider errors with jittered
// exponential backoff.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	policy := newRetryPolicy(r.config)
	invalidRetried := false

	op := func() (*Response, error) {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		policy.last = err
		if !shouldRetry(err, &invalidRetried) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	tries := r.config.MaxAttempts
	if tries < 1 {
		tries = 1
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(tries)),
	)
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// shouldRetry reports whether err is worth another attempt. An invalid
// response is retried once; truncation and cancellation never are.
func shouldRetry(err error, invalidRetried *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return false
	}

	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
		return true
	}

	// Rate limits, outages and plain network errors are transient.
	return true
}

// retryPolicy is an exponential backoff that honours a provider's
// Retry-After hint for the most recent error.
type retryPolicy struct {
	exp  *backoff.ExponentialBackOff
	last error
}

func newRetryPolicy(cfg RetryConfig) *retryPolicy {
	exp := backoff.NewExponentialBackOff()
	if cfg.InitialWait > 0 {
		exp.InitialInterval = cfg.InitialWait
	}
	if cfg.MaxWait > 0 {
		exp.MaxInterval = cfg.MaxWait
	}
	if cfg.Multiplier > 0 {
		exp.Multiplier = cfg.Multiplier
	}
	exp.RandomizationFactor = 0.2
	return &retryPolicy{exp: exp}
}

func (p *retryPolicy) NextBackOff() time.Duration {
	var rl *ErrRateLimit
	if errors.As(p.last, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	return p.exp.NextBackOff()
}

func (p *retryPolicy) Reset() {
	p.last = nil
	p.exp.Reset()
}
