package generator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Resilient wraps a Generator with client-side rate limiting and retries.
// Blank replies and context errors are not retried.
type Resilient struct {
	next       Generator
	limiter    *rate.Limiter
	maxRetries uint
	newBackOff func() backoff.BackOff
	log        *zap.Logger
}

// ResilientOption configures a Resilient generator.
type ResilientOption func(*Resilient)

// WithRateLimit allows rps calls per second with a burst of one. rps <= 0 disables limiting.
func WithRateLimit(rps float64) ResilientOption {
	return func(r *Resilient) {
		if rps > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithMaxRetries sets how many times a failed call is retried.
func WithMaxRetries(n int) ResilientOption {
	return func(r *Resilient) {
		if n >= 0 {
			r.maxRetries = uint(n)
		}
	}
}

// WithBackOff overrides the retry schedule.
func WithBackOff(f func() backoff.BackOff) ResilientOption {
	return func(r *Resilient) { r.newBackOff = f }
}

// WithRetryLogger logs each retry at warn level.
func WithRetryLogger(l *zap.Logger) ResilientOption {
	return func(r *Resilient) { r.log = l }
}

// NewResilient decorates next.
func NewResilient(next Generator, opts ...ResilientOption) *Resilient {
	r := &Resilient{
		next:       next,
		maxRetries: 2,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
		log: zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Resilient) Generate(ctx context.Context, systemInstructions, userMessage string) (string, error) {
	op := func() (string, error) {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return "", backoff.Permanent(err)
			}
		}
		reply, err := r.next.Generate(ctx, systemInstructions, userMessage)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrEmptyReply) {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		if strings.TrimSpace(reply) == "" {
			return "", backoff.Permanent(ErrEmptyReply)
		}
		return reply, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(r.newBackOff()),
		backoff.WithMaxTries(r.maxRetries+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			r.log.Warn("generator call failed, retrying", zap.Error(err), zap.Duration("wait", wait))
		}),
	)
}
