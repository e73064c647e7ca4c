package retry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/roomhive/service-reservation/internal/metrics"
)

// Classifier decides whether an error is transient and worth retrying.
type Classifier func(error) bool

// Policy bounds the retry loop.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultPolicy caps at 3 attempts with a short exponential backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
		Multiplier:     2.0,
	}
}

// Retrier wraps write operations in a bounded retry loop. Only errors the
// classifier marks transient are retried; everything else propagates on the
// first attempt. On exhaustion the last error surfaces unmodified.
type Retrier struct {
	policy      Policy
	isTransient Classifier
	logger      *zap.Logger
}

// New creates a Retrier.
func New(policy Policy, isTransient Classifier, logger *zap.Logger) *Retrier {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Retrier{policy: policy, isTransient: isTransient, logger: logger}
}

// Do runs fn up to MaxAttempts times. op names the operation for logs and
// metrics.
func (r *Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	backoff := r.policy.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !r.isTransient(lastErr) {
			return lastErr
		}
		if attempt == r.policy.MaxAttempts {
			break
		}

		metrics.RetryAttempts.WithLabelValues(op).Inc()
		r.logger.Warn("transient failure, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(lastErr),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * r.policy.Multiplier)
		if backoff > r.policy.MaxBackoff {
			backoff = r.policy.MaxBackoff
		}
	}

	metrics.RetryExhausted.WithLabelValues(op).Inc()
	return lastErr
}
