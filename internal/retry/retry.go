package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultBaseDelay = 100 * time.Millisecond

// Policy retries an operation with exponential backoff.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// MaxDelay caps the backoff when positive.
	MaxDelay time.Duration
	Logger   *zap.Logger
}

// Do calls fn until it succeeds, the retries are spent or ctx is done. Each
// failed attempt that will be retried is logged under op.
func (p Policy) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	delay := p.BaseDelay
	if delay <= 0 {
		delay = defaultBaseDelay
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt > retries {
			return err
		}
		logger.Warn("operation failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
}
