package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stakeswap/internal/chain"
	"stakeswap/internal/retry"
)

// Firer fires the tasks due at a tick.
type Firer interface {
	FireDue(ctx context.Context, now uint64) (int, error)
}

// RunConfig holds polling settings for the scheduler loop.
type RunConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxPolls stops the loop after that many polls when positive.
	MaxPolls int
}

// Runner polls the clock and fires due tasks.
type Runner struct {
	cfg    RunConfig
	clock  chain.Clock
	firer  Firer
	retry  retry.Policy
	logger *zap.Logger
}

func NewRunner(cfg RunConfig, clock chain.Clock, firer Firer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		clock:  clock,
		firer:  firer,
		retry:  retry.Policy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.RetryBackoff, MaxDelay: cfg.PollInterval, Logger: logger},
		logger: logger,
	}
}

// Run polls until ctx is done or MaxPolls is reached.
func (r *Runner) Run(ctx context.Context) error {
	if r.clock == nil {
		return fmt.Errorf("clock is nil")
	}
	if r.firer == nil {
		return fmt.Errorf("firer is nil")
	}
	if r.cfg.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be greater than zero")
	}

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for polls := 1; ; polls++ {
		if err := r.poll(ctx); err != nil {
			return err
		}
		if r.cfg.MaxPolls > 0 && polls >= r.cfg.MaxPolls {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) poll(ctx context.Context) error {
	var now uint64
	err := r.retry.Do(ctx, "read clock", func(ctx context.Context) error {
		var err error
		now, err = r.clock.Now(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("read clock: %w", err)
	}

	fired, err := r.firer.FireDue(ctx, now)
	if err != nil {
		return fmt.Errorf("fire due tasks: %w", err)
	}
	if fired > 0 {
		r.logger.Info("tasks fired", zap.Int("fired", fired), zap.Uint64("tick", now))
	}
	return nil
}
