package program

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stakeswap/internal/chain"
	"stakeswap/internal/scheduler"
)

// FireDue fires the tasks due at now and persists their re-armed triggers. now
// must not be ahead of the clock.
func (p *Program) FireDue(ctx context.Context, now uint64) (int, error) {
	current, err := p.clock.Now(ctx)
	if err != nil {
		return 0, fmt.Errorf("read clock: %w", err)
	}
	if now > current {
		return 0, fmt.Errorf("%w: %d > %d", ErrClockAhead, now, current)
	}
	fired := p.sched.Fire(ctx, now)

	p.mu.Lock()
	defer p.mu.Unlock()
	if now > p.tick {
		p.tick = now
	}
	if err := p.persist(ctx); err != nil {
		return fired, err
	}
	return fired, nil
}

// Fire reads the clock and fires the tasks due at that tick.
func (p *Program) Fire(ctx context.Context) (int, error) {
	now, err := p.clock.Now(ctx)
	if err != nil {
		return 0, err
	}
	return p.FireDue(ctx, now)
}

// Advance moves a manual clock forward by n ticks and persists the new tick.
func (p *Program) Advance(ctx context.Context, n uint64) (uint64, error) {
	mc, ok := p.clock.(*chain.ManualClock)
	if !ok {
		return 0, ErrNotManualClock
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	tick := mc.Advance(n)
	p.tick = tick
	if err := p.persist(ctx); err != nil {
		return tick, err
	}
	p.logger.Info("clock advanced", zap.Uint64("tick", tick))
	return tick, nil
}

// RunScheduler polls the clock and fires due tasks until ctx is done.
func (p *Program) RunScheduler(ctx context.Context, cfg scheduler.RunConfig) error {
	return scheduler.NewRunner(cfg, p.clock, p, p.logger.Named("runner")).Run(ctx)
}
