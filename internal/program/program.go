package program

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"stakeswap/internal/address"
	"stakeswap/internal/chain"
	"stakeswap/internal/ledger"
	"stakeswap/internal/model"
	"stakeswap/internal/pool"
	"stakeswap/internal/scheduler"
	"stakeswap/internal/staking"
	"stakeswap/internal/storage"
)

var (
	ErrClockRegressed = errors.New("program: clock moved backwards")
	ErrNotManualClock = errors.New("program: clock cannot be advanced")
	ErrClockAhead     = errors.New("program: tick is ahead of the clock")
	ErrInvalidTask    = errors.New("program: task does not match its owner")
)

// Options wires a Program.
type Options struct {
	Deriver *address.Deriver
	Pricer  pool.Pricer
	Policy  pool.Policy
	Clock   chain.Clock
	Store   storage.StateStore
	Journal storage.Journal
	Logger  *zap.Logger
}

// Program hosts every entry point. Invocations are serialized and atomic: a
// failed invocation leaves no trace besides its journal entry.
type Program struct {
	mu sync.Mutex

	deriver *address.Deriver
	ledger  *ledger.Ledger
	pools   *pool.Service
	staking *staking.Engine
	sched   *scheduler.Scheduler
	poolRec *model.PoolRecord

	clock   chain.Clock
	store   storage.StateStore
	journal storage.Journal
	logger  *zap.Logger

	tick uint64
	seq  uint64
}

// New builds a Program and restores the persisted snapshot, if any.
func New(ctx context.Context, opts Options) (*Program, error) {
	if opts.Deriver == nil {
		return nil, fmt.Errorf("deriver is nil")
	}
	if opts.Pricer == nil {
		return nil, fmt.Errorf("pricer is nil")
	}
	if opts.Clock == nil {
		return nil, fmt.Errorf("clock is nil")
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Journal == nil {
		opts.Journal = storage.NopJournal{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	l := ledger.New(opts.Deriver)
	pools := pool.NewService(l, opts.Deriver, opts.Pricer, opts.Logger.Named("pool"))
	p := &Program{
		deriver: opts.Deriver,
		ledger:  l,
		pools:   pools,
		staking: staking.NewEngine(l, opts.Deriver, pools, opts.Policy, opts.Logger.Named("staking")),
		clock:   opts.Clock,
		store:   opts.Store,
		journal: opts.Journal,
		logger:  opts.Logger,
	}
	p.sched = scheduler.New(p, opts.Logger.Named("scheduler"))

	snap, ok, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if ok {
		if err := p.restore(snap); err != nil {
			return nil, fmt.Errorf("restore state: %w", err)
		}
		p.sched.Import(snap.Tasks)
		p.tick = snap.Tick
		p.seq = snap.Seq
		if mc, ok := p.clock.(*chain.ManualClock); ok {
			mc.Set(snap.Tick)
		}
		p.logger.Info("state restored",
			zap.Uint64("tick", snap.Tick),
			zap.Uint64("seq", snap.Seq),
			zap.Int("tasks", len(snap.Tasks)),
		)
	}
	return p, nil
}

// Close releases the store and journal.
func (p *Program) Close() error {
	return errors.Join(p.store.Close(), p.journal.Close())
}

// Deriver returns the address deriver of the program.
func (p *Program) Deriver() *address.Deriver { return p.deriver }

type invocation func(tick uint64) ([]scheduler.Intent, error)

// execute runs fn as one atomic invocation.
func (p *Program) execute(ctx context.Context, name string, signer solana.PublicKey, fn invocation) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now, err := p.clock.Now(ctx)
	if err != nil {
		return fmt.Errorf("read clock: %w", err)
	}
	if now < p.tick {
		return fmt.Errorf("%w: %d < %d", ErrClockRegressed, now, p.tick)
	}

	seq := p.seq + 1
	before := p.capture(p.tick, p.seq, nil)

	intents, err := fn(now)
	var snap model.Snapshot
	if err == nil {
		var tasks []model.Task
		tasks, err = p.sched.Plan(intents)
		if err == nil {
			snap = p.capture(now, seq, tasks)
			err = p.store.Save(ctx, snap)
			if err != nil {
				err = fmt.Errorf("persist state: %w", err)
			}
		}
	}
	if err != nil {
		if rerr := p.restore(before); rerr != nil {
			p.logger.Error("rollback failed", zap.Error(rerr), zap.String("invocation", name))
		}
		p.record(ctx, model.Invocation{
			Seq:    seq,
			Name:   name,
			Signer: signer.String(),
			Tick:   now,
			Status: model.InvocationAborted,
			Error:  err.Error(),
		})
		p.logger.Warn("invocation aborted",
			zap.String("invocation", name),
			zap.Uint64("tick", now),
			zap.Error(err),
		)
		return err
	}

	if err := p.sched.Apply(intents); err != nil {
		p.logger.Error("apply intents", zap.Error(err), zap.String("invocation", name))
	}
	p.tick = now
	p.seq = seq

	descr := make([]string, 0, len(intents))
	for _, intent := range intents {
		descr = append(descr, intent.String())
	}
	p.record(ctx, model.Invocation{
		Seq:     seq,
		Name:    name,
		Signer:  signer.String(),
		Tick:    now,
		Status:  model.InvocationCommitted,
		Intents: descr,
	})
	p.logger.Info("invocation committed",
		zap.String("invocation", name),
		zap.Uint64("tick", now),
		zap.Uint64("seq", seq),
	)
	return nil
}

func (p *Program) record(ctx context.Context, inv model.Invocation) {
	inv.RecordedAt = time.Now().UTC().Format(time.RFC3339Nano)
	if err := p.journal.Append(ctx, inv); err != nil {
		p.logger.Warn("journal append failed", zap.Error(err), zap.String("invocation", inv.Name))
	}
}

// capture copies the program-owned state. tasks nil means the live task table.
func (p *Program) capture(tick, seq uint64, tasks []model.Task) model.Snapshot {
	if tasks == nil {
		tasks = p.sched.Export()
	}
	return model.Snapshot{
		Tick:   tick,
		Seq:    seq,
		Pool:   p.poolRec.Clone(),
		Stakes: p.staking.Export(),
		Ledger: p.ledger.Export(),
		Tasks:  tasks,
	}
}

// restore replaces ledger, pool and stake state. The task table is not touched:
// it only changes after a commit.
func (p *Program) restore(snap model.Snapshot) error {
	if err := p.ledger.Import(snap.Ledger); err != nil {
		return err
	}
	if err := p.staking.Import(snap.Stakes); err != nil {
		return err
	}
	p.poolRec = snap.Pool.Clone()
	return nil
}

// persist saves the current state outside an invocation. Callers hold p.mu.
func (p *Program) persist(ctx context.Context) error {
	if err := p.store.Save(ctx, p.capture(p.tick, p.seq, nil)); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}
