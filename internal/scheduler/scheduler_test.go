package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"stakeswap/internal/chain"
	"stakeswap/internal/model"
)

func fundHex(t *testing.T, amount uint64) string {
	t.Helper()
	encoded, err := EncodeFund(FundInstruction{
		Pool:   solana.NewWallet().PublicKey(),
		Mint:   solana.NewWallet().PublicKey(),
		Source: solana.NewWallet().PublicKey(),
		Payer:  solana.NewWallet().PublicKey(),
		Amount: amount,
	})
	require.NoError(t, err)
	return encoded
}

func newTask(t *testing.T, trigger, interval uint64) model.Task {
	t.Helper()
	return model.Task{
		ID:          solana.NewWallet().PublicKey(),
		Owner:       solana.NewWallet().PublicKey(),
		Label:       "auto-fund",
		Instruction: fundHex(t, 10),
		TriggerTick: trigger,
		Interval:    interval,
	}
}

type recorder struct {
	mu    sync.Mutex
	calls []model.Task
	err   error
}

func (r *recorder) Dispatch(_ context.Context, task model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, task)
	return r.err
}

func TestFundInstructionRoundTrip(t *testing.T) {
	ix := FundInstruction{
		Pool:   solana.NewWallet().PublicKey(),
		Mint:   solana.NewWallet().PublicKey(),
		Source: solana.NewWallet().PublicKey(),
		Payer:  solana.NewWallet().PublicKey(),
		Amount: 1<<63 + 5,
	}
	encoded, err := EncodeFund(ix)
	require.NoError(t, err)
	require.Len(t, encoded, 2+2*(4+5*32))

	got, err := DecodeFund(encoded)
	require.NoError(t, err)
	require.Equal(t, ix, got)
}

func TestDecodeFundRejectsGarbage(t *testing.T) {
	_, err := DecodeFund("0xdeadbeef")
	require.ErrorIs(t, err, ErrInvalidInstruction)
	_, err = DecodeFund("not hex")
	require.ErrorIs(t, err, ErrInvalidInstruction)
}

func TestApplyNeverDuplicates(t *testing.T) {
	s := New(nil, nil)
	task := newTask(t, 10, 5)
	require.NoError(t, s.Apply([]Intent{Schedule(task)}))

	again := task
	again.TriggerTick = 20
	require.NoError(t, s.Apply([]Intent{Schedule(again)}))

	tasks := s.Export()
	require.Len(t, tasks, 1)
	require.Equal(t, uint64(20), tasks[0].TriggerTick)
}

func TestApplyRejectsInvalidIntentAtomically(t *testing.T) {
	s := New(nil, nil)
	good := newTask(t, 1, 1)
	bad := newTask(t, 1, 0)
	err := s.Apply([]Intent{Schedule(good), Schedule(bad)})
	require.ErrorIs(t, err, ErrInvalidIntent)
	require.Empty(t, s.Export())
}

func TestCancelUnknownIsNoop(t *testing.T) {
	s := New(nil, nil)
	require.NoError(t, s.Apply([]Intent{Cancel(solana.NewWallet().PublicKey())}))
	require.Empty(t, s.Export())
}

func TestPlanDoesNotMutate(t *testing.T) {
	s := New(nil, nil)
	task := newTask(t, 3, 3)
	require.NoError(t, s.Apply([]Intent{Schedule(task)}))

	planned, err := s.Plan([]Intent{Cancel(task.ID)})
	require.NoError(t, err)
	require.Empty(t, planned)
	require.Len(t, s.Export(), 1)
}

func TestFireDispatchesDueAndRearms(t *testing.T) {
	rec := &recorder{}
	s := New(rec, nil)
	due := newTask(t, 5, 7)
	later := newTask(t, 50, 7)
	require.NoError(t, s.Apply([]Intent{Schedule(due), Schedule(later)}))

	require.Equal(t, 0, s.Fire(context.Background(), 4))
	require.Equal(t, 1, s.Fire(context.Background(), 6))
	require.Len(t, rec.calls, 1)
	require.Equal(t, due.ID, rec.calls[0].ID)

	got, ok := s.Task(due.ID)
	require.True(t, ok)
	require.Equal(t, uint64(13), got.TriggerTick)
	require.Equal(t, uint64(1), got.Fires)
	require.Equal(t, uint64(6), got.LastFiredTick)

	require.Len(t, s.Due(13), 1)
}

func TestFireFailureIsLoggedAndRearmed(t *testing.T) {
	rec := &recorder{err: errors.New("boom")}
	s := New(rec, nil)
	task := newTask(t, 1, 2)
	require.NoError(t, s.Apply([]Intent{Schedule(task)}))

	require.Equal(t, 0, s.Fire(context.Background(), 1))
	got, ok := s.Task(task.ID)
	require.True(t, ok)
	require.Equal(t, uint64(3), got.TriggerTick)
}

func TestCancelDuringDispatchIsNotRearmed(t *testing.T) {
	task := newTask(t, 1, 1)
	var s *Scheduler
	s = New(DispatcherFunc(func(context.Context, model.Task) error {
		return s.Apply([]Intent{Cancel(task.ID)})
	}), nil)
	require.NoError(t, s.Apply([]Intent{Schedule(task)}))

	require.Equal(t, 1, s.Fire(context.Background(), 1))
	_, ok := s.Task(task.ID)
	require.False(t, ok)
}

func TestInFlightTaskIsNotFiredTwice(t *testing.T) {
	task := newTask(t, 1, 1)
	var (
		s      *Scheduler
		nested int
	)
	s = New(DispatcherFunc(func(ctx context.Context, _ model.Task) error {
		nested = s.Fire(ctx, 100)
		return nil
	}), nil)
	require.NoError(t, s.Apply([]Intent{Schedule(task)}))

	require.Equal(t, 1, s.Fire(context.Background(), 1))
	require.Zero(t, nested)
}

type countingFirer struct {
	mu    sync.Mutex
	ticks []uint64
}

func (c *countingFirer) FireDue(_ context.Context, now uint64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = append(c.ticks, now)
	return 0, nil
}

func TestRunnerPolls(t *testing.T) {
	firer := &countingFirer{}
	clock := chain.NewManualClock(42)
	r := NewRunner(RunConfig{PollInterval: time.Millisecond, MaxPolls: 3}, clock, firer, nil)
	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, []uint64{42, 42, 42}, firer.ticks)
}

func TestRunnerValidates(t *testing.T) {
	r := NewRunner(RunConfig{}, chain.NewManualClock(0), &countingFirer{}, nil)
	require.Error(t, r.Run(context.Background()))
}
