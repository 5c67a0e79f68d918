package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"stakeswap/internal/model"
)

var ErrInvalidIntent = errors.New("scheduler: invalid intent")

// Dispatcher executes a fired task.
type Dispatcher interface {
	Dispatch(ctx context.Context, task model.Task) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, task model.Task) error

func (f DispatcherFunc) Dispatch(ctx context.Context, task model.Task) error {
	return f(ctx, task)
}

type entry struct {
	task     model.Task
	inFlight bool
}

// Scheduler owns the recurring task table. A task identity is held at most once
// and is never dispatched twice concurrently.
type Scheduler struct {
	mu         sync.Mutex
	tasks      map[solana.PublicKey]*entry
	dispatcher Dispatcher
	logger     *zap.Logger
}

func New(dispatcher Dispatcher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		tasks:      make(map[solana.PublicKey]*entry),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Plan returns the task table that applying intents would produce, without
// changing the scheduler.
func (s *Scheduler) Plan(intents []Intent) ([]model.Task, error) {
	s.mu.Lock()
	table := make(map[solana.PublicKey]model.Task, len(s.tasks))
	for id, e := range s.tasks {
		table[id] = e.task
	}
	s.mu.Unlock()

	for _, intent := range intents {
		if err := intent.validate(); err != nil {
			return nil, err
		}
		switch intent.Kind {
		case IntentSchedule:
			table[intent.Task.ID] = intent.Task
		case IntentCancel:
			delete(table, intent.Task.ID)
		}
	}

	out := make([]model.Task, 0, len(table))
	for _, task := range table {
		out = append(out, task)
	}
	sortTasks(out)
	return out, nil
}

// Apply upserts scheduled tasks by identity and removes cancelled ones.
// Intents are validated before any is applied.
func (s *Scheduler) Apply(intents []Intent) error {
	for _, intent := range intents {
		if err := intent.validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, intent := range intents {
		switch intent.Kind {
		case IntentSchedule:
			_, replaced := s.tasks[intent.Task.ID]
			s.tasks[intent.Task.ID] = &entry{task: intent.Task}
			s.logger.Info("task scheduled",
				zap.String("task", intent.Task.ID.String()),
				zap.Uint64("trigger_tick", intent.Task.TriggerTick),
				zap.Uint64("interval", intent.Task.Interval),
				zap.Bool("replaced", replaced),
			)
		case IntentCancel:
			if _, ok := s.tasks[intent.Task.ID]; !ok {
				continue
			}
			delete(s.tasks, intent.Task.ID)
			s.logger.Info("task cancelled", zap.String("task", intent.Task.ID.String()))
		}
	}
	return nil
}

// Fire dispatches every task due at now that is not already in flight, then
// re-arms it to now + interval unless it was cancelled or replaced meanwhile.
// Dispatch errors are logged and the task is re-armed all the same.
func (s *Scheduler) Fire(ctx context.Context, now uint64) int {
	s.mu.Lock()
	dispatcher := s.dispatcher
	due := make([]*entry, 0)
	for _, e := range s.tasks {
		if e.inFlight || e.task.TriggerTick > now {
			continue
		}
		e.inFlight = true
		due = append(due, e)
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].task.TriggerTick != due[j].task.TriggerTick {
			return due[i].task.TriggerTick < due[j].task.TriggerTick
		}
		return due[i].task.ID.String() < due[j].task.ID.String()
	})

	fired := 0
	for _, e := range due {
		task := e.task
		var err error
		if dispatcher == nil {
			err = errors.New("no dispatcher")
		} else {
			err = dispatcher.Dispatch(ctx, task)
		}
		if err != nil {
			s.logger.Warn("task dispatch failed",
				zap.Error(err),
				zap.String("task", task.ID.String()),
				zap.Uint64("tick", now),
			)
		} else {
			fired++
		}

		s.mu.Lock()
		e.inFlight = false
		if current, ok := s.tasks[task.ID]; ok && current == e {
			e.task.Fires++
			e.task.LastFiredTick = now
			e.task.TriggerTick = now + e.task.Interval
		}
		s.mu.Unlock()
	}
	return fired
}

// Task returns the task with the given identity.
func (s *Scheduler) Task(id solana.PublicKey) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	return e.task, true
}

// Due returns the tasks whose trigger tick is at or before now.
func (s *Scheduler) Due(now uint64) []model.Task {
	out := make([]model.Task, 0)
	for _, task := range s.Export() {
		if task.TriggerTick <= now {
			out = append(out, task)
		}
	}
	return out
}

// Export returns the task table ordered by identity.
func (s *Scheduler) Export() []model.Task {
	s.mu.Lock()
	out := make([]model.Task, 0, len(s.tasks))
	for _, e := range s.tasks {
		out = append(out, e.task)
	}
	s.mu.Unlock()
	sortTasks(out)
	return out
}

// Import replaces the task table.
func (s *Scheduler) Import(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[solana.PublicKey]*entry, len(tasks))
	for _, task := range tasks {
		s.tasks[task.ID] = &entry{task: task}
	}
}

func sortTasks(tasks []model.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID.String() < tasks[j].ID.String()
	})
}
