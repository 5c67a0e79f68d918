package scheduler

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"stakeswap/internal/model"
)

type IntentKind string

const (
	IntentSchedule IntentKind = "schedule"
	IntentCancel   IntentKind = "cancel"
)

// Intent is a scheduling request emitted by program logic and applied by the
// scheduler once the emitting invocation commits.
type Intent struct {
	Kind IntentKind
	Task model.Task
}

// Schedule requests that task be upserted by its identity.
func Schedule(task model.Task) Intent {
	return Intent{Kind: IntentSchedule, Task: task}
}

// Cancel requests removal of the task with the given identity.
func Cancel(id solana.PublicKey) Intent {
	return Intent{Kind: IntentCancel, Task: model.Task{ID: id}}
}

func (i Intent) String() string {
	switch i.Kind {
	case IntentSchedule:
		return fmt.Sprintf("schedule %s at %d every %d", i.Task.ID, i.Task.TriggerTick, i.Task.Interval)
	case IntentCancel:
		return fmt.Sprintf("cancel %s", i.Task.ID)
	default:
		return fmt.Sprintf("unknown %q", string(i.Kind))
	}
}

func (i Intent) validate() error {
	if i.Task.ID.IsZero() {
		return fmt.Errorf("%w: task id is empty", ErrInvalidIntent)
	}
	switch i.Kind {
	case IntentSchedule:
		if i.Task.Interval == 0 {
			return fmt.Errorf("%w: interval must be greater than zero", ErrInvalidIntent)
		}
		if _, err := DecodeFund(i.Task.Instruction); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidIntent, err)
		}
	case IntentCancel:
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidIntent, string(i.Kind))
	}
	return nil
}
