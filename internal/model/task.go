package model

import "github.com/gagliardetto/solana-go"

// Task is a pending recurring instruction held by the scheduler.
type Task struct {
	ID            solana.PublicKey `json:"id"`
	Owner         solana.PublicKey `json:"owner"`
	Label         string           `json:"label"`
	Instruction   string           `json:"instruction"`
	TriggerTick   uint64           `json:"trigger_tick"`
	Interval      uint64           `json:"interval"`
	Fires         uint64           `json:"fires"`
	LastFiredTick uint64           `json:"last_fired_tick,omitempty"`
}
