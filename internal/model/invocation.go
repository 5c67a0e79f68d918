package model

import (
	"encoding/json"
)

const (
	InvocationCommitted = "committed"
	InvocationAborted   = "aborted"
)

// Invocation is the journal entry written for every executed entry point.
type Invocation struct {
	Seq        uint64   `json:"seq"`
	Name       string   `json:"name"`
	Signer     string   `json:"signer"`
	Tick       uint64   `json:"tick"`
	Status     string   `json:"status"`
	Error      string   `json:"error,omitempty"`
	Intents    []string `json:"intents,omitempty"`
	RecordedAt string   `json:"recorded_at"`
}

// MarshalJSON ensures Invocation is encoded with stable field names.
func (inv Invocation) MarshalJSON() ([]byte, error) {
	type Alias Invocation
	return json.Marshal(Alias(inv))
}

// UnmarshalJSON decodes an Invocation from JSON.
func (inv *Invocation) UnmarshalJSON(data []byte) error {
	type Alias Invocation
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*inv = Invocation(a)
	return nil
}
