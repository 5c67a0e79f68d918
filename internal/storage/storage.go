package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"stakeswap/internal/model"
)

// StateStore persists the program snapshot.
type StateStore interface {
	Load(ctx context.Context) (model.Snapshot, bool, error)
	Save(ctx context.Context, snap model.Snapshot) error
	Close() error
}

// Journal records every executed invocation.
type Journal interface {
	Append(ctx context.Context, inv model.Invocation) error
	Close() error
}

// MemoryStore keeps the snapshot in memory, encoded so callers never share maps.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (model.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return model.Snapshot{}, false, nil
	}
	var snap model.Snapshot
	if err := json.Unmarshal(m.data, &snap); err != nil {
		return model.Snapshot{}, false, fmt.Errorf("parse state: %w", err)
	}
	return snap, true, nil
}

func (m *MemoryStore) Save(_ context.Context, snap model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// MemoryJournal keeps invocations in memory.
type MemoryJournal struct {
	mu      sync.Mutex
	entries []model.Invocation
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Append(_ context.Context, inv model.Invocation) error {
	j.mu.Lock()
	j.entries = append(j.entries, inv)
	j.mu.Unlock()
	return nil
}

// Entries returns a copy of the recorded invocations.
func (j *MemoryJournal) Entries() []model.Invocation {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]model.Invocation, len(j.entries))
	copy(out, j.entries)
	return out
}

func (j *MemoryJournal) Close() error { return nil }

// NopJournal discards invocations.
type NopJournal struct{}

func (NopJournal) Append(context.Context, model.Invocation) error { return nil }
func (NopJournal) Close() error                                   { return nil }
