package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v3"

	"stakeswap/internal/model"
)

var (
	keyMeta   = []byte("state/meta")
	keyPool   = []byte("state/pool")
	keyStakes = []byte("state/stakes")
	keyLedger = []byte("state/ledger")
	keyTasks  = []byte("state/tasks")
)

type meta struct {
	Tick      uint64 `json:"tick"`
	Seq       uint64 `json:"seq"`
	UpdatedAt string `json:"updated_at"`
}

// Store keeps the snapshot in BadgerDB, one key per section, written in a
// single transaction.
type Store struct {
	db *badger.DB
}

// Open opens or creates a store under dir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("badger dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create badger dir: %w", err)
	}
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a store that is never written to disk.
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts.WithLogger(nil).WithNumVersionsToKeep(1))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) (model.Snapshot, bool, error) {
	var snap model.Snapshot
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		var m meta
		ok, err := get(txn, keyMeta, &m)
		if err != nil || !ok {
			return err
		}
		found = true
		snap.Tick = m.Tick
		snap.Seq = m.Seq
		snap.UpdatedAt = m.UpdatedAt

		sections := []struct {
			key []byte
			dst any
		}{
			{keyPool, &snap.Pool},
			{keyStakes, &snap.Stakes},
			{keyLedger, &snap.Ledger},
			{keyTasks, &snap.Tasks},
		}
		for _, sec := range sections {
			if _, err := get(txn, sec.key, sec.dst); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("load state: %w", err)
	}
	return snap, found, nil
}

func (s *Store) Save(ctx context.Context, snap model.Snapshot) error {
	m := meta{
		Tick:      snap.Tick,
		Seq:       snap.Seq,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	entries := []struct {
		key []byte
		val any
	}{
		{keyMeta, m},
		{keyPool, snap.Pool},
		{keyStakes, snap.Stakes},
		{keyLedger, snap.Ledger},
		{keyTasks, snap.Tasks},
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, e := range entries {
			data, err := json.Marshal(e.val)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", e.key, err)
			}
			if err := txn.Set(e.key, data); err != nil {
				return fmt.Errorf("set %s: %w", e.key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func get(txn *badger.Txn, key []byte, dst any) (bool, error) {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	data, err := item.ValueCopy(nil)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return true, nil
}
