package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gagliardetto/solana-go"

	"stakeswap/internal/model"
)

func sampleSnapshot() model.Snapshot {
	mint := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()
	return model.Snapshot{
		Tick:   7,
		Seq:    2,
		Pool:   &model.PoolRecord{Assets: []solana.PublicKey{mint}, Bump: 253},
		Stakes: map[string]model.StakeRecord{user.String(): {LockedSince: 3, IsStaked: true}},
		Ledger: model.LedgerState{
			Accounts: map[string]model.Account{user.String(): {Lamports: 10, Space: 24}},
			Records:  map[string]model.BalanceRecord{},
			Mints:    map[string]model.Mint{mint.String(): {Address: mint, Authority: user, Decimals: 2, Supply: 5}},
			Metadata: map[string]model.TokenMetadata{},
		},
		Tasks: []model.Task{{ID: user, Owner: user, Label: "t", Interval: 10, TriggerTick: 13}},
	}
}

func TestFileStateStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStateStore(filepath.Join(dir, "nested", "state.json"))
	ctx := context.Background()

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("expected missing state, ok=%v err=%v", ok, err)
	}

	snap := sampleSnapshot()
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(store.Path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("tmp file left behind: %v", err)
	}

	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.UpdatedAt == "" {
		t.Fatalf("updated_at not set")
	}
	got.UpdatedAt = ""
	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("snapshot mismatch: %+v vs %+v", got, snap)
	}
}

func TestFileStateStoreRejectsDirectory(t *testing.T) {
	store := NewFileStateStore(t.TempDir())
	if _, _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected error for directory path")
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	store := NewMemoryStore()
	snap := sampleSnapshot()
	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap.Pool.Assets = nil

	got, ok, err := store.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(got.Pool.Assets) != 1 {
		t.Fatalf("stored snapshot aliased caller state: %+v", got.Pool)
	}
}

func TestJsonlJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	j := NewJsonlJournal(path)
	entries := []model.Invocation{
		{Seq: 1, Name: "create_pool", Status: model.InvocationCommitted, RecordedAt: "2024-01-01T00:00:00Z"},
		{Seq: 2, Name: "swap", Status: model.InvocationAborted, Error: "pool: swap amount is zero", RecordedAt: "2024-01-01T00:00:01Z"},
	}
	for _, inv := range entries {
		if err := j.Append(context.Background(), inv); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, entries) {
		t.Fatalf("journal mismatch: %+v", got)
	}
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, journal, err := Open(ctx, Options{Backend: BackendFile, StatePath: filepath.Join(dir, "s.json"), Journal: filepath.Join(dir, "j.jsonl")}, nil)
	if err != nil {
		t.Fatalf("open file backend: %v", err)
	}
	if _, ok := store.(*FileStateStore); !ok {
		t.Fatalf("store type mismatch: %T", store)
	}
	if _, ok := journal.(*JsonlJournal); !ok {
		t.Fatalf("journal type mismatch: %T", journal)
	}

	store, journal, err = Open(ctx, Options{Backend: BackendBadger, BadgerDir: filepath.Join(dir, "badger")}, nil)
	if err != nil {
		t.Fatalf("open badger backend: %v", err)
	}
	if _, ok := journal.(NopJournal); !ok {
		t.Fatalf("journal type mismatch: %T", journal)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close badger: %v", err)
	}

	if _, _, err := Open(ctx, Options{Backend: "etcd"}, nil); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, _, err := Open(ctx, Options{Backend: BackendFile}, nil); err == nil {
		t.Fatalf("expected error for missing state file")
	}
}
