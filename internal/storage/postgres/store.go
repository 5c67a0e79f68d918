package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stakeswap/internal/model"
)

// Schema creates the tables used by Store.
const Schema = `
CREATE TABLE IF NOT EXISTS program_state (
	name       TEXT NOT NULL,
	section    TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (name, section)
);
CREATE TABLE IF NOT EXISTS invocations (
	name        TEXT NOT NULL,
	seq         BIGINT NOT NULL,
	entry_point TEXT NOT NULL,
	signer      TEXT NOT NULL,
	tick        BIGINT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT,
	intents     JSONB,
	recorded_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (name, seq, status)
);
`

const (
	sectionMeta   = "meta"
	sectionPool   = "pool"
	sectionStakes = "stakes"
	sectionLedger = "ledger"
	sectionTasks  = "tasks"
)

type meta struct {
	Tick uint64 `json:"tick"`
	Seq  uint64 `json:"seq"`
}

// Store provides Postgres persistence for program state and the invocation journal.
type Store struct {
	pool *pgxpool.Pool
	name string
}

func NewStore(ctx context.Context, dsn, name string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	if name == "" {
		return nil, fmt.Errorf("state name required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool, name: name}, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Load reads every section of the named snapshot.
func (s *Store) Load(ctx context.Context) (model.Snapshot, bool, error) {
	rows, err := s.pool.Query(ctx, `SELECT section, data FROM program_state WHERE name=$1`, s.name)
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("query state: %w", err)
	}
	defer rows.Close()

	var (
		snap  model.Snapshot
		m     meta
		found bool
	)
	for rows.Next() {
		var section string
		var data []byte
		if err := rows.Scan(&section, &data); err != nil {
			return model.Snapshot{}, false, fmt.Errorf("scan state: %w", err)
		}
		var dst any
		switch section {
		case sectionMeta:
			dst = &m
			found = true
		case sectionPool:
			dst = &snap.Pool
		case sectionStakes:
			dst = &snap.Stakes
		case sectionLedger:
			dst = &snap.Ledger
		case sectionTasks:
			dst = &snap.Tasks
		default:
			continue
		}
		if err := json.Unmarshal(data, dst); err != nil {
			return model.Snapshot{}, false, fmt.Errorf("parse state %s: %w", section, err)
		}
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, false, fmt.Errorf("read state: %w", err)
	}
	snap.Tick = m.Tick
	snap.Seq = m.Seq
	return snap, found, nil
}

// Save upserts every section of the snapshot in one transaction.
func (s *Store) Save(ctx context.Context, snap model.Snapshot) error {
	sections := []struct {
		name string
		val  any
	}{
		{sectionMeta, meta{Tick: snap.Tick, Seq: snap.Seq}},
		{sectionPool, snap.Pool},
		{sectionStakes, snap.Stakes},
		{sectionLedger, snap.Ledger},
		{sectionTasks, snap.Tasks},
	}

	batch := &pgx.Batch{}
	for _, sec := range sections {
		data, err := json.Marshal(sec.val)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", sec.name, err)
		}
		batch.Queue(`
			INSERT INTO program_state (name, section, data, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (name, section) DO UPDATE
			SET data = EXCLUDED.data, updated_at = now()
		`, s.name, sec.name, data)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	br := tx.SendBatch(ctx, batch)
	for range sections {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("upsert state: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return tx.Commit(ctx)
}

// Append records an invocation in the journal table.
func (s *Store) Append(ctx context.Context, inv model.Invocation) error {
	intents, err := json.Marshal(inv.Intents)
	if err != nil {
		return fmt.Errorf("marshal intents: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO invocations (name, seq, entry_point, signer, tick, status, error, intents, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
		ON CONFLICT (name, seq, status) DO NOTHING
	`,
		s.name,
		int64(inv.Seq),
		inv.Name,
		inv.Signer,
		int64(inv.Tick),
		inv.Status,
		inv.Error,
		intents,
		inv.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invocation: %w", err)
	}
	return nil
}
