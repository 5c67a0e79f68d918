package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"stakeswap/internal/retry"
	"stakeswap/internal/storage/badgerstore"
	"stakeswap/internal/storage/postgres"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"

	// JournalPostgres selects the invocations table as journal.
	JournalPostgres = "postgres"
)

// Options selects and configures the storage backends.
type Options struct {
	Backend      string
	StatePath    string
	BadgerDir    string
	PostgresDSN  string
	Name         string
	Journal      string
	MaxRetries   int
	RetryBackoff time.Duration
}

func (o Options) retryPolicy(logger *zap.Logger) retry.Policy {
	return retry.Policy{MaxRetries: o.MaxRetries, BaseDelay: o.RetryBackoff, Logger: logger}
}

// Open builds the state store and journal, retrying backends that need a connection.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (StateStore, Journal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store StateStore
		pg    *postgres.Store
	)
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	switch backend {
	case BackendMemory:
		store = NewMemoryStore()
	case "", BackendFile:
		if opts.StatePath == "" {
			return nil, nil, fmt.Errorf("state file is required")
		}
		store = NewFileStateStore(opts.StatePath)
	case BackendBadger:
		err := opts.retryPolicy(logger).Do(ctx, "open badger", func(context.Context) error {
			s, err := badgerstore.Open(opts.BadgerDir)
			if err != nil {
				return err
			}
			store = s
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	case BackendPostgres:
		var err error
		pg, err = openPostgres(ctx, opts, logger)
		if err != nil {
			return nil, nil, err
		}
		store = pg
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}

	journal, err := openJournal(ctx, opts, pg, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, journal, nil
}

func openJournal(ctx context.Context, opts Options, pg *postgres.Store, logger *zap.Logger) (Journal, error) {
	switch strings.TrimSpace(opts.Journal) {
	case "":
		return NopJournal{}, nil
	case JournalPostgres:
		if pg != nil {
			return pg, nil
		}
		return openPostgres(ctx, opts, logger)
	default:
		return NewJsonlJournal(opts.Journal), nil
	}
}

func openPostgres(ctx context.Context, opts Options, logger *zap.Logger) (*postgres.Store, error) {
	name := opts.Name
	if name == "" {
		name = "default"
	}
	var pg *postgres.Store
	err := opts.retryPolicy(logger).Do(ctx, "connect postgres", func(ctx context.Context) error {
		s, err := postgres.NewStore(ctx, opts.PostgresDSN, name)
		if err != nil {
			return err
		}
		pg = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}
