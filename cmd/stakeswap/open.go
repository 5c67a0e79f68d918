package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakeswap/internal/address"
	"stakeswap/internal/chain"
	"stakeswap/internal/config"
	"stakeswap/internal/pool"
	"stakeswap/internal/program"
	"stakeswap/internal/storage"
)

const (
	clockManual = "manual"
	clockRPC    = "rpc"
)

// session is an opened program plus everything that must be released with it.
type session struct {
	cfg     config.Config
	logger  *zap.Logger
	prog    *program.Program
	closers []func()
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger}
	s.closers = append(s.closers, func() { _ = logger.Sync() })

	deriver, err := address.NewDeriverFromBase58(cfg.ProgramID)
	if err != nil {
		s.Close()
		return nil, err
	}
	pricer, err := pool.NewPricer(cfg.Pricing, cfg.FeeRate)
	if err != nil {
		s.Close()
		return nil, err
	}

	clock, err := openClock(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	if rc, ok := clock.(*chain.RPCClock); ok {
		s.closers = append(s.closers, rc.Close)
	}

	store, journal, err := storage.Open(ctx, storage.Options{
		Backend:      cfg.Store,
		StatePath:    cfg.StateFile,
		BadgerDir:    cfg.BadgerDir,
		PostgresDSN:  cfg.PostgresDSN,
		Name:         cfg.StateName,
		Journal:      cfg.Journal,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	prog, err := program.New(ctx, program.Options{
		Deriver: deriver,
		Pricer:  pricer,
		Policy:  cfg.Policy(),
		Clock:   clock,
		Store:   store,
		Journal: journal,
		Logger:  logger,
	})
	if err != nil {
		_ = store.Close()
		_ = journal.Close()
		s.Close()
		return nil, err
	}
	s.prog = prog
	s.closers = append(s.closers, func() {
		if err := prog.Close(); err != nil {
			logger.Warn("close program", zap.Error(err))
		}
	})

	logger.Debug("program opened",
		zap.String("program_id", cfg.ProgramID),
		zap.String("store", cfg.Store),
		zap.String("clock", cfg.Clock),
		zap.String("pricing", cfg.Pricing),
	)
	return s, nil
}

func openClock(ctx context.Context, cfg config.Config) (chain.Clock, error) {
	switch cfg.Clock {
	case "", clockManual:
		return chain.NewManualClock(0), nil
	case clockRPC:
		if cfg.RPCURL == "" {
			return nil, fmt.Errorf("rpc url is required")
		}
		c, err := chain.NewRPCClock(ctx, cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("connect rpc: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown clock: %s", cfg.Clock)
	}
}

func keyFlag(cmd *cobra.Command, name string) (solana.PublicKey, error) {
	raw, _ := cmd.Flags().GetString(name)
	key, err := address.ParseKey(raw)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("--%s: %w", name, err)
	}
	return key, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
