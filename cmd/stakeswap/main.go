package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stakeswap/internal/address"
	"stakeswap/internal/pool"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "stakeswap",
		Short:        "Liquidity pool and staking program",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file path")
	pf.String("program-id", address.DefaultProgramID, "program id used for derived addresses")
	pf.String("store", "file", "state store (memory, file, badger, postgres)")
	pf.String("state-file", "./data/state.json", "state file path for the file store")
	pf.String("badger-dir", "./data/badger", "badger directory")
	pf.String("pg-dsn", "", "Postgres DSN")
	pf.String("state-name", "default", "state name inside shared stores")
	pf.String("journal", "./data/journal.jsonl", "invocation journal: JSONL path, postgres, or empty to disable")
	pf.String("clock", "manual", "clock source (manual, rpc)")
	pf.String("rpc", "", "RPC URL for the rpc clock")
	pf.String("pricing", pool.PricerDecimal, "swap pricer (decimal, float32)")
	pf.String("fee-rate", pool.DefaultFeeRate.String(), "swap fee rate")
	pf.Uint64("auto-fund-bps", pool.DefaultAutoFundBps, "auto-fund amount in basis points of the pool balance")
	pf.Uint64("min-trigger-delay", pool.DefaultMinTriggerDelay, "minimum auto-fund trigger delay in ticks")
	pf.Uint64("max-trigger-delay", pool.DefaultMaxTriggerDelay, "maximum auto-fund trigger delay in ticks")
	pf.Int("max-retries", 5, "maximum retry attempts")
	pf.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")

	airdropCmd := &cobra.Command{
		Use:   "airdrop",
		Short: "Credit native lamports to a key",
		RunE:  runAirdrop,
	}
	airdropCmd.Flags().String("to", "", "recipient key")
	airdropCmd.Flags().Uint64("lamports", 0, "lamports to credit")
	root.AddCommand(airdropCmd)

	initTokenCmd := &cobra.Command{
		Use:   "init-token",
		Short: "Create a mint and its metadata",
		RunE:  runInitToken,
	}
	initTokenCmd.Flags().String("payer", "", "payer and mint authority")
	initTokenCmd.Flags().String("mint", "", "mint address")
	initTokenCmd.Flags().String("name", "", "token name")
	initTokenCmd.Flags().String("symbol", "", "token symbol")
	initTokenCmd.Flags().String("uri", "", "metadata uri")
	initTokenCmd.Flags().Uint8("decimals", 0, "mint decimals")
	root.AddCommand(initTokenCmd)

	mintCmd := &cobra.Command{
		Use:   "mint-tokens",
		Short: "Mint whole tokens to a recipient",
		RunE:  runMintTokens,
	}
	mintCmd.Flags().String("authority", "", "mint authority")
	mintCmd.Flags().String("to", "", "recipient key")
	mintCmd.Flags().String("mint", "", "mint address")
	mintCmd.Flags().Uint64("quantity", 0, "whole tokens to mint")
	root.AddCommand(mintCmd)

	createPoolCmd := &cobra.Command{
		Use:   "create-pool",
		Short: "Create the liquidity pool",
		RunE:  runCreatePool,
	}
	createPoolCmd.Flags().String("payer", "", "rent payer")
	root.AddCommand(createPoolCmd)

	fundPoolCmd := &cobra.Command{
		Use:   "fund-pool",
		Short: "Deposit an asset into the pool",
		RunE:  runFundPool,
	}
	fundPoolCmd.Flags().String("user", "", "depositor")
	fundPoolCmd.Flags().String("mint", "", "asset mint")
	fundPoolCmd.Flags().Uint64("amount", 0, "amount in minor units")
	root.AddCommand(fundPoolCmd)

	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap one pool asset for another",
		RunE:  runSwap,
	}
	swapCmd.Flags().String("payer", "", "trader")
	swapCmd.Flags().String("receive", "", "mint to receive")
	swapCmd.Flags().String("pay", "", "mint to pay")
	swapCmd.Flags().Uint64("amount", 0, "pay amount in minor units")
	root.AddCommand(swapCmd)

	initStakingCmd := &cobra.Command{
		Use:   "initialize-staking",
		Short: "Create the reward vault for a staked mint",
		RunE:  runInitializeStaking,
	}
	initStakingCmd.Flags().String("payer", "", "rent payer")
	initStakingCmd.Flags().String("mint", "", "staked mint")
	root.AddCommand(initStakingCmd)

	fundVaultCmd := &cobra.Command{
		Use:   "fund-vault",
		Short: "Deposit rewards into the vault",
		RunE:  runFundVault,
	}
	fundVaultCmd.Flags().String("admin", "", "depositor")
	fundVaultCmd.Flags().Uint64("amount", 0, "amount in minor units")
	root.AddCommand(fundVaultCmd)

	stakeCmd := &cobra.Command{
		Use:   "stake",
		Short: "Lock whole tokens and schedule the auto-fund task",
		RunE:  runStake,
	}
	stakeCmd.Flags().String("user", "", "staker")
	stakeCmd.Flags().Uint64("amount", 0, "whole tokens to stake")
	stakeCmd.Flags().String("task-id", "", "auto-fund task label")
	root.AddCommand(stakeCmd)

	unstakeCmd := &cobra.Command{
		Use:   "unstake",
		Short: "Release the stake and pay the reward",
		RunE:  runUnstake,
	}
	unstakeCmd.Flags().String("user", "", "staker")
	root.AddCommand(unstakeCmd)

	advanceCmd := &cobra.Command{
		Use:   "advance",
		Short: "Advance the manual clock and fire due tasks",
		RunE:  runAdvance,
	}
	advanceCmd.Flags().Uint64("ticks", 1, "ticks to advance")
	advanceCmd.Flags().Bool("fire", true, "fire due tasks after advancing")
	root.AddCommand(advanceCmd)

	schedulerCmd := &cobra.Command{
		Use:   "run-scheduler",
		Short: "Poll the clock and fire due tasks",
		RunE:  runScheduler,
	}
	schedulerCmd.Flags().Duration("poll-interval", time.Second, "clock poll interval")
	schedulerCmd.Flags().Int("max-polls", 0, "stop after this many polls, 0 means forever")
	root.AddCommand(schedulerCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print pool, stakes and tasks",
		RunE:  runShow,
	}
	showCmd.Flags().StringSlice("owner", nil, "also print balances of these keys (comma-separated)")
	root.AddCommand(showCmd)

	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Print recorded invocations from a JSONL journal",
		RunE:  runJournal,
	}
	journalCmd.Flags().Int("limit", 0, "print only the last n entries, 0 means all")
	journalCmd.Flags().Bool("aborted", false, "print only aborted invocations")
	root.AddCommand(journalCmd)

	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}

	return cfg.Build()
}
