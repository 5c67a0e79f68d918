package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"stakeswap/internal/address"
	"stakeswap/internal/pool"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	ProgramID       string
	Store           string
	StateFile       string
	BadgerDir       string
	PostgresDSN     string
	StateName       string
	Journal         string
	Clock           string
	RPCURL          string
	Pricing         string
	FeeRate         decimal.Decimal
	AutoFundBps     uint64
	MinTriggerDelay uint64
	MaxTriggerDelay uint64
	PollInterval    time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	LogLevel        string
}

// Policy returns the auto-fund sizing policy.
func (c Config) Policy() pool.Policy {
	return pool.Policy{
		AutoFundBps:     c.AutoFundBps,
		MinTriggerDelay: c.MinTriggerDelay,
		MaxTriggerDelay: c.MaxTriggerDelay,
	}
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STAKESWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("program-id", address.DefaultProgramID)
	v.SetDefault("store", "file")
	v.SetDefault("state-file", "./data/state.json")
	v.SetDefault("badger-dir", "./data/badger")
	v.SetDefault("state-name", "default")
	v.SetDefault("journal", "./data/journal.jsonl")
	v.SetDefault("clock", "manual")
	v.SetDefault("pricing", pool.PricerDecimal)
	v.SetDefault("fee-rate", pool.DefaultFeeRate.String())
	v.SetDefault("auto-fund-bps", pool.DefaultAutoFundBps)
	v.SetDefault("min-trigger-delay", pool.DefaultMinTriggerDelay)
	v.SetDefault("max-trigger-delay", pool.DefaultMaxTriggerDelay)
	v.SetDefault("poll-interval", time.Second)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	feeRate, err := decimal.NewFromString(strings.TrimSpace(v.GetString("fee-rate")))
	if err != nil {
		return Config{}, fmt.Errorf("parse fee-rate: %w", err)
	}

	cfg := Config{
		ProgramID:       v.GetString("program-id"),
		Store:           v.GetString("store"),
		StateFile:       v.GetString("state-file"),
		BadgerDir:       v.GetString("badger-dir"),
		PostgresDSN:     v.GetString("pg-dsn"),
		StateName:       v.GetString("state-name"),
		Journal:         v.GetString("journal"),
		Clock:           v.GetString("clock"),
		RPCURL:          v.GetString("rpc"),
		Pricing:         v.GetString("pricing"),
		FeeRate:         feeRate,
		AutoFundBps:     v.GetUint64("auto-fund-bps"),
		MinTriggerDelay: v.GetUint64("min-trigger-delay"),
		MaxTriggerDelay: v.GetUint64("max-trigger-delay"),
		PollInterval:    v.GetDuration("poll-interval"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		LogLevel:        v.GetString("log-level"),
	}

	if err := cfg.Policy().Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid policy: %w", err)
	}

	return cfg, nil
}
