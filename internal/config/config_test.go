package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"stakeswap/internal/address"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ProgramID != address.DefaultProgramID {
		t.Fatalf("program id mismatch: %s", cfg.ProgramID)
	}
	if cfg.Store != "file" || cfg.Clock != "manual" || cfg.Pricing != "decimal" {
		t.Fatalf("defaults mismatch: %+v", cfg)
	}
	if cfg.FeeRate.String() != "0.01" {
		t.Fatalf("fee rate mismatch: %s", cfg.FeeRate)
	}
	if p := cfg.Policy(); p.AutoFundBps != 100 || p.MinTriggerDelay != 10 || p.MaxTriggerDelay != 1000 {
		t.Fatalf("policy mismatch: %+v", p)
	}
	if cfg.RetryBackoff != 500*time.Millisecond {
		t.Fatalf("retry backoff mismatch: %s", cfg.RetryBackoff)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := filepath.Join(dir, "stakeswap.yaml")
	content := "store: badger\npricing: float32\nfee-rate: \"0.003\"\nmin-trigger-delay: 5\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("STAKESWAP_LOG_LEVEL", "debug")
	t.Setenv("STAKESWAP_STATE_FILE", "/tmp/from-env.json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state-file", "", "")
	flags.String("store", "", "")
	if err := flags.Parse([]string{"--store", "postgres"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(cfgPath, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != "postgres" {
		t.Fatalf("flag should win: %s", cfg.Store)
	}
	if cfg.StateFile != "/tmp/from-env.json" {
		t.Fatalf("env should beat unset flag: %s", cfg.StateFile)
	}
	if cfg.Pricing != "float32" || cfg.FeeRate.String() != "0.003" || cfg.MinTriggerDelay != 5 {
		t.Fatalf("file values mismatch: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("env log level mismatch: %s", cfg.LogLevel)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STAKESWAP_FEE_RATE", "one percent")
	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected fee-rate error")
	}

	t.Setenv("STAKESWAP_FEE_RATE", "0.01")
	t.Setenv("STAKESWAP_MIN_TRIGGER_DELAY", "50")
	t.Setenv("STAKESWAP_MAX_TRIGGER_DELAY", "5")
	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected policy error")
	}
}
