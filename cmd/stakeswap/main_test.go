package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"

	"stakeswap/internal/model"
)

type cli struct {
	t   *testing.T
	dir string
}

func (c cli) exec(args ...string) ([]byte, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args,
		"--store", "file",
		"--state-file", filepath.Join(c.dir, "state.json"),
		"--journal", filepath.Join(c.dir, "journal.jsonl"),
		"--log-level", "error",
	))
	err := root.ExecuteContext(context.Background())
	return out.Bytes(), err
}

func (c cli) run(args ...string) []byte {
	c.t.Helper()
	out, err := c.exec(args...)
	if err != nil {
		c.t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

func TestSwapAcrossInvocations(t *testing.T) {
	c := cli{t: t, dir: t.TempDir()}
	admin := solana.NewWallet().PublicKey().String()
	trader := solana.NewWallet().PublicKey().String()
	mintA := solana.NewWallet().PublicKey().String()
	mintB := solana.NewWallet().PublicKey().String()

	c.run("airdrop", "--to", admin, "--lamports", "10000000000")
	c.run("airdrop", "--to", trader, "--lamports", "10000000000")
	for _, mint := range []string{mintA, mintB} {
		c.run("init-token", "--payer", admin, "--mint", mint, "--name", "Asset", "--symbol", "AST")
		c.run("mint-tokens", "--authority", admin, "--to", admin, "--mint", mint, "--quantity", "2000")
	}
	c.run("create-pool", "--payer", admin)
	c.run("fund-pool", "--user", admin, "--mint", mintA, "--amount", "1000")
	c.run("fund-pool", "--user", admin, "--mint", mintB, "--amount", "1000")
	c.run("mint-tokens", "--authority", admin, "--to", trader, "--mint", mintB, "--quantity", "100")

	var res struct {
		Paid     uint64 `json:"paid"`
		Received uint64 `json:"received"`
	}
	if err := json.Unmarshal(c.run("swap", "--payer", trader, "--receive", mintA, "--pay", mintB, "--amount", "100"), &res); err != nil {
		t.Fatalf("decode swap output: %v", err)
	}
	if res.Paid != 100 || res.Received != 90 {
		t.Fatalf("swap mismatch: %+v", res)
	}

	var view stateView
	if err := json.Unmarshal(c.run("show", "--owner", trader), &view); err != nil {
		t.Fatalf("decode show output: %v", err)
	}
	if view.PoolBalances[mintA] != 910 || view.PoolBalances[mintB] != 1100 {
		t.Fatalf("pool balances mismatch: %+v", view.PoolBalances)
	}
	if got := view.Owners[trader].Balances[mintA]; got != "90" {
		t.Fatalf("trader balance mismatch: %s", got)
	}

	if _, err := c.exec("swap", "--payer", trader, "--receive", mintA, "--pay", mintB, "--amount", "0"); err == nil {
		t.Fatalf("expected zero-amount swap to fail")
	}

	var entries []model.Invocation
	if err := json.Unmarshal(c.run("journal", "--limit", "2"), &entries); err != nil {
		t.Fatalf("decode journal output: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("journal length mismatch: %d", len(entries))
	}
	if entries[0].Name != "swap" || entries[0].Status != model.InvocationCommitted {
		t.Fatalf("committed swap entry mismatch: %+v", entries[0])
	}

	var aborted []model.Invocation
	if err := json.Unmarshal(c.run("journal", "--aborted"), &aborted); err != nil {
		t.Fatalf("decode journal output: %v", err)
	}
	if len(aborted) != 1 || aborted[0].Name != "swap" || aborted[0].Error == "" {
		t.Fatalf("aborted entries mismatch: %+v", aborted)
	}
}

func TestAdvancePersistsTick(t *testing.T) {
	c := cli{t: t, dir: t.TempDir()}
	c.run("advance", "--ticks", "7")

	var out struct {
		Tick  uint64 `json:"tick"`
		Fired int    `json:"fired"`
	}
	if err := json.Unmarshal(c.run("advance", "--ticks", "3"), &out); err != nil {
		t.Fatalf("decode advance output: %v", err)
	}
	if out.Tick != 10 || out.Fired != 0 {
		t.Fatalf("advance mismatch: %+v", out)
	}
}

func TestBadKeyFlag(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	dir := t.TempDir()
	root.SetArgs([]string{"airdrop", "--to", "not-a-key", "--lamports", "1",
		"--state-file", filepath.Join(dir, "state.json"), "--journal", "", "--log-level", "error"})
	err := root.ExecuteContext(context.Background())
	if err == nil {
		t.Fatalf("expected error for invalid key")
	}
	if got, want := err.Error(), fmt.Sprintf("--to: invalid key: %s", "not-a-key"); got != want {
		t.Fatalf("error mismatch: %q != %q", got, want)
	}
}
