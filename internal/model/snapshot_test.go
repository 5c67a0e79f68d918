package model

import (
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestSnapshotKeysEncodeAsBase58(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	snap := Snapshot{
		Tick: 10,
		Pool: &PoolRecord{Assets: []solana.PublicKey{mint}, Bump: 254},
		Stakes: map[string]StakeRecord{
			mint.String(): {LockedSince: 3, IsStaked: true},
		},
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	pool, ok := decoded["pool"].(map[string]interface{})
	if !ok {
		t.Fatalf("pool should be an object")
	}
	assets, ok := pool["assets"].([]interface{})
	if !ok || len(assets) != 1 {
		t.Fatalf("assets mismatch: %v", pool["assets"])
	}
	if got, ok := assets[0].(string); !ok || got != mint.String() {
		t.Fatalf("asset should be base58 string, got %v", assets[0])
	}

	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if !back.Pool.Assets[0].Equals(mint) {
		t.Fatalf("asset mismatch: %s != %s", back.Pool.Assets[0], mint)
	}
}

func TestPoolRecordCloneIsIndependent(t *testing.T) {
	orig := &PoolRecord{Assets: []solana.PublicKey{solana.NewWallet().PublicKey()}, Bump: 1}
	clone := orig.Clone()
	clone.Assets = append(clone.Assets, solana.NewWallet().PublicKey())
	clone.Assets[0] = solana.PublicKey{}

	if len(orig.Assets) != 1 || orig.Assets[0].IsZero() {
		t.Fatalf("clone shares storage with original: %+v", orig)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		value    uint64
		decimals uint8
		want     string
	}{
		{10500, 3, "10.500"},
		{90, 0, "90"},
		{1, 9, "0.000000001"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.value, tc.decimals); got != tc.want {
			t.Fatalf("FormatAmount(%d, %d) = %s, want %s", tc.value, tc.decimals, got, tc.want)
		}
	}
}
