package model

import "github.com/gagliardetto/solana-go"

// PoolRecord is the durable state of the liquidity pool account.
type PoolRecord struct {
	Assets []solana.PublicKey `json:"assets"`
	Bump   uint8              `json:"bump"`
}

// Clone returns a deep copy of the record.
func (p *PoolRecord) Clone() *PoolRecord {
	if p == nil {
		return nil
	}
	assets := make([]solana.PublicKey, len(p.Assets))
	copy(assets, p.Assets)
	return &PoolRecord{Assets: assets, Bump: p.Bump}
}
