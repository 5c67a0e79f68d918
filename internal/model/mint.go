package model

import "github.com/gagliardetto/solana-go"

// Mint is the identity and precision of a fungible asset.
type Mint struct {
	Address   solana.PublicKey `json:"address"`
	Authority solana.PublicKey `json:"authority"`
	Decimals  uint8            `json:"decimals"`
	Supply    uint64           `json:"supply"`
}

// TokenMetadata captures display metadata for a mint.
type TokenMetadata struct {
	Mint     solana.PublicKey `json:"mint"`
	Name     string           `json:"name"`
	Symbol   string           `json:"symbol"`
	URI      string           `json:"uri"`
	Decimals uint8            `json:"decimals"`
}
