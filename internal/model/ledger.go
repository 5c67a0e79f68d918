package model

import "github.com/gagliardetto/solana-go"

// Account is a native account: lamports plus allocated data space.
type Account struct {
	Lamports uint64 `json:"lamports"`
	Space    int    `json:"space"`
}

// BalanceRecord holds a non-negative quantity of one mint.
type BalanceRecord struct {
	Address      solana.PublicKey `json:"address"`
	Owner        solana.PublicKey `json:"owner"`
	Mint         solana.PublicKey `json:"mint"`
	Amount       uint64           `json:"amount"`
	DerivedOwner bool             `json:"derived_owner"`
}

// LedgerState is the exported form of the balance ledger, keyed by base58 address.
type LedgerState struct {
	Accounts map[string]Account       `json:"accounts"`
	Records  map[string]BalanceRecord `json:"records"`
	Mints    map[string]Mint          `json:"mints"`
	Metadata map[string]TokenMetadata `json:"metadata"`
}
