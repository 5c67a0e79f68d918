package ledger

import (
	"fmt"

	"stakeswap/internal/address"
	"stakeswap/internal/model"
)

// Export returns a deep copy of the ledger state.
func (l *Ledger) Export() model.LedgerState {
	st := model.LedgerState{
		Accounts: make(map[string]model.Account, len(l.accounts)),
		Records:  make(map[string]model.BalanceRecord, len(l.records)),
		Mints:    make(map[string]model.Mint, len(l.mints)),
		Metadata: make(map[string]model.TokenMetadata, len(l.metadata)),
	}
	for k, v := range l.accounts {
		st.Accounts[k.String()] = *v
	}
	for k, v := range l.records {
		st.Records[k.String()] = *v
	}
	for k, v := range l.mints {
		st.Mints[k.String()] = *v
	}
	for k, v := range l.metadata {
		st.Metadata[k.String()] = v
	}
	return st
}

// Import replaces the ledger contents with st.
func (l *Ledger) Import(st model.LedgerState) error {
	l.reset()
	for k, v := range st.Accounts {
		key, err := address.ParseKey(k)
		if err != nil {
			return fmt.Errorf("import account: %w", err)
		}
		acct := v
		l.accounts[key] = &acct
	}
	for k, v := range st.Records {
		key, err := address.ParseKey(k)
		if err != nil {
			return fmt.Errorf("import record: %w", err)
		}
		rec := v
		l.records[key] = &rec
	}
	for k, v := range st.Mints {
		key, err := address.ParseKey(k)
		if err != nil {
			return fmt.Errorf("import mint: %w", err)
		}
		m := v
		l.mints[key] = &m
	}
	for k, v := range st.Metadata {
		key, err := address.ParseKey(k)
		if err != nil {
			return fmt.Errorf("import metadata: %w", err)
		}
		l.metadata[key] = v
	}
	return nil
}
