package model

// Snapshot is the complete persisted program state.
type Snapshot struct {
	Tick      uint64                 `json:"tick"`
	Seq       uint64                 `json:"seq"`
	Pool      *PoolRecord            `json:"pool,omitempty"`
	Stakes    map[string]StakeRecord `json:"stakes"`
	Ledger    LedgerState            `json:"ledger"`
	Tasks     []Task                 `json:"tasks"`
	UpdatedAt string                 `json:"updated_at,omitempty"`
}
