package model

// StakeRecord is the durable per-user staking state.
type StakeRecord struct {
	LockedSince uint64 `json:"locked_since"`
	IsStaked    bool   `json:"is_staked"`
}
