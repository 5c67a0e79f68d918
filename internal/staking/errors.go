package staking

import "errors"

var (
	ErrAlreadyStaked  = errors.New("staking: already staked")
	ErrNotStaked      = errors.New("staking: not staked")
	ErrNoTokens       = errors.New("staking: no tokens to stake")
	ErrNotInitialized = errors.New("staking: reward vault not initialized")
	ErrClockRegressed = errors.New("staking: clock is behind stake start")
	ErrInvalidTaskID  = errors.New("staking: invalid task id")
)
