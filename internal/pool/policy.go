package pool

import (
	"fmt"
	"math/big"
)

const (
	DefaultAutoFundBps     = 100
	DefaultMinTriggerDelay = 10
	DefaultMaxTriggerDelay = 1000

	bpsDenominator = 10_000
)

// Policy sizes the recurring auto-fund task scheduled at stake time.
type Policy struct {
	AutoFundBps     uint64
	MinTriggerDelay uint64
	MaxTriggerDelay uint64
}

// DefaultPolicy funds 1% of the pool balance and clamps the delay to [10, 1000] ticks.
func DefaultPolicy() Policy {
	return Policy{
		AutoFundBps:     DefaultAutoFundBps,
		MinTriggerDelay: DefaultMinTriggerDelay,
		MaxTriggerDelay: DefaultMaxTriggerDelay,
	}
}

func (p Policy) Validate() error {
	if p.AutoFundBps > bpsDenominator {
		return fmt.Errorf("auto-fund bps %d exceeds %d", p.AutoFundBps, bpsDenominator)
	}
	if p.MinTriggerDelay == 0 {
		return fmt.Errorf("min trigger delay must be positive")
	}
	if p.MaxTriggerDelay < p.MinTriggerDelay {
		return fmt.Errorf("max trigger delay %d below min %d", p.MaxTriggerDelay, p.MinTriggerDelay)
	}
	return nil
}

// AutoFundAmount is the share of the pool balance each fire deposits.
func (p Policy) AutoFundAmount(poolBalance uint64) uint64 {
	v := new(big.Int).SetUint64(poolBalance)
	v.Mul(v, new(big.Int).SetUint64(p.AutoFundBps))
	v.Quo(v, big.NewInt(bpsDenominator))
	return v.Uint64()
}

// TriggerDelay is the number of ticks between fires: the pool balance per staked
// unit, clamped to the policy bounds.
func (p Policy) TriggerDelay(poolBalance, staked uint64) uint64 {
	delay := p.MaxTriggerDelay
	if staked > 0 {
		delay = poolBalance / staked
	}
	if delay < p.MinTriggerDelay {
		return p.MinTriggerDelay
	}
	if delay > p.MaxTriggerDelay {
		return p.MaxTriggerDelay
	}
	return delay
}
