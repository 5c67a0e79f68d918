package program

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"stakeswap/internal/address"
	"stakeswap/internal/model"
)

// Pool returns a copy of the pool record, nil before create_pool.
func (p *Program) Pool() *model.PoolRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.poolRec.Clone()
}

// PoolBalances returns the pool balance of every registered asset.
func (p *Program) PoolBalances() (map[string]uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]uint64)
	if p.poolRec == nil {
		return out, nil
	}
	for _, mint := range p.poolRec.Assets {
		bal, err := p.pools.Balance(mint)
		if err != nil {
			return nil, err
		}
		out[mint.String()] = bal
	}
	return out, nil
}

// StakeRecord returns the stake record of user.
func (p *Program) StakeRecord(user solana.PublicKey) (model.StakeRecord, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.staking.StakeRecord(user)
}

// StakeBalance returns the principal locked by user.
func (p *Program) StakeBalance(user solana.PublicKey) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.staking.StakeBalance(user)
}

// Balance returns owner's balance of mint in its associated record.
func (p *Program) Balance(owner, mint solana.PublicKey) (uint64, error) {
	addr, err := address.AssociatedRecord(owner, mint)
	if err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.Balance(addr), nil
}

// VaultBalance returns the reward vault balance.
func (p *Program) VaultBalance() (uint64, error) {
	vault, err := p.deriver.Vault()
	if err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.Balance(vault.Address()), nil
}

// Lamports returns the native balance of key.
func (p *Program) Lamports(key solana.PublicKey) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.Lamports(key)
}

// Tasks returns the scheduled tasks.
func (p *Program) Tasks() []model.Task {
	return p.sched.Export()
}

// Due returns the tasks whose trigger tick has been reached by the clock.
func (p *Program) Due(ctx context.Context) ([]model.Task, error) {
	now, err := p.clock.Now(ctx)
	if err != nil {
		return nil, err
	}
	return p.sched.Due(now), nil
}

// Tick returns the current clock tick.
func (p *Program) Tick(ctx context.Context) (uint64, error) {
	return p.clock.Now(ctx)
}

// Snapshot returns a copy of the whole program state.
func (p *Program) Snapshot() model.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capture(p.tick, p.seq, nil)
}
