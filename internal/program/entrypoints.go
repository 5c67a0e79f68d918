package program

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"stakeswap/internal/address"
	"stakeswap/internal/model"
	"stakeswap/internal/pool"
	"stakeswap/internal/scheduler"
	"stakeswap/internal/staking"
	"stakeswap/internal/token"
)

// Airdrop credits native lamports to key so it can pay rent.
func (p *Program) Airdrop(ctx context.Context, key solana.PublicKey, lamports uint64) error {
	return p.execute(ctx, "airdrop", key, func(uint64) ([]scheduler.Intent, error) {
		return nil, p.ledger.Airdrop(key, lamports)
	})
}

// InitToken creates mint with payer as authority and writes its metadata.
func (p *Program) InitToken(ctx context.Context, payer, mint solana.PublicKey, meta token.Metadata) (solana.PublicKey, error) {
	var metaAddr solana.PublicKey
	err := p.execute(ctx, "init_token", payer, func(uint64) ([]scheduler.Intent, error) {
		var err error
		metaAddr, err = token.InitToken(p.ledger, payer, mint, meta)
		return nil, err
	})
	return metaAddr, err
}

// MintTokens mints quantity whole units of mint to recipient and returns the minor-unit amount.
func (p *Program) MintTokens(ctx context.Context, authority, recipient, mint solana.PublicKey, quantity uint64) (uint64, error) {
	var minted uint64
	err := p.execute(ctx, "mint_tokens", authority, func(uint64) ([]scheduler.Intent, error) {
		var err error
		_, minted, err = token.MintTokens(p.ledger, authority, recipient, mint, quantity)
		return nil, err
	})
	return minted, err
}

// CreatePool allocates the singleton pool.
func (p *Program) CreatePool(ctx context.Context, payer solana.PublicKey) (*model.PoolRecord, error) {
	var rec *model.PoolRecord
	err := p.execute(ctx, "create_pool", payer, func(uint64) ([]scheduler.Intent, error) {
		if p.poolRec != nil {
			return nil, pool.ErrPoolExists
		}
		created, err := p.pools.Create(address.Signer(payer))
		if err != nil {
			return nil, err
		}
		p.poolRec = created
		rec = created.Clone()
		return nil, nil
	})
	return rec, err
}

// FundPool deposits amount minor units of mint from the user's associated record.
func (p *Program) FundPool(ctx context.Context, user, mint solana.PublicKey, amount uint64) error {
	return p.execute(ctx, "fund_pool", user, func(uint64) ([]scheduler.Intent, error) {
		from, err := address.AssociatedRecord(user, mint)
		if err != nil {
			return nil, err
		}
		signer := address.Signer(user)
		return nil, p.pools.Fund(p.poolRec, pool.Deposit{
			Mint:      mint,
			From:      from,
			Amount:    amount,
			Authority: signer,
		}, signer)
	})
}

// Swap pays amount minor units of pay for the computed output of receive.
func (p *Program) Swap(ctx context.Context, payer, receive, pay solana.PublicKey, amount uint64) (pool.SwapResult, error) {
	var res pool.SwapResult
	err := p.execute(ctx, "swap", payer, func(uint64) ([]scheduler.Intent, error) {
		var err error
		res, err = p.pools.Swap(p.poolRec, pool.SwapRequest{
			Receive: receive,
			Pay:     pay,
			Amount:  amount,
			Payer:   payer,
		})
		return nil, err
	})
	return res, err
}

// InitializeStaking opens the reward vault for mint.
func (p *Program) InitializeStaking(ctx context.Context, payer, mint solana.PublicKey) (solana.PublicKey, error) {
	var vault solana.PublicKey
	err := p.execute(ctx, "initialize_staking", payer, func(uint64) ([]scheduler.Intent, error) {
		var err error
		vault, err = p.staking.InitializeStaking(mint, address.Signer(payer))
		return nil, err
	})
	return vault, err
}

// FundRewardVault moves amount minor units from the admin's record into the vault.
func (p *Program) FundRewardVault(ctx context.Context, admin solana.PublicKey, amount uint64) error {
	return p.execute(ctx, "fund_reward_vault", admin, func(uint64) ([]scheduler.Intent, error) {
		return nil, p.staking.FundVault(admin, amount)
	})
}

// Stake locks amount whole units and schedules the user's auto-fund task.
func (p *Program) Stake(ctx context.Context, user solana.PublicKey, amount uint64, taskID string) (model.Task, error) {
	var task model.Task
	err := p.execute(ctx, "stake", user, func(tick uint64) ([]scheduler.Intent, error) {
		intent, err := p.staking.Stake(p.poolRec, staking.StakeRequest{
			User:   user,
			Amount: amount,
			TaskID: taskID,
		}, tick)
		if err != nil {
			return nil, err
		}
		task = intent.Task
		return []scheduler.Intent{intent}, nil
	})
	return task, err
}

// Unstake pays the reward, returns the principal and cancels the auto-fund task.
func (p *Program) Unstake(ctx context.Context, user solana.PublicKey) (staking.Payout, error) {
	var payout staking.Payout
	err := p.execute(ctx, "unstake", user, func(tick uint64) ([]scheduler.Intent, error) {
		var (
			intent scheduler.Intent
			err    error
		)
		payout, intent, err = p.staking.Unstake(user, tick)
		if err != nil {
			return nil, err
		}
		return []scheduler.Intent{intent}, nil
	})
	return payout, err
}

// Dispatch executes a fired auto-fund task as its own invocation.
func (p *Program) Dispatch(ctx context.Context, task model.Task) error {
	ix, err := scheduler.DecodeFund(task.Instruction)
	if err != nil {
		return err
	}
	return p.execute(ctx, "auto_fund", task.Owner, func(uint64) ([]scheduler.Intent, error) {
		stakeCap, err := p.validateTask(task, ix)
		if err != nil {
			return nil, err
		}
		return nil, p.pools.Fund(p.poolRec, pool.Deposit{
			Mint:      ix.Mint,
			From:      ix.Source,
			Amount:    ix.Amount,
			Authority: stakeCap.Authority(),
		}, address.Signer(ix.Payer))
	})
}

func (p *Program) validateTask(task model.Task, ix scheduler.FundInstruction) (address.Capability, error) {
	thread, err := p.deriver.Thread(task.Owner)
	if err != nil {
		return address.Capability{}, err
	}
	if !thread.Address().Equals(task.ID) {
		return address.Capability{}, fmt.Errorf("%w: task id", ErrInvalidTask)
	}
	poolCap, err := p.pools.Capability()
	if err != nil {
		return address.Capability{}, err
	}
	if !poolCap.Address().Equals(ix.Pool) {
		return address.Capability{}, fmt.Errorf("%w: pool", ErrInvalidTask)
	}
	stakeCap, err := p.deriver.StakeBalance(task.Owner)
	if err != nil {
		return address.Capability{}, err
	}
	if !stakeCap.Address().Equals(ix.Source) {
		return address.Capability{}, fmt.Errorf("%w: source", ErrInvalidTask)
	}
	if !ix.Payer.Equals(task.Owner) {
		return address.Capability{}, fmt.Errorf("%w: payer", ErrInvalidTask)
	}
	return stakeCap, nil
}
