package staking

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"stakeswap/internal/address"
	"stakeswap/internal/ledger"
	"stakeswap/internal/model"
	"stakeswap/internal/pool"
	"stakeswap/internal/scheduler"
	"stakeswap/internal/token"
)

const decimals = 2

type stakingFixture struct {
	ledger  *ledger.Ledger
	deriver *address.Deriver
	pools   *pool.Service
	engine  *Engine
	poolRec *model.PoolRecord
	admin   solana.PublicKey
	mint    solana.PublicKey
}

func newStakingFixture(t *testing.T, vaultFunding uint64) *stakingFixture {
	t.Helper()
	d, err := address.NewDeriverFromBase58(address.DefaultProgramID)
	require.NoError(t, err)
	l := ledger.New(d)
	pricer, err := pool.NewDecimalPricer(pool.DefaultFeeRate)
	require.NoError(t, err)
	pools := pool.NewService(l, d, pricer, nil)

	f := &stakingFixture{
		ledger:  l,
		deriver: d,
		pools:   pools,
		engine:  NewEngine(l, d, pools, pool.DefaultPolicy(), nil),
		admin:   solana.NewWallet().PublicKey(),
		mint:    solana.NewWallet().PublicKey(),
	}
	admin := address.Signer(f.admin)
	require.NoError(t, l.Airdrop(f.admin, 10_000_000_000))
	require.NoError(t, l.CreateMint(f.mint, f.admin, decimals, admin))

	f.poolRec, err = pools.Create(admin)
	require.NoError(t, err)
	adminRec := f.wallet(t, f.admin, 1_000_000)
	require.NoError(t, pools.Fund(f.poolRec, pool.Deposit{
		Mint:      f.mint,
		From:      adminRec,
		Amount:    100_000,
		Authority: admin,
	}, admin))

	_, err = f.engine.InitializeStaking(f.mint, admin)
	require.NoError(t, err)
	require.NoError(t, f.engine.FundVault(f.admin, vaultFunding))
	return f
}

func (f *stakingFixture) wallet(t *testing.T, owner solana.PublicKey, amount uint64) solana.PublicKey {
	t.Helper()
	addr, err := address.AssociatedRecord(owner, f.mint)
	require.NoError(t, err)
	_, err = f.ledger.OpenRecord(addr, owner, f.mint, address.Signer(f.admin))
	require.NoError(t, err)
	require.NoError(t, f.ledger.MintTo(f.mint, addr, amount, address.Signer(f.admin)))
	return addr
}

func (f *stakingFixture) user(t *testing.T, amount uint64) (solana.PublicKey, solana.PublicKey) {
	t.Helper()
	user := solana.NewWallet().PublicKey()
	require.NoError(t, f.ledger.Airdrop(user, 100_000_000))
	return user, f.wallet(t, user, amount)
}

func TestStakeSchedulesAutoFund(t *testing.T) {
	f := newStakingFixture(t, 100_000)
	user, rec := f.user(t, 10_000)

	intent, err := f.engine.Stake(f.poolRec, StakeRequest{User: user, Amount: 50}, 7)
	require.NoError(t, err)
	require.Equal(t, uint64(5_000), f.ledger.Balance(rec))

	staked, err := f.engine.StakeBalance(user)
	require.NoError(t, err)
	require.Equal(t, uint64(5_000), staked)

	sr, ok := f.engine.StakeRecord(user)
	require.True(t, ok)
	require.Equal(t, model.StakeRecord{LockedSince: 7, IsStaked: true}, sr)

	require.Equal(t, scheduler.IntentSchedule, intent.Kind)
	thread, err := f.deriver.Thread(user)
	require.NoError(t, err)
	require.Equal(t, thread.Address(), intent.Task.ID)
	require.Equal(t, uint64(20), intent.Task.Interval)
	require.Equal(t, uint64(27), intent.Task.TriggerTick)

	ix, err := scheduler.DecodeFund(intent.Task.Instruction)
	require.NoError(t, err)
	stakeCap, err := f.deriver.StakeBalance(user)
	require.NoError(t, err)
	poolCap, err := f.pools.Capability()
	require.NoError(t, err)
	require.Equal(t, stakeCap.Address(), ix.Source)
	require.Equal(t, poolCap.Address(), ix.Pool)
	require.Equal(t, f.mint, ix.Mint)
	require.Equal(t, uint64(1_000), ix.Amount)
}

func TestStakeTwiceFailsWithoutChanges(t *testing.T) {
	f := newStakingFixture(t, 100_000)
	user, rec := f.user(t, 10_000)

	_, err := f.engine.Stake(f.poolRec, StakeRequest{User: user, Amount: 10}, 1)
	require.NoError(t, err)
	before := f.ledger.Export()

	_, err = f.engine.Stake(f.poolRec, StakeRequest{User: user, Amount: 10}, 2)
	require.ErrorIs(t, err, ErrAlreadyStaked)
	require.Equal(t, before, f.ledger.Export())
	require.Equal(t, uint64(9_000), f.ledger.Balance(rec))

	sr, _ := f.engine.StakeRecord(user)
	require.Equal(t, uint64(1), sr.LockedSince)
}

func TestStakeValidation(t *testing.T) {
	f := newStakingFixture(t, 0)
	user, _ := f.user(t, 100)

	_, err := f.engine.Stake(f.poolRec, StakeRequest{User: user, Amount: 0}, 1)
	require.ErrorIs(t, err, ErrNoTokens)

	_, err = f.engine.Stake(f.poolRec, StakeRequest{User: user, Amount: 2}, 1)
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	_, err = f.engine.Stake(f.poolRec, StakeRequest{User: user, Amount: 1, TaskID: "this-task-id-is-far-too-long-to-be-valid"}, 1)
	require.ErrorIs(t, err, ErrInvalidTaskID)

	before := f.ledger.Export()
	staked, err := f.engine.StakeBalance(user)
	require.NoError(t, err)

	_, err = f.engine.Stake(f.poolRec, StakeRequest{User: user, Amount: 1 << 62}, 1)
	require.ErrorIs(t, err, token.ErrArithmeticOverflow)
	require.Equal(t, before, f.ledger.Export())
	_, ok := f.engine.StakeRecord(user)
	require.False(t, ok)
	after, err := f.engine.StakeBalance(user)
	require.NoError(t, err)
	require.Equal(t, staked, after)
}

func TestUnstakeBeforeStake(t *testing.T) {
	f := newStakingFixture(t, 0)
	user, _ := f.user(t, 100)
	_, _, err := f.engine.Unstake(user, 5)
	require.ErrorIs(t, err, ErrNotStaked)
}

func TestRoundTripSameTick(t *testing.T) {
	f := newStakingFixture(t, 0)
	user, rec := f.user(t, 10_000)

	_, err := f.engine.Stake(f.poolRec, StakeRequest{User: user, Amount: 30}, 100)
	require.NoError(t, err)
	payout, intent, err := f.engine.Unstake(user, 100)
	require.NoError(t, err)
	require.Equal(t, Payout{Reward: 0, Principal: 3_000}, payout)
	require.Equal(t, uint64(10_000), f.ledger.Balance(rec))

	thread, err := f.deriver.Thread(user)
	require.NoError(t, err)
	require.Equal(t, scheduler.Cancel(thread.Address()), intent)

	sr, _ := f.engine.StakeRecord(user)
	require.Equal(t, model.StakeRecord{LockedSince: 100, IsStaked: false}, sr)
}

func TestRewardIsFlatPerTick(t *testing.T) {
	f := newStakingFixture(t, 100_000)
	small, smallRec := f.user(t, 1_000)
	large, largeRec := f.user(t, 900_000)

	_, err := f.engine.Stake(f.poolRec, StakeRequest{User: small, Amount: 1}, 10)
	require.NoError(t, err)
	_, err = f.engine.Stake(f.poolRec, StakeRequest{User: large, Amount: 9_000}, 10)
	require.NoError(t, err)

	p1, _, err := f.engine.Unstake(small, 35)
	require.NoError(t, err)
	p2, _, err := f.engine.Unstake(large, 35)
	require.NoError(t, err)

	require.Equal(t, uint64(2_500), p1.Reward)
	require.Equal(t, uint64(2_500), p2.Reward)
	require.Equal(t, uint64(1_000+2_500), f.ledger.Balance(smallRec))
	require.Equal(t, uint64(900_000+2_500), f.ledger.Balance(largeRec))
}

func TestUnstakeEmptyVaultKeepsStake(t *testing.T) {
	f := newStakingFixture(t, 0)
	user, _ := f.user(t, 1_000)
	_, err := f.engine.Stake(f.poolRec, StakeRequest{User: user, Amount: 5}, 1)
	require.NoError(t, err)

	_, _, err = f.engine.Unstake(user, 4)
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	sr, _ := f.engine.StakeRecord(user)
	require.True(t, sr.IsStaked)
}

func TestUnstakeClockRegressed(t *testing.T) {
	f := newStakingFixture(t, 0)
	user, _ := f.user(t, 1_000)
	_, err := f.engine.Stake(f.poolRec, StakeRequest{User: user, Amount: 5}, 9)
	require.NoError(t, err)
	_, _, err = f.engine.Unstake(user, 8)
	require.ErrorIs(t, err, ErrClockRegressed)
}

func TestStakeRequiresVault(t *testing.T) {
	d, err := address.NewDeriverFromBase58(address.DefaultProgramID)
	require.NoError(t, err)
	l := ledger.New(d)
	pricer, err := pool.NewDecimalPricer(pool.DefaultFeeRate)
	require.NoError(t, err)
	e := NewEngine(l, d, pool.NewService(l, d, pricer, nil), pool.DefaultPolicy(), nil)

	_, err = e.Stake(&model.PoolRecord{}, StakeRequest{User: solana.NewWallet().PublicKey(), Amount: 1}, 0)
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestExportImport(t *testing.T) {
	f := newStakingFixture(t, 0)
	user, _ := f.user(t, 1_000)
	_, err := f.engine.Stake(f.poolRec, StakeRequest{User: user, Amount: 1}, 3)
	require.NoError(t, err)

	exported := f.engine.Export()
	other := NewEngine(f.ledger, f.deriver, f.pools, pool.DefaultPolicy(), nil)
	require.NoError(t, other.Import(exported))
	sr, ok := other.StakeRecord(user)
	require.True(t, ok)
	require.True(t, sr.IsStaked)
}
