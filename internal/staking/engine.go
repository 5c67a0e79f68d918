package staking

import (
	"encoding/hex"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"stakeswap/internal/address"
	"stakeswap/internal/ledger"
	"stakeswap/internal/model"
	"stakeswap/internal/pool"
	"stakeswap/internal/scheduler"
	"stakeswap/internal/token"
)

const (
	// StakeInfoSpace is the stake record account size: discriminator, tick, flag, padding.
	StakeInfoSpace = 8 + 16
	maxTaskIDLen   = 32
)

// Engine runs the stake/unstake state machine. It never touches the scheduler;
// scheduling is returned to the caller as intents.
type Engine struct {
	ledger  *ledger.Ledger
	deriver *address.Deriver
	pools   *pool.Service
	policy  pool.Policy
	stakes  map[solana.PublicKey]model.StakeRecord
	logger  *zap.Logger
}

func NewEngine(l *ledger.Ledger, deriver *address.Deriver, pools *pool.Service, policy pool.Policy, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		ledger:  l,
		deriver: deriver,
		pools:   pools,
		policy:  policy,
		stakes:  make(map[solana.PublicKey]model.StakeRecord),
		logger:  logger,
	}
}

// InitializeStaking opens the reward vault for mint. Repeating it is a no-op.
func (e *Engine) InitializeStaking(mint solana.PublicKey, payer address.Authority) (solana.PublicKey, error) {
	vault, err := e.deriver.Vault()
	if err != nil {
		return solana.PublicKey{}, err
	}
	created, err := e.ledger.OpenDerivedRecord(vault.Address(), vault, mint, payer)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("open reward vault: %w", err)
	}
	if created {
		e.logger.Info("reward vault created",
			zap.String("vault", vault.Address().String()),
			zap.String("mint", mint.String()),
		)
	}
	return vault.Address(), nil
}

// StakedMint returns the mint held by the reward vault.
func (e *Engine) StakedMint() (solana.PublicKey, error) {
	vault, err := e.deriver.Vault()
	if err != nil {
		return solana.PublicKey{}, err
	}
	rec, err := e.ledger.Record(vault.Address())
	if err != nil {
		return solana.PublicKey{}, ErrNotInitialized
	}
	return rec.Mint, nil
}

// FundVault moves amount minor units from the admin's associated record into the vault.
func (e *Engine) FundVault(admin solana.PublicKey, amount uint64) error {
	mint, err := e.StakedMint()
	if err != nil {
		return err
	}
	vault, err := e.deriver.Vault()
	if err != nil {
		return err
	}
	from, err := address.AssociatedRecord(admin, mint)
	if err != nil {
		return err
	}
	if err := e.ledger.Transfer(from, vault.Address(), amount, address.Signer(admin)); err != nil {
		return fmt.Errorf("fund reward vault: %w", err)
	}
	return nil
}

// StakeRequest locks Amount whole units of the staked mint for User.
type StakeRequest struct {
	User   solana.PublicKey
	Amount uint64
	// TaskID labels the maintenance task; empty uses the user's default thread id.
	TaskID string
}

// Stake moves the user's principal into their stake balance record and returns
// the intent scheduling the recurring auto-fund task.
func (e *Engine) Stake(poolRec *model.PoolRecord, req StakeRequest, tick uint64) (scheduler.Intent, error) {
	if e.stakes[req.User].IsStaked {
		return scheduler.Intent{}, ErrAlreadyStaked
	}
	if req.Amount == 0 {
		return scheduler.Intent{}, ErrNoTokens
	}
	if poolRec == nil {
		return scheduler.Intent{}, pool.ErrPoolNotCreated
	}
	label, err := taskLabel(req)
	if err != nil {
		return scheduler.Intent{}, err
	}

	mint, err := e.StakedMint()
	if err != nil {
		return scheduler.Intent{}, err
	}
	m, err := e.ledger.Mint(mint)
	if err != nil {
		return scheduler.Intent{}, err
	}
	amount, err := token.ScaleAmount(req.Amount, m.Decimals)
	if err != nil {
		return scheduler.Intent{}, err
	}

	signer := address.Signer(req.User)
	info, err := e.deriver.StakeInfo(req.User)
	if err != nil {
		return scheduler.Intent{}, err
	}
	if !e.ledger.Allocated(info.Address()) {
		if err := e.ledger.Allocate(info.Address(), StakeInfoSpace, signer); err != nil {
			return scheduler.Intent{}, fmt.Errorf("allocate stake info: %w", err)
		}
	}
	stakeCap, err := e.deriver.StakeBalance(req.User)
	if err != nil {
		return scheduler.Intent{}, err
	}
	if _, err := e.ledger.OpenDerivedRecord(stakeCap.Address(), stakeCap, mint, signer); err != nil {
		return scheduler.Intent{}, fmt.Errorf("open stake record: %w", err)
	}
	userRec, err := address.AssociatedRecord(req.User, mint)
	if err != nil {
		return scheduler.Intent{}, err
	}
	if err := e.ledger.Transfer(userRec, stakeCap.Address(), amount, signer); err != nil {
		return scheduler.Intent{}, fmt.Errorf("lock stake: %w", err)
	}

	task, err := e.autoFundTask(req.User, mint, stakeCap.Address(), amount, label, tick)
	if err != nil {
		return scheduler.Intent{}, err
	}

	e.stakes[req.User] = model.StakeRecord{LockedSince: tick, IsStaked: true}
	e.logger.Info("staked",
		zap.String("user", req.User.String()),
		zap.Uint64("amount", amount),
		zap.Uint64("tick", tick),
	)
	return scheduler.Schedule(task), nil
}

func (e *Engine) autoFundTask(user, mint, source solana.PublicKey, staked uint64, label string, tick uint64) (model.Task, error) {
	poolCap, err := e.pools.Capability()
	if err != nil {
		return model.Task{}, err
	}
	poolBalance, err := e.pools.Balance(mint)
	if err != nil {
		return model.Task{}, err
	}
	instruction, err := scheduler.EncodeFund(scheduler.FundInstruction{
		Pool:   poolCap.Address(),
		Mint:   mint,
		Source: source,
		Payer:  user,
		Amount: e.policy.AutoFundAmount(poolBalance),
	})
	if err != nil {
		return model.Task{}, err
	}
	thread, err := e.deriver.Thread(user)
	if err != nil {
		return model.Task{}, err
	}
	delay := e.policy.TriggerDelay(poolBalance, staked)
	return model.Task{
		ID:          thread.Address(),
		Owner:       user,
		Label:       label,
		Instruction: instruction,
		TriggerTick: tick + delay,
		Interval:    delay,
	}, nil
}

func taskLabel(req StakeRequest) (string, error) {
	if req.TaskID == "" {
		return hex.EncodeToString(address.ThreadID(req.User)), nil
	}
	if len(req.TaskID) > maxTaskIDLen {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidTaskID, maxTaskIDLen)
	}
	return req.TaskID, nil
}

// Payout is what an unstake returned to the user.
type Payout struct {
	Reward    uint64 `json:"reward"`
	Principal uint64 `json:"principal"`
}

// Unstake pays the flat per-tick reward from the vault, returns the principal and
// returns the intent cancelling the user's maintenance task.
func (e *Engine) Unstake(user solana.PublicKey, tick uint64) (Payout, scheduler.Intent, error) {
	rec := e.stakes[user]
	if !rec.IsStaked {
		return Payout{}, scheduler.Intent{}, ErrNotStaked
	}
	if tick < rec.LockedSince {
		return Payout{}, scheduler.Intent{}, fmt.Errorf("%w: tick %d, locked since %d", ErrClockRegressed, tick, rec.LockedSince)
	}

	mint, err := e.StakedMint()
	if err != nil {
		return Payout{}, scheduler.Intent{}, err
	}
	m, err := e.ledger.Mint(mint)
	if err != nil {
		return Payout{}, scheduler.Intent{}, err
	}
	reward, err := token.ScaleAmount(tick-rec.LockedSince, m.Decimals)
	if err != nil {
		return Payout{}, scheduler.Intent{}, err
	}

	vault, err := e.deriver.Vault()
	if err != nil {
		return Payout{}, scheduler.Intent{}, err
	}
	stakeCap, err := e.deriver.StakeBalance(user)
	if err != nil {
		return Payout{}, scheduler.Intent{}, err
	}
	userRec, err := address.AssociatedRecord(user, mint)
	if err != nil {
		return Payout{}, scheduler.Intent{}, err
	}

	if err := e.ledger.Transfer(vault.Address(), userRec, reward, vault.Authority()); err != nil {
		return Payout{}, scheduler.Intent{}, fmt.Errorf("pay reward: %w", err)
	}
	principal := e.ledger.Balance(stakeCap.Address())
	if err := e.ledger.Transfer(stakeCap.Address(), userRec, principal, stakeCap.Authority()); err != nil {
		return Payout{}, scheduler.Intent{}, fmt.Errorf("return principal: %w", err)
	}

	thread, err := e.deriver.Thread(user)
	if err != nil {
		return Payout{}, scheduler.Intent{}, err
	}

	e.stakes[user] = model.StakeRecord{LockedSince: tick, IsStaked: false}
	e.logger.Info("unstaked",
		zap.String("user", user.String()),
		zap.Uint64("reward", reward),
		zap.Uint64("principal", principal),
		zap.Uint64("tick", tick),
	)
	return Payout{Reward: reward, Principal: principal}, scheduler.Cancel(thread.Address()), nil
}

// StakeRecord returns the stake record of user.
func (e *Engine) StakeRecord(user solana.PublicKey) (model.StakeRecord, bool) {
	rec, ok := e.stakes[user]
	return rec, ok
}

// StakeBalance returns the principal currently locked by user.
func (e *Engine) StakeBalance(user solana.PublicKey) (uint64, error) {
	stakeCap, err := e.deriver.StakeBalance(user)
	if err != nil {
		return 0, err
	}
	return e.ledger.Balance(stakeCap.Address()), nil
}

// Export returns the stake records keyed by base58 user address.
func (e *Engine) Export() map[string]model.StakeRecord {
	out := make(map[string]model.StakeRecord, len(e.stakes))
	for user, rec := range e.stakes {
		out[user.String()] = rec
	}
	return out
}

// Import replaces the stake records.
func (e *Engine) Import(stakes map[string]model.StakeRecord) error {
	next := make(map[solana.PublicKey]model.StakeRecord, len(stakes))
	for k, rec := range stakes {
		user, err := address.ParseKey(k)
		if err != nil {
			return fmt.Errorf("import stake: %w", err)
		}
		next[user] = rec
	}
	e.stakes = next
	return nil
}
