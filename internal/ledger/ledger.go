package ledger

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"

	"stakeswap/internal/address"
	"stakeswap/internal/model"
)

// Ledger is the balance transfer primitive: it owns every balance record, mint and
// native account, and never forges or destroys supply outside MintTo.
type Ledger struct {
	deriver  *address.Deriver
	accounts map[solana.PublicKey]*model.Account
	records  map[solana.PublicKey]*model.BalanceRecord
	mints    map[solana.PublicKey]*model.Mint
	metadata map[solana.PublicKey]model.TokenMetadata
}

func New(deriver *address.Deriver) *Ledger {
	l := &Ledger{deriver: deriver}
	l.reset()
	return l
}

func (l *Ledger) reset() {
	l.accounts = make(map[solana.PublicKey]*model.Account)
	l.records = make(map[solana.PublicKey]*model.BalanceRecord)
	l.mints = make(map[solana.PublicKey]*model.Mint)
	l.metadata = make(map[solana.PublicKey]model.TokenMetadata)
}

// Airdrop credits lamports to a native account, creating it if needed.
func (l *Ledger) Airdrop(key solana.PublicKey, lamports uint64) error {
	acct := l.account(key)
	if acct.Lamports > math.MaxUint64-lamports {
		return ErrOverflow
	}
	acct.Lamports += lamports
	return nil
}

// Lamports returns the native balance of key.
func (l *Ledger) Lamports(key solana.PublicKey) uint64 {
	if acct, ok := l.accounts[key]; ok {
		return acct.Lamports
	}
	return 0
}

// Space returns the allocated data size of key.
func (l *Ledger) Space(key solana.PublicKey) int {
	if acct, ok := l.accounts[key]; ok {
		return acct.Space
	}
	return 0
}

// Allocated reports whether key has data space allocated.
func (l *Ledger) Allocated(key solana.PublicKey) bool {
	acct, ok := l.accounts[key]
	return ok && acct.Space > 0
}

// Allocate creates a rent-exempt account of space bytes funded by payer.
func (l *Ledger) Allocate(key solana.PublicKey, space int, payer address.Authority) error {
	if l.Allocated(key) {
		return fmt.Errorf("%w: %s", ErrAccountExists, key)
	}
	if space <= 0 {
		return ErrInvalidSpace
	}
	if err := l.fundRent(key, MinimumBalance(space), payer); err != nil {
		return err
	}
	l.account(key).Space = space
	return nil
}

// Realloc grows an allocated account to space bytes, charging payer the rent
// difference. It returns the lamports charged.
func (l *Ledger) Realloc(key solana.PublicKey, space int, payer address.Authority) (uint64, error) {
	acct, ok := l.accounts[key]
	if !ok || acct.Space == 0 {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, key)
	}
	if space < acct.Space {
		return 0, ErrInvalidSpace
	}
	required := MinimumBalance(space)
	var additional uint64
	if required > acct.Lamports {
		additional = required - acct.Lamports
	}
	if err := l.fundRent(key, required, payer); err != nil {
		return 0, err
	}
	acct.Space = space
	return additional, nil
}

// fundRent tops key up to required lamports from payer.
func (l *Ledger) fundRent(key solana.PublicKey, required uint64, payer address.Authority) error {
	current := l.Lamports(key)
	if current >= required {
		return nil
	}
	need := required - current
	if payer.IsDerived() {
		return fmt.Errorf("%w: rent payer must sign", ErrUnauthorized)
	}
	if have := l.Lamports(payer.Key()); have < need {
		return fmt.Errorf("%w: need %d have %d", ErrInsufficientRent, need, have)
	}
	l.accounts[payer.Key()].Lamports -= need
	l.account(key).Lamports += need
	return nil
}

func (l *Ledger) account(key solana.PublicKey) *model.Account {
	acct, ok := l.accounts[key]
	if !ok {
		acct = &model.Account{}
		l.accounts[key] = acct
	}
	return acct
}
