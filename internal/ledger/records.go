package ledger

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"

	"stakeswap/internal/address"
	"stakeswap/internal/model"
)

// CreateMint registers a new mint whose supply is controlled by authority.
func (l *Ledger) CreateMint(mint, authority solana.PublicKey, decimals uint8, payer address.Authority) error {
	if _, ok := l.mints[mint]; ok {
		return fmt.Errorf("%w: %s", ErrMintExists, mint)
	}
	if err := l.Allocate(mint, MintSpace, payer); err != nil {
		return err
	}
	l.mints[mint] = &model.Mint{Address: mint, Authority: authority, Decimals: decimals}
	return nil
}

// Mint returns the descriptor of a mint.
func (l *Ledger) Mint(mint solana.PublicKey) (model.Mint, error) {
	m, ok := l.mints[mint]
	if !ok {
		return model.Mint{}, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	return *m, nil
}

// PutMetadata stores token metadata at addr, allocating the account on first write.
func (l *Ledger) PutMetadata(addr solana.PublicKey, meta model.TokenMetadata, payer address.Authority) error {
	if !l.Allocated(addr) {
		if err := l.Allocate(addr, MetadataSpace, payer); err != nil {
			return err
		}
	}
	l.metadata[addr] = meta
	return nil
}

// Metadata returns the token metadata stored at addr.
func (l *Ledger) Metadata(addr solana.PublicKey) (model.TokenMetadata, bool) {
	meta, ok := l.metadata[addr]
	return meta, ok
}

// OpenRecord creates a signer-owned record if it does not exist yet.
func (l *Ledger) OpenRecord(addr, owner, mint solana.PublicKey, payer address.Authority) (bool, error) {
	return l.openRecord(addr, owner, mint, false, payer)
}

// OpenDerivedRecord creates a record owned by a derived address if it does not exist yet.
func (l *Ledger) OpenDerivedRecord(addr solana.PublicKey, owner address.Capability, mint solana.PublicKey, payer address.Authority) (bool, error) {
	if err := l.deriver.Verify(owner); err != nil {
		return false, err
	}
	return l.openRecord(addr, owner.Address(), mint, true, payer)
}

func (l *Ledger) openRecord(addr, owner, mint solana.PublicKey, derived bool, payer address.Authority) (bool, error) {
	if existing, ok := l.records[addr]; ok {
		if !existing.Owner.Equals(owner) || !existing.Mint.Equals(mint) || existing.DerivedOwner != derived {
			return false, fmt.Errorf("%w: %s", ErrRecordMismatch, addr)
		}
		return false, nil
	}
	if _, err := l.Mint(mint); err != nil {
		return false, err
	}
	if err := l.Allocate(addr, RecordSpace, payer); err != nil {
		return false, err
	}
	l.records[addr] = &model.BalanceRecord{
		Address:      addr,
		Owner:        owner,
		Mint:         mint,
		DerivedOwner: derived,
	}
	return true, nil
}

// Record returns the balance record at addr.
func (l *Ledger) Record(addr solana.PublicKey) (model.BalanceRecord, error) {
	rec, ok := l.records[addr]
	if !ok {
		return model.BalanceRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, addr)
	}
	return *rec, nil
}

// Balance returns the amount held at addr, zero when the record does not exist.
func (l *Ledger) Balance(addr solana.PublicKey) uint64 {
	if rec, ok := l.records[addr]; ok {
		return rec.Amount
	}
	return 0
}

// Transfer atomically moves amount from one record to another.
func (l *Ledger) Transfer(from, to solana.PublicKey, amount uint64, authority address.Authority) error {
	src, ok := l.records[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, from)
	}
	dst, ok := l.records[to]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, to)
	}
	if err := l.authorize(src, authority); err != nil {
		return err
	}
	if !src.Mint.Equals(dst.Mint) {
		return ErrMintMismatch
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: record %s holds %d, need %d", ErrInsufficientFunds, from, src.Amount, amount)
	}
	if from.Equals(to) {
		return nil
	}
	if dst.Amount > math.MaxUint64-amount {
		return ErrOverflow
	}
	src.Amount -= amount
	dst.Amount += amount
	return nil
}

// MintTo creates amount new units of mint into the record at to.
func (l *Ledger) MintTo(mint, to solana.PublicKey, amount uint64, authority address.Authority) error {
	m, ok := l.mints[mint]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	if authority.IsDerived() || !authority.Key().Equals(m.Authority) {
		return fmt.Errorf("%w: mint authority is %s", ErrUnauthorized, m.Authority)
	}
	dst, ok := l.records[to]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, to)
	}
	if !dst.Mint.Equals(mint) {
		return ErrMintMismatch
	}
	if m.Supply > math.MaxUint64-amount || dst.Amount > math.MaxUint64-amount {
		return ErrOverflow
	}
	m.Supply += amount
	dst.Amount += amount
	return nil
}

func (l *Ledger) authorize(rec *model.BalanceRecord, authority address.Authority) error {
	if !authority.Key().Equals(rec.Owner) {
		return fmt.Errorf("%w: %s is owned by %s", ErrUnauthorized, rec.Address, rec.Owner)
	}
	c, derived := authority.Capability()
	if rec.DerivedOwner != derived {
		return fmt.Errorf("%w: %s", ErrUnauthorized, rec.Address)
	}
	if derived {
		if err := l.deriver.Verify(c); err != nil {
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
	}
	return nil
}
