package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"stakeswap/internal/address"
	"stakeswap/internal/ledger"
	"stakeswap/internal/model"
)

const (
	maxNameLen   = 32
	maxSymbolLen = 10
	maxURILen    = 200
)

var ErrInvalidMetadata = errors.New("token: invalid metadata")

// Metadata is the input of InitToken.
type Metadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	URI      string `json:"uri"`
	Decimals uint8  `json:"decimals"`
}

func (m Metadata) validate() error {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidMetadata)
	case len(m.Name) > maxNameLen:
		return fmt.Errorf("%w: name longer than %d bytes", ErrInvalidMetadata, maxNameLen)
	case len(m.Symbol) > maxSymbolLen:
		return fmt.Errorf("%w: symbol longer than %d bytes", ErrInvalidMetadata, maxSymbolLen)
	case len(m.URI) > maxURILen:
		return fmt.Errorf("%w: uri longer than %d bytes", ErrInvalidMetadata, maxURILen)
	}
	return nil
}

// InitToken creates mint with payer as its mint authority and writes its metadata account.
// It returns the metadata account address.
func InitToken(l *ledger.Ledger, payer, mint solana.PublicKey, meta Metadata) (solana.PublicKey, error) {
	if err := meta.validate(); err != nil {
		return solana.PublicKey{}, err
	}
	metaAddr, err := address.MetadataAddress(mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if err := l.CreateMint(mint, payer, meta.Decimals, address.Signer(payer)); err != nil {
		return solana.PublicKey{}, fmt.Errorf("create mint: %w", err)
	}
	record := model.TokenMetadata{
		Mint:     mint,
		Name:     meta.Name,
		Symbol:   meta.Symbol,
		URI:      meta.URI,
		Decimals: meta.Decimals,
	}
	if err := l.PutMetadata(metaAddr, record, address.Signer(payer)); err != nil {
		return solana.PublicKey{}, fmt.Errorf("write metadata: %w", err)
	}
	return metaAddr, nil
}

// MintTokens mints quantity whole units of mint to recipient's associated record,
// opening the record on behalf of authority when needed. It returns the record address
// and the minted minor-unit amount.
func MintTokens(l *ledger.Ledger, authority, recipient, mint solana.PublicKey, quantity uint64) (solana.PublicKey, uint64, error) {
	m, err := l.Mint(mint)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	amount, err := ScaleAmount(quantity, m.Decimals)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	rec, err := address.AssociatedRecord(recipient, mint)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	if _, err := l.OpenRecord(rec, recipient, mint, address.Signer(authority)); err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("open recipient record: %w", err)
	}
	if err := l.MintTo(mint, rec, amount, address.Signer(authority)); err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("mint to: %w", err)
	}
	return rec, amount, nil
}
