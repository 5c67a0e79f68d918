package pool

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"stakeswap/internal/address"
	"stakeswap/internal/model"
)

const (
	// PoolSpace is the initial pool account size: discriminator, empty vec length, bump.
	PoolSpace = 8 + 4 + 1
	// AssetKeySize is the registry growth per asset.
	AssetKeySize = 32
)

// Contains reports whether mint is registered.
func Contains(rec *model.PoolRecord, mint solana.PublicKey) bool {
	for _, asset := range rec.Assets {
		if asset.Equals(mint) {
			return true
		}
	}
	return false
}

// CheckAssetKey fails with ErrInvalidAssetKey when mint is not registered.
func CheckAssetKey(rec *model.PoolRecord, mint solana.PublicKey) error {
	if !Contains(rec, mint) {
		return fmt.Errorf("%w: %s", ErrInvalidAssetKey, mint)
	}
	return nil
}

// Resize grows the pool account by extra bytes, charging payer the rent difference.
func (s *Service) Resize(extra int, payer address.Authority) error {
	pc, err := s.Capability()
	if err != nil {
		return err
	}
	space := s.ledger.Space(pc.Address()) + extra
	paid, err := s.ledger.Realloc(pc.Address(), space, payer)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAssetRegistration, err)
	}
	s.logger.Debug("pool resized",
		zap.Int("space", space),
		zap.Uint64("rent_paid", paid),
	)
	return nil
}

// AddAsset registers mint, resizing the pool account first. Registered mints are a no-op.
func (s *Service) AddAsset(rec *model.PoolRecord, mint solana.PublicKey, payer address.Authority) error {
	if Contains(rec, mint) {
		return nil
	}
	if err := s.Resize(AssetKeySize, payer); err != nil {
		return err
	}
	rec.Assets = append(rec.Assets, mint)
	s.logger.Info("asset registered",
		zap.String("mint", mint.String()),
		zap.Int("assets", len(rec.Assets)),
	)
	return nil
}
