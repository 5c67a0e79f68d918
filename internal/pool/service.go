package pool

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"stakeswap/internal/address"
	"stakeswap/internal/ledger"
	"stakeswap/internal/model"
)

// Service implements the liquidity pool operations over the ledger. The pool
// record is passed explicitly to every call.
type Service struct {
	ledger  *ledger.Ledger
	deriver *address.Deriver
	pricer  Pricer
	logger  *zap.Logger
}

func NewService(l *ledger.Ledger, deriver *address.Deriver, pricer Pricer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: l, deriver: deriver, pricer: pricer, logger: logger}
}

// Capability derives the pool's signing identity.
func (s *Service) Capability() (address.Capability, error) {
	return s.deriver.Pool()
}

// Create allocates the pool account and returns an empty record.
func (s *Service) Create(payer address.Authority) (*model.PoolRecord, error) {
	pc, err := s.Capability()
	if err != nil {
		return nil, err
	}
	if s.ledger.Allocated(pc.Address()) {
		return nil, ErrPoolExists
	}
	if err := s.ledger.Allocate(pc.Address(), PoolSpace, payer); err != nil {
		return nil, fmt.Errorf("allocate pool: %w", err)
	}
	s.logger.Info("pool created", zap.String("pool", pc.Address().String()))
	return &model.PoolRecord{Assets: []solana.PublicKey{}, Bump: pc.Bump()}, nil
}

// RecordAddress returns the pool's balance record for mint.
func (s *Service) RecordAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	pc, err := s.Capability()
	if err != nil {
		return solana.PublicKey{}, err
	}
	return address.AssociatedRecord(pc.Address(), mint)
}

// Balance returns the pool's balance of mint.
func (s *Service) Balance(mint solana.PublicKey) (uint64, error) {
	addr, err := s.RecordAddress(mint)
	if err != nil {
		return 0, err
	}
	return s.ledger.Balance(addr), nil
}

// Deposit describes units moving into the pool.
type Deposit struct {
	Mint      solana.PublicKey
	From      solana.PublicKey
	Amount    uint64
	Authority address.Authority
}

// Fund registers the deposit's mint if needed, then moves the deposit into the
// pool's balance record. payer funds registry growth and record rent.
func (s *Service) Fund(rec *model.PoolRecord, dep Deposit, payer address.Authority) error {
	if rec == nil {
		return ErrPoolNotCreated
	}
	pc, err := s.Capability()
	if err != nil {
		return err
	}
	if err := s.AddAsset(rec, dep.Mint, payer); err != nil {
		return err
	}
	to, err := address.AssociatedRecord(pc.Address(), dep.Mint)
	if err != nil {
		return err
	}
	if _, err := s.ledger.OpenDerivedRecord(to, pc, dep.Mint, payer); err != nil {
		return fmt.Errorf("open pool record: %w", err)
	}
	if err := s.ledger.Transfer(dep.From, to, dep.Amount, dep.Authority); err != nil {
		return fmt.Errorf("transfer to pool: %w", err)
	}
	s.logger.Debug("pool funded",
		zap.String("mint", dep.Mint.String()),
		zap.Uint64("amount", dep.Amount),
	)
	return nil
}

// SwapRequest exchanges Amount minor units of Pay for the computed output of Receive.
type SwapRequest struct {
	Receive solana.PublicKey
	Pay     solana.PublicKey
	Amount  uint64
	Payer   solana.PublicKey
}

// SwapResult reports a completed swap.
type SwapResult struct {
	Paid     uint64 `json:"paid"`
	Received uint64 `json:"received"`
}

// Swap prices and settles a two-asset exchange against the pool.
func (s *Service) Swap(rec *model.PoolRecord, req SwapRequest) (SwapResult, error) {
	if req.Amount == 0 {
		return SwapResult{}, ErrInvalidSwapZeroAmount
	}
	if req.Receive.Equals(req.Pay) {
		return SwapResult{}, ErrInvalidSwapMatchingAssets
	}
	if rec == nil {
		return SwapResult{}, ErrPoolNotCreated
	}
	if err := CheckAssetKey(rec, req.Receive); err != nil {
		return SwapResult{}, err
	}
	if err := CheckAssetKey(rec, req.Pay); err != nil {
		return SwapResult{}, err
	}

	pc, err := s.Capability()
	if err != nil {
		return SwapResult{}, err
	}
	receiveMint, err := s.ledger.Mint(req.Receive)
	if err != nil {
		return SwapResult{}, err
	}
	payMint, err := s.ledger.Mint(req.Pay)
	if err != nil {
		return SwapResult{}, err
	}
	poolReceive, err := address.AssociatedRecord(pc.Address(), req.Receive)
	if err != nil {
		return SwapResult{}, err
	}
	poolPay, err := address.AssociatedRecord(pc.Address(), req.Pay)
	if err != nil {
		return SwapResult{}, err
	}

	received, err := s.pricer.Receive(Quote{
		ReceiveBalance:  s.ledger.Balance(poolReceive),
		ReceiveDecimals: receiveMint.Decimals,
		PayBalance:      s.ledger.Balance(poolPay),
		PayDecimals:     payMint.Decimals,
		PayAmount:       req.Amount,
	})
	if err != nil {
		return SwapResult{}, err
	}
	if received == 0 {
		return SwapResult{}, ErrInvalidSwapNotEnoughPay
	}

	payerPay, err := address.AssociatedRecord(req.Payer, req.Pay)
	if err != nil {
		return SwapResult{}, err
	}
	payerReceive, err := address.AssociatedRecord(req.Payer, req.Receive)
	if err != nil {
		return SwapResult{}, err
	}
	signer := address.Signer(req.Payer)
	if _, err := s.ledger.OpenRecord(payerReceive, req.Payer, req.Receive, signer); err != nil {
		return SwapResult{}, fmt.Errorf("open receive record: %w", err)
	}
	if err := s.ledger.Transfer(payerPay, poolPay, req.Amount, signer); err != nil {
		return SwapResult{}, fmt.Errorf("transfer to pool: %w", err)
	}
	if err := s.ledger.Transfer(poolReceive, payerReceive, received, pc.Authority()); err != nil {
		return SwapResult{}, fmt.Errorf("transfer from pool: %w", err)
	}

	s.logger.Info("swap settled",
		zap.String("receive", req.Receive.String()),
		zap.String("pay", req.Pay.String()),
		zap.Uint64("paid", req.Amount),
		zap.Uint64("received", received),
	)
	return SwapResult{Paid: req.Amount, Received: received}, nil
}
