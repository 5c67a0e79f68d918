package pool

import "errors"

var (
	ErrInvalidSwapZeroAmount         = errors.New("pool: swap amount is zero")
	ErrInvalidSwapMatchingAssets     = errors.New("pool: cannot swap an asset for itself")
	ErrInvalidAssetKey               = errors.New("pool: asset is not registered")
	ErrInvalidSwapNotEnoughLiquidity = errors.New("pool: not enough liquidity")
	ErrInvalidSwapNotEnoughPay       = errors.New("pool: pay amount yields no output")
	ErrInvalidAssetRegistration      = errors.New("pool: cannot fund registry growth")
	ErrPoolExists                    = errors.New("pool: already created")
	ErrPoolNotCreated                = errors.New("pool: not created")
	ErrInvalidFeeRate                = errors.New("pool: fee rate must be in [0, 1)")
	ErrUnknownPricer                 = errors.New("pool: unknown pricer")
)
