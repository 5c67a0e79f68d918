package pool

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	PricerDecimal = "decimal"
	PricerFloat32 = "float32"
)

// DefaultFeeRate is the swap fee t.
var DefaultFeeRate = decimal.RequireFromString("0.01")

// Quote is the input of a swap price computation, in minor units.
type Quote struct {
	ReceiveBalance  uint64
	ReceiveDecimals uint8
	PayBalance      uint64
	PayDecimals     uint8
	PayAmount       uint64
}

// Pricer computes the minor-unit output r = R·p·γ / (P + p·γ) of a swap.
type Pricer interface {
	Receive(q Quote) (uint64, error)
}

// NewPricer builds the pricer named kind with the given fee rate.
func NewPricer(kind string, feeRate decimal.Decimal) (Pricer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", PricerDecimal:
		return NewDecimalPricer(feeRate)
	case PricerFloat32:
		return NewFloat32Pricer(feeRate)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPricer, kind)
	}
}

func checkFeeRate(feeRate decimal.Decimal) error {
	if feeRate.IsNegative() || feeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: %s", ErrInvalidFeeRate, feeRate)
	}
	return nil
}

// DecimalPricer prices swaps with exact decimal arithmetic. The output is truncated
// toward zero at the receive asset's precision.
type DecimalPricer struct {
	gamma decimal.Decimal
}

func NewDecimalPricer(feeRate decimal.Decimal) (*DecimalPricer, error) {
	if err := checkFeeRate(feeRate); err != nil {
		return nil, err
	}
	return &DecimalPricer{gamma: decimal.NewFromInt(1).Sub(feeRate)}, nil
}

func (d *DecimalPricer) Receive(q Quote) (uint64, error) {
	bigR := nominal(q.ReceiveBalance, q.ReceiveDecimals)
	bigP := nominal(q.PayBalance, q.PayDecimals)
	p := nominal(q.PayAmount, q.PayDecimals)

	pg := p.Mul(d.gamma)
	num := bigR.Mul(pg)
	den := bigP.Add(pg)
	if den.IsZero() {
		return 0, nil
	}
	if num.GreaterThan(bigR.Mul(den)) {
		return 0, ErrInvalidSwapNotEnoughLiquidity
	}

	r, _ := num.QuoRem(den, int32(q.ReceiveDecimals))
	minor := r.Shift(int32(q.ReceiveDecimals)).BigInt()
	if minor.Sign() < 0 || !minor.IsUint64() {
		return 0, ErrInvalidSwapNotEnoughLiquidity
	}
	return minor.Uint64(), nil
}

func nominal(value uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(value), -int32(decimals))
}

// Float32Pricer reproduces the single-precision computation of the reference
// program. Results can differ from DecimalPricer by rounding.
type Float32Pricer struct {
	gamma float32
}

func NewFloat32Pricer(feeRate decimal.Decimal) (*Float32Pricer, error) {
	if err := checkFeeRate(feeRate); err != nil {
		return nil, err
	}
	t := float32(feeRate.InexactFloat64())
	return &Float32Pricer{gamma: float32(1) - t}, nil
}

func (f *Float32Pricer) Receive(q Quote) (uint64, error) {
	bigR := toFloat32(q.ReceiveBalance, q.ReceiveDecimals)
	bigP := toFloat32(q.PayBalance, q.PayDecimals)
	p := toFloat32(q.PayAmount, q.PayDecimals)

	// Explicit conversions round every step to single precision.
	pg := float32(p * f.gamma)
	num := float32(float32(bigR*p) * f.gamma)
	den := float32(bigP + pg)
	r := float32(num / den)

	if r > bigR {
		return 0, ErrInvalidSwapNotEnoughLiquidity
	}
	if math.IsNaN(float64(r)) || r < 0 {
		return 0, nil
	}
	// R itself may have rounded up, so the integer output is checked again.
	out := fromFloat32(r, q.ReceiveDecimals)
	if out > q.ReceiveBalance {
		return 0, ErrInvalidSwapNotEnoughLiquidity
	}
	return out, nil
}

func toFloat32(value uint64, decimals uint8) float32 {
	return float32(value) / float32(math.Pow(10, float64(decimals)))
}

func fromFloat32(value float32, decimals uint8) uint64 {
	scaled := float64(float32(value * float32(math.Pow(10, float64(decimals)))))
	if scaled >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(scaled)
}
