package token

import (
	"errors"
	"math/bits"
)

var ErrArithmeticOverflow = errors.New("token: arithmetic overflow")

// ScaleAmount converts a whole-unit quantity to minor units, quantity * 10^decimals.
func ScaleAmount(quantity uint64, decimals uint8) (uint64, error) {
	factor, err := pow10(decimals)
	if err != nil {
		return 0, err
	}
	hi, lo := bits.Mul64(quantity, factor)
	if hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return lo, nil
}

func pow10(decimals uint8) (uint64, error) {
	factor := uint64(1)
	for i := uint8(0); i < decimals; i++ {
		hi, lo := bits.Mul64(factor, 10)
		if hi != 0 {
			return 0, ErrArithmeticOverflow
		}
		factor = lo
	}
	return factor, nil
}
