package model

import "math/big"

// FormatAmount renders minor units as a real quantity using the mint decimals.
func FormatAmount(value uint64, decimals uint8) string {
	v := new(big.Int).SetUint64(value)
	if decimals == 0 {
		return v.String()
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Rat).SetFrac(v, denom).FloatString(int(decimals))
}
