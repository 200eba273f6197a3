package treasury

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ComputeBurn returns floor(balance * rate). rate must be in [0, 1);
// AssetConfig validation rejects anything else before a run starts.
//
// decimal keeps the fraction math exact: 0.025 of 20_000_000_000_000 is
// computed without float drift.
func ComputeBurn(balance uint64, rate decimal.Decimal) uint64 {
	burn := decimal.NewFromBigInt(new(big.Int).SetUint64(balance), 0).
		Mul(rate).
		Floor()
	// rate < 1 guarantees the product fits back into uint64
	return burn.BigInt().Uint64()
}
