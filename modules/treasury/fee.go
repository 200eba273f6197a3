package treasury

import (
	"github.com/gaze-network/uint128"
)

// basisPointsDivisor converts basis points to a fraction (1 bp = 0.01%).
const basisPointsDivisor = 10_000

// ComputeFee returns the fee charged on a transfer of amount at the given
// basis-point rate, bounded by cap: min(floor(amount*bp/10000), cap).
//
// The intermediate product is computed in 128 bits so amount*bp cannot
// overflow uint64. The result is monotonic non-decreasing in amount until
// the cap binds, then constant.
func ComputeFee(amount uint64, basisPoints uint16, cap uint64) uint64 {
	fee := uint128.From64(amount).
		Mul64(uint64(basisPoints)).
		Div64(basisPointsDivisor)
	if fee.Cmp64(cap) > 0 {
		return cap
	}
	return fee.Uint64()
}
