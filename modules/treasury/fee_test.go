package treasury

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFee(t *testing.T) {
	type testcase struct {
		name        string
		amount      uint64
		basisPoints uint16
		cap         uint64
		expected    uint64
	}
	testcases := []testcase{
		{
			name:        "proportional fee below cap",
			amount:      10_000,
			basisPoints: 500,
			cap:         800,
			expected:    500,
		},
		{
			name:        "cap binds",
			amount:      100_000,
			basisPoints: 500,
			cap:         800,
			expected:    800,
		},
		{
			name:        "fee exactly at cap",
			amount:      16_000,
			basisPoints: 500,
			cap:         800,
			expected:    800,
		},
		{
			name:        "zero amount",
			amount:      0,
			basisPoints: 500,
			cap:         800,
			expected:    0,
		},
		{
			name:        "zero basis points",
			amount:      10_000,
			basisPoints: 0,
			cap:         800,
			expected:    0,
		},
		{
			name:        "zero cap",
			amount:      10_000,
			basisPoints: 500,
			cap:         0,
			expected:    0,
		},
		{
			name:        "rounds down",
			amount:      999,
			basisPoints: 10,
			cap:         math.MaxUint64,
			expected:    0, // floor(999 * 10 / 10000)
		},
		{
			name:        "full rate returns amount",
			amount:      12_345,
			basisPoints: 10_000,
			cap:         math.MaxUint64,
			expected:    12_345,
		},
		{
			name:        "no overflow on max amount",
			amount:      math.MaxUint64,
			basisPoints: 10_000,
			cap:         math.MaxUint64,
			expected:    math.MaxUint64,
		},
		{
			name:        "max amount with cap",
			amount:      math.MaxUint64,
			basisPoints: 500,
			cap:         1_000_000,
			expected:    1_000_000,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ComputeFee(tc.amount, tc.basisPoints, tc.cap))
		})
	}
}

func TestComputeFeeMonotonic(t *testing.T) {
	// fee never decreases as amount grows, and never exceeds the cap
	var prev uint64
	for amount := uint64(0); amount <= 1_000_000; amount += 9_973 {
		fee := ComputeFee(amount, 500, 800)
		assert.GreaterOrEqual(t, fee, prev)
		assert.LessOrEqual(t, fee, uint64(800))
		prev = fee
	}
}
