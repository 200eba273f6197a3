package treasury

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBurn(t *testing.T) {
	type testcase struct {
		name     string
		balance  uint64
		rate     string
		expected uint64
	}
	testcases := []testcase{
		{
			name:     "quarterly burn of 2.5 percent",
			balance:  20_000_000_000_000,
			rate:     "0.025",
			expected: 500_000_000_000,
		},
		{
			name:     "zero balance",
			balance:  0,
			rate:     "0.025",
			expected: 0,
		},
		{
			name:     "zero rate",
			balance:  1_000_000,
			rate:     "0",
			expected: 0,
		},
		{
			name:     "rounds down",
			balance:  3,
			rate:     "0.5",
			expected: 1,
		},
		{
			name:     "burn smaller than one unit",
			balance:  39,
			rate:     "0.025",
			expected: 0,
		},
		{
			name:     "large balance no float drift",
			balance:  999_999_999_999_999_999,
			rate:     "0.1",
			expected: 99_999_999_999_999_999,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			rate, err := decimal.NewFromString(tc.rate)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ComputeBurn(tc.balance, rate))
		})
	}
}
