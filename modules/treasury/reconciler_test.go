package treasury

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledger"
)

func TestSelectWithdrawable(t *testing.T) {
	ctx := context.Background()
	program := ledger.Address("TokenProgram1111111111111111111111111111111")
	otherProgram := ledger.Address("OtherProgram1111111111111111111111111111111")

	simulator := ledger.NewSimulator(program)
	simulator.SeedAccount("withheld-a", program, 100, 42)
	simulator.SeedAccount("no-withheld", program, 100, 0)
	simulator.SeedAccount("wrong-owner", otherProgram, 100, 42)
	simulator.SeedAccount("withheld-b", program, 0, 7)

	candidates := []ledger.Address{
		"withheld-a",
		"no-withheld",
		"wrong-owner",
		"missing-account",
		"withheld-b",
	}

	eligible, err := SelectWithdrawable(ctx, simulator, candidates, program)
	require.NoError(t, err)

	// candidate order survives the concurrent fetch
	assert.Equal(t, []ledger.Address{"withheld-a", "withheld-b"}, eligible)
}

func TestSelectWithdrawableEmpty(t *testing.T) {
	ctx := context.Background()
	program := ledger.Address("TokenProgram1111111111111111111111111111111")
	simulator := ledger.NewSimulator(program)

	eligible, err := SelectWithdrawable(ctx, simulator, nil, program)
	require.NoError(t, err)
	assert.Empty(t, eligible)
}

func TestSelectWithdrawableAllMissing(t *testing.T) {
	ctx := context.Background()
	program := ledger.Address("TokenProgram1111111111111111111111111111111")
	simulator := ledger.NewSimulator(program)

	eligible, err := SelectWithdrawable(ctx, simulator, []ledger.Address{"gone-1", "gone-2"}, program)
	require.NoError(t, err)
	assert.Empty(t, eligible)
}
