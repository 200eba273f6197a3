package ledger

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treasury-network/treasury-engine/common/errs"
)

const simProgram = Address("TokenProgram1111111111111111111111111111111")

func newSimWithMint(t *testing.T, mint Address) *Simulator {
	t.Helper()
	sim := NewSimulator(simProgram)
	_, err := sim.InitializeMint(context.Background(), MintInit{
		Mint:           mint,
		Decimals:       9,
		FeeBasisPoints: 500,
		FeeCap:         800,
	}, nil)
	require.NoError(t, err)
	return sim
}

func TestSimulatorInitializeMintConflict(t *testing.T) {
	ctx := context.Background()
	sim := newSimWithMint(t, "mint")

	_, err := sim.InitializeMint(ctx, MintInit{Mint: "mint", Decimals: 9}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ConflictSetting))
}

func TestSimulatorMintTo(t *testing.T) {
	ctx := context.Background()
	sim := newSimWithMint(t, "mint")
	sim.SeedAccount("dest", simProgram, 0, 0)

	confirmation, err := sim.Submit(ctx, NewMintTo("mint", "dest", 1_000), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, confirmation.Signature)
	assert.Positive(t, confirmation.Slot)

	balance, err := sim.GetBalance(ctx, "dest")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), balance)
	assert.Equal(t, uint64(1_000), sim.Supply("mint"))

	_, err = sim.Submit(ctx, NewMintTo("mint", "missing", 1), nil)
	assert.True(t, errors.Is(err, errs.NotFound))
}

func TestSimulatorTransferWithFee(t *testing.T) {
	ctx := context.Background()

	testcases := []struct {
		name          string
		sourceBalance uint64
		amount        uint64
		fee           uint64
		expectedError error
	}{
		{
			name:          "fee withheld at destination",
			sourceBalance: 10_000,
			amount:        10_000,
			fee:           500,
		},
		{
			name:          "insufficient balance",
			sourceBalance: 100,
			amount:        10_000,
			fee:           500,
			expectedError: errs.InsufficientBalance,
		},
		{
			name:          "fee exceeds amount",
			sourceBalance: 10_000,
			amount:        100,
			fee:           500,
			expectedError: errs.InvalidArgument,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			sim := newSimWithMint(t, "mint")
			sim.SeedAccount("source", simProgram, tc.sourceBalance, 0)
			sim.SeedAccount("dest", simProgram, 0, 0)

			_, err := sim.Submit(ctx, NewTransferWithFee("mint", "source", "dest", tc.amount, tc.fee, 9), nil)
			if tc.expectedError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.expectedError))
				return
			}
			require.NoError(t, err)

			snapshot, err := sim.GetAccount(ctx, "dest")
			require.NoError(t, err)
			assert.Equal(t, tc.amount-tc.fee, snapshot.Balance)
			assert.Equal(t, tc.fee, snapshot.WithheldAmount)

			sourceBalance, err := sim.GetBalance(ctx, "source")
			require.NoError(t, err)
			assert.Equal(t, tc.sourceBalance-tc.amount, sourceBalance)
		})
	}
}

func TestSimulatorWithdrawWithheldFeesSkipsMissingSources(t *testing.T) {
	ctx := context.Background()
	sim := newSimWithMint(t, "mint")
	sim.SeedAccount("dest", simProgram, 0, 0)
	sim.SeedAccount("acc-a", simProgram, 0, 40)
	sim.SeedAccount("acc-b", simProgram, 0, 2)

	_, err := sim.Submit(ctx, NewWithdrawWithheldFees("mint", "dest", []Address{"acc-a", "missing", "acc-b"}), nil)
	require.NoError(t, err)

	balance, err := sim.GetBalance(ctx, "dest")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), balance)

	for _, src := range []Address{"acc-a", "acc-b"} {
		withheld, err := sim.GetWithheldFee(ctx, src)
		require.NoError(t, err)
		assert.Zero(t, withheld)
	}
}

func TestSimulatorHarvestToMint(t *testing.T) {
	ctx := context.Background()
	sim := newSimWithMint(t, "mint")
	sim.SeedAccount("fees", simProgram, 0, 77)

	_, err := sim.Submit(ctx, NewHarvestToMint("mint", "fees", 77), nil)
	require.NoError(t, err)

	withheld, err := sim.GetWithheldFee(ctx, "fees")
	require.NoError(t, err)
	assert.Zero(t, withheld)

	_, err = sim.Submit(ctx, NewHarvestToMint("mint", "fees", 1), nil)
	assert.True(t, errors.Is(err, errs.InsufficientBalance))
}

func TestSimulatorBurn(t *testing.T) {
	ctx := context.Background()
	sim := newSimWithMint(t, "mint")
	sim.SeedAccount("burn", simProgram, 0, 0)

	_, err := sim.Submit(ctx, NewMintTo("mint", "burn", 1_000), nil)
	require.NoError(t, err)

	_, err = sim.Submit(ctx, NewBurn("mint", "burn", 400, 9), nil)
	require.NoError(t, err)

	balance, err := sim.GetBalance(ctx, "burn")
	require.NoError(t, err)
	assert.Equal(t, uint64(600), balance)
	assert.Equal(t, uint64(600), sim.Supply("mint"))

	_, err = sim.Submit(ctx, NewBurn("mint", "burn", 10_000, 9), nil)
	assert.True(t, errors.Is(err, errs.InsufficientBalance))
}

func TestSimulatorCreateAccount(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulator(simProgram)

	funding, err := NewKeypair()
	require.NoError(t, err)

	ref, err := sim.CreateAccount(ctx, simProgram, 278, funding)
	require.NoError(t, err)
	assert.NotEmpty(t, ref.Address)
	assert.Equal(t, simProgram, ref.Owner)

	exists, err := sim.AccountExists(ctx, ref.Address)
	require.NoError(t, err)
	assert.True(t, exists)

	snapshot, err := sim.GetAccount(ctx, ref.Address)
	require.NoError(t, err)
	assert.Zero(t, snapshot.Balance)
	assert.Zero(t, snapshot.WithheldAmount)
}

func TestSimulatorGetAccountNotFound(t *testing.T) {
	sim := NewSimulator(simProgram)
	_, err := sim.GetAccount(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.NotFound))

	exists, err := sim.AccountExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}
