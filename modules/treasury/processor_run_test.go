package treasury

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledger"
	treasurymemory "github.com/treasury-network/treasury-engine/modules/treasury/repository/memory"
)

const (
	testProgram      = ledger.Address("TokenProgram1111111111111111111111111111111")
	testMint         = ledger.Address("mint-account")
	testSource       = ledger.Address("source-account")
	testDestination  = ledger.Address("destination-account")
	testFeeCollector = ledger.Address("fee-collector-account")
	testBurnAccount  = ledger.Address("burn-account")
)

// testClock pins the run to Q3 2026.
var testClock = time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)

func testAsset() AssetConfig {
	return AssetConfig{
		Metadata: ledger.Metadata{
			Name:   "Treasury Token",
			Symbol: "TRS",
		},
		Decimals:         9,
		FeeBasisPoints:   500,
		FeeCap:           800,
		BurnRate:         decimal.RequireFromString("0.025"),
		BurnStartQuarter: 1,
		TransferAmount:   10_000,
		MintAmount:       100_000,
	}
}

func testAccounts(candidates ...ledger.Address) Accounts {
	return Accounts{
		Mint:               testMint,
		Source:             testSource,
		Destination:        testDestination,
		FeeCollector:       testFeeCollector,
		BurnAccount:        testBurnAccount,
		WithdrawCandidates: candidates,
		OwnerProgram:       testProgram,
	}
}

func testAuthorities(t *testing.T) Authorities {
	t.Helper()
	newKeypair := func() *ledger.Keypair {
		keypair, err := ledger.NewKeypair()
		require.NoError(t, err)
		return keypair
	}
	return Authorities{
		Mint:     newKeypair(),
		Transfer: newKeypair(),
		Withdraw: newKeypair(),
		Burn:     newKeypair(),
		Funding:  newKeypair(),
	}
}

func newTestSimulator(t *testing.T, asset AssetConfig) *ledger.Simulator {
	t.Helper()
	simulator := ledger.NewSimulator(testProgram)
	_, err := simulator.InitializeMint(context.Background(), ledger.MintInit{
		Mint:           testMint,
		Decimals:       asset.Decimals,
		FeeBasisPoints: asset.FeeBasisPoints,
		FeeCap:         asset.FeeCap,
		Metadata:       asset.Metadata,
	}, nil)
	require.NoError(t, err)
	return simulator
}

func stageByName(t *testing.T, report *entity.RunReport, stage entity.Stage) entity.StageOutcome {
	t.Helper()
	for _, outcome := range report.Stages {
		if outcome.Stage == stage {
			return outcome
		}
	}
	t.Fatalf("stage %s not found in report", stage)
	return entity.StageOutcome{}
}

func TestProcessorRunFullSequence(t *testing.T) {
	ctx := context.Background()
	asset := testAsset()
	accounts := testAccounts("candidate-1", "candidate-2")

	simulator := newTestSimulator(t, asset)
	simulator.SeedAccount(testSource, testProgram, 0, 0)
	simulator.SeedAccount(testDestination, testProgram, 0, 0)
	simulator.SeedAccount(testFeeCollector, testProgram, 0, 5)
	simulator.SeedAccount(testBurnAccount, testProgram, 20_000_000_000_000, 0)
	simulator.SeedAccount("candidate-1", testProgram, 0, 42)
	simulator.SeedAccount("candidate-2", testProgram, 0, 0)

	repo := treasurymemory.NewRepository()
	processor, err := NewProcessor(asset, accounts, testAuthorities(t), simulator, repo, QuarterTimezoneUTC,
		WithClock(func() time.Time { return testClock }),
	)
	require.NoError(t, err)

	report, err := processor.Run(ctx)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, entity.RunStatusSucceeded, report.Status)
	assert.Equal(t, 2026, report.Year)
	assert.Equal(t, 3, report.Quarter)
	require.Len(t, report.Stages, 5)

	minting := stageByName(t, report, entity.StageMinting)
	assert.Equal(t, entity.StageStatusSucceeded, minting.Status)
	assert.Equal(t, uint64(100_000), minting.Amount)
	assert.NotEmpty(t, minting.TxSignature)

	transferring := stageByName(t, report, entity.StageTransferring)
	assert.Equal(t, entity.StageStatusSucceeded, transferring.Status)
	assert.Equal(t, uint64(10_000), transferring.Amount)
	assert.Equal(t, uint64(500), transferring.Fee)

	withdrawing := stageByName(t, report, entity.StageWithdrawing)
	assert.Equal(t, entity.StageStatusSucceeded, withdrawing.Status)
	assert.Equal(t, "1 accounts", withdrawing.Reason)

	harvesting := stageByName(t, report, entity.StageHarvesting)
	assert.Equal(t, entity.StageStatusSucceeded, harvesting.Status)
	assert.Equal(t, uint64(5), harvesting.Amount)

	burn := stageByName(t, report, entity.StageBurnGate)
	assert.Equal(t, entity.StageStatusSucceeded, burn.Status)
	assert.Equal(t, uint64(500_000_000_000), burn.Amount)

	// ledger effects
	sourceBalance, err := simulator.GetBalance(ctx, testSource)
	require.NoError(t, err)
	assert.Equal(t, uint64(90_000), sourceBalance)

	destSnapshot, err := simulator.GetAccount(ctx, testDestination)
	require.NoError(t, err)
	// transfer net of fee plus withheld withdrawn from candidate-1
	assert.Equal(t, uint64(9_500+42), destSnapshot.Balance)
	assert.Equal(t, uint64(500), destSnapshot.WithheldAmount)

	// the burn exceeds the minted supply, so supply clamps at zero
	assert.Equal(t, uint64(0), simulator.Supply(testMint))

	burnBalance, err := simulator.GetBalance(ctx, testBurnAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(20_000_000_000_000-500_000_000_000), burnBalance)

	// report persisted with an id
	stored, err := repo.GetRunReport(ctx, report.Id)
	require.NoError(t, err)
	assert.Equal(t, report.Status, stored.Status)

	// burn marker persisted for the quarter
	record, err := repo.GetBurnRecord(ctx, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000_000_000), record.Amount)
}

func TestProcessorRunInsufficientBalanceSkips(t *testing.T) {
	ctx := context.Background()
	asset := testAsset()
	asset.MintAmount = 1_000
	accounts := testAccounts()

	simulator := newTestSimulator(t, asset)
	simulator.SeedAccount(testSource, testProgram, 5_000, 0)
	simulator.SeedAccount(testDestination, testProgram, 0, 0)
	simulator.SeedAccount(testFeeCollector, testProgram, 0, 0)
	simulator.SeedAccount(testBurnAccount, testProgram, 0, 0)

	repo := treasurymemory.NewRepository()
	processor, err := NewProcessor(asset, accounts, testAuthorities(t), simulator, repo, QuarterTimezoneUTC,
		WithClock(func() time.Time { return testClock }),
	)
	require.NoError(t, err)

	report, err := processor.Run(ctx)
	require.NoError(t, err)

	// 5000 + 1000 minted < 10000: the transfer is skipped, not failed, and
	// the run continues through the remaining stages
	assert.Equal(t, entity.RunStatusSucceeded, report.Status)
	require.Len(t, report.Stages, 5)

	transferring := stageByName(t, report, entity.StageTransferring)
	assert.Equal(t, entity.StageStatusSkipped, transferring.Status)
	assert.Equal(t, "insufficient balance", transferring.Reason)

	withdrawing := stageByName(t, report, entity.StageWithdrawing)
	assert.Equal(t, entity.StageStatusSkipped, withdrawing.Status)
	assert.Equal(t, "nothing to withdraw", withdrawing.Reason)

	harvesting := stageByName(t, report, entity.StageHarvesting)
	assert.Equal(t, entity.StageStatusSkipped, harvesting.Status)
	assert.Equal(t, "nothing to harvest", harvesting.Reason)

	burn := stageByName(t, report, entity.StageBurnGate)
	assert.Equal(t, entity.StageStatusSkipped, burn.Status)
	assert.Equal(t, "nothing to burn", burn.Reason)
}

func TestProcessorRunHaltsOnFailure(t *testing.T) {
	ctx := context.Background()
	asset := testAsset()
	accounts := testAccounts()

	// destination account never created: the transfer submit fails
	simulator := newTestSimulator(t, asset)
	simulator.SeedAccount(testSource, testProgram, 0, 0)

	repo := treasurymemory.NewRepository()
	processor, err := NewProcessor(asset, accounts, testAuthorities(t), simulator, repo, QuarterTimezoneUTC,
		WithClock(func() time.Time { return testClock }),
	)
	require.NoError(t, err)

	report, err := processor.Run(ctx)
	require.NoError(t, err)

	// the failed stage halts the run but the partial outcomes are kept
	assert.Equal(t, entity.RunStatusFailed, report.Status)
	require.Len(t, report.Stages, 2)
	assert.Equal(t, entity.StageStatusSucceeded, report.Stages[0].Status)
	assert.Equal(t, entity.StageMinting, report.Stages[0].Stage)
	assert.Equal(t, entity.StageStatusFailed, report.Stages[1].Status)
	assert.Equal(t, entity.StageTransferring, report.Stages[1].Stage)

	// the failed report is persisted too
	stored, err := repo.GetRunReport(ctx, report.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusFailed, stored.Status)
}

func TestProcessorRunBurnGateAlreadyBurned(t *testing.T) {
	ctx := context.Background()
	asset := testAsset()
	accounts := testAccounts()

	simulator := newTestSimulator(t, asset)
	simulator.SeedAccount(testSource, testProgram, 0, 0)
	simulator.SeedAccount(testDestination, testProgram, 0, 0)
	simulator.SeedAccount(testFeeCollector, testProgram, 0, 0)
	simulator.SeedAccount(testBurnAccount, testProgram, 1_000_000, 0)

	repo := treasurymemory.NewRepository()
	require.NoError(t, repo.RecordBurn(ctx, entity.BurnRecord{
		Year:        2026,
		Quarter:     3,
		Amount:      123,
		TxSignature: "sim-prior",
		BurnedAt:    testClock.AddDate(0, 0, -7),
	}))

	processor, err := NewProcessor(asset, accounts, testAuthorities(t), simulator, repo, QuarterTimezoneUTC,
		WithClock(func() time.Time { return testClock }),
	)
	require.NoError(t, err)

	report, err := processor.Run(ctx)
	require.NoError(t, err)

	burn := stageByName(t, report, entity.StageBurnGate)
	assert.Equal(t, entity.StageStatusSkipped, burn.Status)
	assert.Equal(t, "already burned this quarter", burn.Reason)

	// burn balance untouched
	balance, err := simulator.GetBalance(ctx, testBurnAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), balance)
}

func TestProcessorRunBurnGateBeforeWindow(t *testing.T) {
	ctx := context.Background()
	asset := testAsset()
	asset.BurnStartQuarter = 4
	accounts := testAccounts()

	simulator := newTestSimulator(t, asset)
	simulator.SeedAccount(testSource, testProgram, 0, 0)
	simulator.SeedAccount(testDestination, testProgram, 0, 0)
	simulator.SeedAccount(testFeeCollector, testProgram, 0, 0)
	simulator.SeedAccount(testBurnAccount, testProgram, 1_000_000, 0)

	repo := treasurymemory.NewRepository()
	processor, err := NewProcessor(asset, accounts, testAuthorities(t), simulator, repo, QuarterTimezoneUTC,
		WithClock(func() time.Time { return testClock }),
	)
	require.NoError(t, err)

	report, err := processor.Run(ctx)
	require.NoError(t, err)

	burn := stageByName(t, report, entity.StageBurnGate)
	assert.Equal(t, entity.StageStatusSkipped, burn.Status)
	assert.Equal(t, "before burn window", burn.Reason)

	// no burn marker recorded for a skipped burn
	_, err = repo.GetBurnRecord(ctx, 2026, 3)
	assert.Error(t, err)
}

// stalledGateway never answers: every lookup blocks until the per-call
// deadline expires.
type stalledGateway struct {
	ledger.Gateway
}

func (stalledGateway) AccountExists(ctx context.Context, _ ledger.Address) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func TestProcessorRunGatewayTimeout(t *testing.T) {
	ctx := context.Background()

	repo := treasurymemory.NewRepository()
	processor, err := NewProcessor(testAsset(), testAccounts(), testAuthorities(t), stalledGateway{}, repo, QuarterTimezoneUTC,
		WithClock(func() time.Time { return testClock }),
		WithCallTimeout(20*time.Millisecond),
	)
	require.NoError(t, err)

	report, err := processor.Run(ctx)
	require.NoError(t, err)

	// an expired gateway call fails the stage with reason "timeout" and
	// halts the run
	assert.Equal(t, entity.RunStatusFailed, report.Status)
	require.Len(t, report.Stages, 1)
	assert.Equal(t, entity.StageMinting, report.Stages[0].Stage)
	assert.Equal(t, entity.StageStatusFailed, report.Stages[0].Status)
	assert.Equal(t, "timeout", report.Stages[0].Reason)
}

func TestNewProcessorRejectsInvalidConfig(t *testing.T) {
	simulator := ledger.NewSimulator(testProgram)
	repo := treasurymemory.NewRepository()
	authorities := testAuthorities(t)

	t.Run("invalid burn rate", func(t *testing.T) {
		asset := testAsset()
		asset.BurnRate = decimal.RequireFromString("1.5")
		_, err := NewProcessor(asset, testAccounts(), authorities, simulator, repo, QuarterTimezoneUTC)
		assert.Error(t, err)
	})

	t.Run("missing accounts", func(t *testing.T) {
		accounts := testAccounts()
		accounts.Mint = ""
		_, err := NewProcessor(testAsset(), accounts, authorities, simulator, repo, QuarterTimezoneUTC)
		assert.Error(t, err)
	})

	t.Run("missing authority", func(t *testing.T) {
		partial := authorities
		partial.Burn = nil
		_, err := NewProcessor(testAsset(), testAccounts(), partial, simulator, repo, QuarterTimezoneUTC)
		assert.Error(t, err)
	})

	t.Run("unsupported timezone", func(t *testing.T) {
		_, err := NewProcessor(testAsset(), testAccounts(), authorities, simulator, repo, QuarterTimezone("pst"))
		assert.Error(t, err)
	})
}
