package archiver

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
)

func TestStageRows(t *testing.T) {
	startedAt := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	report := &entity.RunReport{
		Id:         7,
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(5 * time.Second),
		Status:     entity.RunStatusSucceeded,
		Year:       2026,
		Quarter:    3,
		Stages: []entity.StageOutcome{
			{
				Stage:       entity.StageMinting,
				Status:      entity.StageStatusSucceeded,
				Amount:      100_000,
				TxSignature: "sim-0000000000000001",
			},
			{
				Stage:  entity.StageBurnGate,
				Status: entity.StageStatusSkipped,
				Reason: "before burn window",
			},
		},
	}

	rows := stageRows(report)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(7), rows[0].RunId)
	assert.Equal(t, "succeeded", rows[0].RunStatus)
	assert.Equal(t, int32(2026), rows[0].Year)
	assert.Equal(t, int32(3), rows[0].Quarter)
	assert.Equal(t, startedAt.UnixMilli(), rows[0].StartedAt)
	assert.Equal(t, "minting", rows[0].Stage)
	assert.Equal(t, uint64(100_000), rows[0].Amount)
	assert.Equal(t, "sim-0000000000000001", rows[0].TxSignature)

	assert.Equal(t, "burn_gate", rows[1].Stage)
	assert.Equal(t, "skipped", rows[1].StageStatus)
	assert.Equal(t, "before burn window", rows[1].Reason)
}

func TestStageRowsKeepLargeAmounts(t *testing.T) {
	report := &entity.RunReport{
		Status: entity.RunStatusSucceeded,
		Stages: []entity.StageOutcome{
			{
				Stage:  entity.StageBurnGate,
				Status: entity.StageStatusSucceeded,
				Amount: math.MaxUint64,
				Fee:    math.MaxUint64 - 1,
			},
		},
	}

	rows := stageRows(report)
	require.Len(t, rows, 1)

	// amounts above MaxInt64 must survive the export unchanged
	assert.Equal(t, uint64(math.MaxUint64), rows[0].Amount)
	assert.Equal(t, uint64(math.MaxUint64-1), rows[0].Fee)
}
