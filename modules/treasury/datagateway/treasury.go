package datagateway

import (
	"context"

	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
)

// TreasuryDataGateway persists run reports and the burn ledger. The engine
// itself is stateless between runs; this is the one exception the design
// calls for, so a re-run cannot double-burn within a quarter.
type TreasuryDataGateway interface {
	// GetBurnRecord returns the burn record for (year, quarter).
	// Returns errs.NotFound if no burn is recorded for that quarter.
	GetBurnRecord(ctx context.Context, year, quarter int) (*entity.BurnRecord, error)

	// RecordBurn stores a confirmed burn for (year, quarter).
	RecordBurn(ctx context.Context, record entity.BurnRecord) error

	// GetBurnRecords returns recorded burns, newest first.
	GetBurnRecords(ctx context.Context, limit, offset int32) ([]*entity.BurnRecord, error)

	// CreateRunReport stores a finished run report and returns it with its
	// assigned id.
	CreateRunReport(ctx context.Context, report *entity.RunReport) (*entity.RunReport, error)

	// GetRunReport returns one run report by id. Returns errs.NotFound if
	// the run does not exist.
	GetRunReport(ctx context.Context, id int64) (*entity.RunReport, error)

	// GetRunReports returns run reports, newest first.
	GetRunReports(ctx context.Context, limit, offset int32) ([]*entity.RunReport, error)

	// CountRunReports returns the number of stored run reports.
	CountRunReports(ctx context.Context) (int64, error)
}
