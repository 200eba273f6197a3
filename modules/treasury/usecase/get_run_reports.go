package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
	"golang.org/x/sync/errgroup"
)

func (u *Usecase) GetRunReport(ctx context.Context, id int64) (*entity.RunReport, error) {
	report, err := u.treasuryDg.GetRunReport(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetRunReport")
	}
	return report, nil
}

// GetRunReports returns one page of run reports plus the total count.
func (u *Usecase) GetRunReports(ctx context.Context, limit, offset int32) ([]*entity.RunReport, int64, error) {
	var (
		reports []*entity.RunReport
		total   int64
	)
	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		reports, err = u.treasuryDg.GetRunReports(egctx, limit, offset)
		return errors.Wrap(err, "error during GetRunReports")
	})
	eg.Go(func() error {
		var err error
		total, err = u.treasuryDg.CountRunReports(egctx)
		return errors.Wrap(err, "error during CountRunReports")
	})
	if err := eg.Wait(); err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return reports, total, nil
}
