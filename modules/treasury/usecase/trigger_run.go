package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
)

// TriggerRun executes one policy run outside of the regular schedule.
func (u *Usecase) TriggerRun(ctx context.Context) (*entity.RunReport, error) {
	report, err := u.runner.Run(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during Run")
	}
	return report, nil
}
