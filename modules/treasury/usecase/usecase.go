package usecase

import (
	"context"

	"github.com/treasury-network/treasury-engine/modules/treasury/datagateway"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
)

// Runner executes one full treasury policy run.
type Runner interface {
	Run(ctx context.Context) (*entity.RunReport, error)
}

type Usecase struct {
	treasuryDg datagateway.TreasuryDataGateway
	runner     Runner
}

func New(treasuryDg datagateway.TreasuryDataGateway, runner Runner) *Usecase {
	return &Usecase{
		treasuryDg: treasuryDg,
		runner:     runner,
	}
}
