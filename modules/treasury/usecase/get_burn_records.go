package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
)

func (u *Usecase) GetBurnRecords(ctx context.Context, limit, offset int32) ([]*entity.BurnRecord, error) {
	records, err := u.treasuryDg.GetBurnRecords(ctx, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetBurnRecords")
	}
	return records, nil
}

func (u *Usecase) GetBurnRecord(ctx context.Context, year, quarter int) (*entity.BurnRecord, error) {
	record, err := u.treasuryDg.GetBurnRecord(ctx, year, quarter)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetBurnRecord")
	}
	return record, nil
}
