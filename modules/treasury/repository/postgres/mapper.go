package postgres

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
)

type burnRecordModel struct {
	Year        int32
	Quarter     int32
	Amount      int64
	TxSignature string
	BurnedAt    time.Time
}

type runReportModel struct {
	Id         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Year       int32
	Quarter    int32
	Stages     []byte
}

func mapBurnRecordModelToType(src burnRecordModel) *entity.BurnRecord {
	return &entity.BurnRecord{
		Year:        int(src.Year),
		Quarter:     int(src.Quarter),
		Amount:      uint64(src.Amount),
		TxSignature: src.TxSignature,
		BurnedAt:    src.BurnedAt,
	}
}

func mapBurnRecordTypeToModel(src entity.BurnRecord) burnRecordModel {
	return burnRecordModel{
		Year:        int32(src.Year),
		Quarter:     int32(src.Quarter),
		Amount:      int64(src.Amount),
		TxSignature: src.TxSignature,
		BurnedAt:    src.BurnedAt,
	}
}

func mapRunReportModelToType(src runReportModel) (*entity.RunReport, error) {
	var stages []entity.StageOutcome
	if len(src.Stages) > 0 {
		if err := json.Unmarshal(src.Stages, &stages); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal stage outcomes")
		}
	}
	return &entity.RunReport{
		Id:         src.Id,
		StartedAt:  src.StartedAt,
		FinishedAt: src.FinishedAt,
		Status:     entity.RunStatus(src.Status),
		Year:       int(src.Year),
		Quarter:    int(src.Quarter),
		Stages:     stages,
	}, nil
}
