package postgres

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/treasury-network/treasury-engine/common/errs"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
)

const getBurnRecordSQL = `SELECT "year", "quarter", "amount", "tx_signature", "burned_at" FROM treasury_burns WHERE "year" = $1 AND "quarter" = $2`

func (r *Repository) GetBurnRecord(ctx context.Context, year, quarter int) (*entity.BurnRecord, error) {
	var record burnRecordModel
	err := r.db.QueryRow(ctx, getBurnRecordSQL, year, quarter).
		Scan(&record.Year, &record.Quarter, &record.Amount, &record.TxSignature, &record.BurnedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Join(errs.NotFound, err)
		}
		return nil, errors.Wrap(err, "failed to get burn record")
	}
	return mapBurnRecordModelToType(record), nil
}

const recordBurnSQL = `INSERT INTO treasury_burns ("year", "quarter", "amount", "tx_signature", "burned_at") VALUES ($1, $2, $3, $4, $5)`

func (r *Repository) RecordBurn(ctx context.Context, record entity.BurnRecord) error {
	model := mapBurnRecordTypeToModel(record)
	if _, err := r.db.Exec(ctx, recordBurnSQL, model.Year, model.Quarter, model.Amount, model.TxSignature, model.BurnedAt); err != nil {
		return errors.Wrap(err, "failed to record burn")
	}
	return nil
}

const getBurnRecordsSQL = `SELECT "year", "quarter", "amount", "tx_signature", "burned_at" FROM treasury_burns ORDER BY "year" DESC, "quarter" DESC LIMIT $1 OFFSET $2`

func (r *Repository) GetBurnRecords(ctx context.Context, limit, offset int32) ([]*entity.BurnRecord, error) {
	rows, err := r.db.Query(ctx, getBurnRecordsSQL, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get burn records")
	}
	defer rows.Close()

	records := make([]*entity.BurnRecord, 0)
	for rows.Next() {
		var record burnRecordModel
		if err := rows.Scan(&record.Year, &record.Quarter, &record.Amount, &record.TxSignature, &record.BurnedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan burn record")
		}
		records = append(records, mapBurnRecordModelToType(record))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return records, nil
}

const createRunReportSQL = `INSERT INTO treasury_runs ("started_at", "finished_at", "status", "year", "quarter", "stages") VALUES ($1, $2, $3, $4, $5, $6) RETURNING "id"`

func (r *Repository) CreateRunReport(ctx context.Context, report *entity.RunReport) (*entity.RunReport, error) {
	stages, err := json.Marshal(report.Stages)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal stage outcomes")
	}

	stored := *report
	err = r.db.QueryRow(ctx, createRunReportSQL,
		report.StartedAt, report.FinishedAt, string(report.Status), report.Year, report.Quarter, stages,
	).Scan(&stored.Id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create run report")
	}
	return &stored, nil
}

const getRunReportSQL = `SELECT "id", "started_at", "finished_at", "status", "year", "quarter", "stages" FROM treasury_runs WHERE "id" = $1`

func (r *Repository) GetRunReport(ctx context.Context, id int64) (*entity.RunReport, error) {
	var model runReportModel
	err := r.db.QueryRow(ctx, getRunReportSQL, id).
		Scan(&model.Id, &model.StartedAt, &model.FinishedAt, &model.Status, &model.Year, &model.Quarter, &model.Stages)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Join(errs.NotFound, err)
		}
		return nil, errors.Wrap(err, "failed to get run report")
	}
	return mapRunReportModelToType(model)
}

const getRunReportsSQL = `SELECT "id", "started_at", "finished_at", "status", "year", "quarter", "stages" FROM treasury_runs ORDER BY "id" DESC LIMIT $1 OFFSET $2`

func (r *Repository) GetRunReports(ctx context.Context, limit, offset int32) ([]*entity.RunReport, error) {
	rows, err := r.db.Query(ctx, getRunReportsSQL, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get run reports")
	}
	defer rows.Close()

	reports := make([]*entity.RunReport, 0)
	for rows.Next() {
		var model runReportModel
		if err := rows.Scan(&model.Id, &model.StartedAt, &model.FinishedAt, &model.Status, &model.Year, &model.Quarter, &model.Stages); err != nil {
			return nil, errors.Wrap(err, "failed to scan run report")
		}
		report, err := mapRunReportModelToType(model)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return reports, nil
}

const countRunReportsSQL = `SELECT COUNT(*) FROM treasury_runs`

func (r *Repository) CountRunReports(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, countRunReportsSQL).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count run reports")
	}
	return count, nil
}
