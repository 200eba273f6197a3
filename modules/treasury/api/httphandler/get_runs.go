package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/treasury-network/treasury-engine/common"
	"github.com/treasury-network/treasury-engine/common/errs"
	"github.com/treasury-network/treasury-engine/modules/treasury/internal/entity"
)

const getRunsMaxLimit = 1000

type getRunsRequest struct {
	paginationRequest
}

func (req getRunsRequest) Validate() error {
	var errList []error
	if err := req.paginationRequest.Validate(); err != nil {
		errList = append(errList, err)
	}
	if req.Limit > getRunsMaxLimit {
		errList = append(errList, errors.Errorf("'limit' cannot exceed %d", getRunsMaxLimit))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type stageOutcomeResult struct {
	Stage       string `json:"stage"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	Amount      uint64 `json:"amount,omitempty"`
	Fee         uint64 `json:"fee,omitempty"`
	TxSignature string `json:"txSignature,omitempty"`
}

type runReportResult struct {
	Id         int64                `json:"id"`
	StartedAt  time.Time            `json:"startedAt"`
	FinishedAt time.Time            `json:"finishedAt"`
	Status     string               `json:"status"`
	Year       int                  `json:"year"`
	Quarter    int                  `json:"quarter"`
	Stages     []stageOutcomeResult `json:"stages"`
}

func mapRunReportResult(report *entity.RunReport) runReportResult {
	return runReportResult{
		Id:         report.Id,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Status:     string(report.Status),
		Year:       report.Year,
		Quarter:    report.Quarter,
		Stages: lo.Map(report.Stages, func(stage entity.StageOutcome, _ int) stageOutcomeResult {
			return stageOutcomeResult{
				Stage:       string(stage.Stage),
				Status:      string(stage.Status),
				Reason:      stage.Reason,
				Amount:      stage.Amount,
				Fee:         stage.Fee,
				TxSignature: stage.TxSignature,
			}
		}),
	}
}

type getRunsResult struct {
	Total int64             `json:"total"`
	List  []runReportResult `json:"list"`
}

type getRunsResponse = common.HttpResponse[getRunsResult]

func (h *HttpHandler) GetRuns(ctx *fiber.Ctx) (err error) {
	var req getRunsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	if err := req.ParseDefault(); err != nil {
		return errors.WithStack(err)
	}

	reports, total, err := h.usecase.GetRunReports(ctx.UserContext(), req.Limit, req.Offset)
	if err != nil {
		return errors.Wrap(err, "error during GetRunReports")
	}

	resp := getRunsResponse{
		Result: &getRunsResult{
			Total: total,
			List:  lo.Map(reports, func(report *entity.RunReport, _ int) runReportResult { return mapRunReportResult(report) }),
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}
