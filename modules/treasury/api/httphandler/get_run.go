package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/treasury-network/treasury-engine/common"
	"github.com/treasury-network/treasury-engine/common/errs"
)

type getRunRequest struct {
	Id int64 `params:"id"`
}

func (req getRunRequest) Validate() error {
	if req.Id <= 0 {
		return errs.WithPublicMessage(errors.New("'id' must be positive"), "validation error")
	}
	return nil
}

type getRunResponse = common.HttpResponse[runReportResult]

func (h *HttpHandler) GetRun(ctx *fiber.Ctx) (err error) {
	var req getRunRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	report, err := h.usecase.GetRunReport(ctx.UserContext(), req.Id)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("run not found")
		}
		return errors.Wrap(err, "error during GetRunReport")
	}

	result := mapRunReportResult(report)
	resp := getRunResponse{
		Result: &result,
	}

	return errors.WithStack(ctx.JSON(resp))
}
