package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/treasury-network/treasury-engine/common"
)

type triggerRunResponse = common.HttpResponse[runReportResult]

// TriggerRun executes a policy run immediately. The response carries the
// full stage report, including a failed one.
func (h *HttpHandler) TriggerRun(ctx *fiber.Ctx) (err error) {
	report, err := h.usecase.TriggerRun(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during TriggerRun")
	}

	result := mapRunReportResult(report)
	resp := triggerRunResponse{
		Result: &result,
	}

	return errors.WithStack(ctx.JSON(resp))
}
