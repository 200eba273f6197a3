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

const getBurnsMaxLimit = 1000

type getBurnsRequest struct {
	paginationRequest
}

func (req getBurnsRequest) Validate() error {
	var errList []error
	if err := req.paginationRequest.Validate(); err != nil {
		errList = append(errList, err)
	}
	if req.Limit > getBurnsMaxLimit {
		errList = append(errList, errors.Errorf("'limit' cannot exceed %d", getBurnsMaxLimit))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type burnRecordResult struct {
	Year        int       `json:"year"`
	Quarter     int       `json:"quarter"`
	Amount      uint64    `json:"amount"`
	TxSignature string    `json:"txSignature"`
	BurnedAt    time.Time `json:"burnedAt"`
}

type getBurnsResult struct {
	List []burnRecordResult `json:"list"`
}

type getBurnsResponse = common.HttpResponse[getBurnsResult]

func (h *HttpHandler) GetBurns(ctx *fiber.Ctx) (err error) {
	var req getBurnsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	if err := req.ParseDefault(); err != nil {
		return errors.WithStack(err)
	}

	records, err := h.usecase.GetBurnRecords(ctx.UserContext(), req.Limit, req.Offset)
	if err != nil {
		return errors.Wrap(err, "error during GetBurnRecords")
	}

	resp := getBurnsResponse{
		Result: &getBurnsResult{
			List: lo.Map(records, func(record *entity.BurnRecord, _ int) burnRecordResult {
				return burnRecordResult{
					Year:        record.Year,
					Quarter:     record.Quarter,
					Amount:      record.Amount,
					TxSignature: record.TxSignature,
					BurnedAt:    record.BurnedAt,
				}
			}),
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}
