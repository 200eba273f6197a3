package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/treasury-network/treasury-engine/common"
)

type getAssetResult struct {
	Name             string  `json:"name"`
	Symbol           string  `json:"symbol"`
	URI              string  `json:"uri,omitempty"`
	Decimals         uint8   `json:"decimals"`
	FeeBasisPoints   uint16  `json:"feeBasisPoints"`
	FeeCap           uint64  `json:"feeCap"`
	BurnRate         float64 `json:"burnRate"`
	BurnStartQuarter int     `json:"burnStartQuarter"`
}

type getAssetResponse = common.HttpResponse[getAssetResult]

func (h *HttpHandler) GetAsset(ctx *fiber.Ctx) (err error) {
	resp := getAssetResponse{
		Result: &getAssetResult{
			Name:             h.asset.Name,
			Symbol:           h.asset.Symbol,
			URI:              h.asset.URI,
			Decimals:         h.asset.Decimals,
			FeeBasisPoints:   h.asset.FeeBasisPoints,
			FeeCap:           h.asset.FeeCap,
			BurnRate:         h.asset.BurnRate,
			BurnStartQuarter: h.asset.BurnStartQuarter,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
