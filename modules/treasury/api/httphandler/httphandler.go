package httphandler

import (
	"github.com/treasury-network/treasury-engine/modules/treasury/config"
	"github.com/treasury-network/treasury-engine/modules/treasury/usecase"
)

type HttpHandler struct {
	usecase *usecase.Usecase
	asset   config.AssetConfig
}

func New(asset config.AssetConfig, usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
		asset:   asset,
	}
}
