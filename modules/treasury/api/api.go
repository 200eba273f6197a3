package api

import (
	"github.com/treasury-network/treasury-engine/modules/treasury/api/httphandler"
	"github.com/treasury-network/treasury-engine/modules/treasury/config"
	"github.com/treasury-network/treasury-engine/modules/treasury/usecase"
)

func NewHTTPHandler(asset config.AssetConfig, usecase *usecase.Usecase) *httphandler.HttpHandler {
	return httphandler.New(asset, usecase)
}
