package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/treasury")

	r.Get("/runs", h.GetRuns)
	r.Get("/runs/:id", h.GetRun)
	r.Post("/runs", h.TriggerRun)
	r.Get("/burns", h.GetBurns)
	r.Get("/asset", h.GetAsset)
	return nil
}
