package requestcontext

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/treasury-network/treasury-engine/pkg/logger"
)

type response struct {
	Error string `json:"error,omitempty"`
}

// Option extends the request context before the handler chain runs.
type Option func(ctx context.Context, c *fiber.Ctx) (context.Context, error)

func New(opts ...Option) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var err error
		ctx := c.UserContext()
		for i, opt := range opts {
			ctx, err = opt(ctx, c)
			if err != nil {
				logger.ErrorContext(ctx, "failed to extract request context",
					slog.Any("error", err),
					slog.Int("optionIndex", i),
				)
				return c.Status(http.StatusInternalServerError).JSON(response{Error: "internal server error"})
			}
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}
