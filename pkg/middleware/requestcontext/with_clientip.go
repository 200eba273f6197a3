package requestcontext

import (
	"context"
	"net"

	"github.com/gofiber/fiber/v2"
)

type clientIPKey struct{}

type WithClientIPConfig struct {
	// [Optional] TrustedHeader is a header name for getting the client IP
	// (e.g. X-Real-IP, CF-Connecting-IP). Takes priority over X-Forwarded-For.
	TrustedHeader string `mapstructure:"trusted_header"`
}

// GetClientIP returns the client IP stored by WithClientIP, or an empty string.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// WithClientIP resolves the client IP from the trusted header if configured,
// then the first valid X-Forwarded-For entry, then the remote address.
func WithClientIP(config WithClientIPConfig) Option {
	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		if config.TrustedHeader != "" {
			headerIP := c.Get(config.TrustedHeader)
			if ip := net.ParseIP(headerIP); ip != nil {
				return context.WithValue(ctx, clientIPKey{}, headerIP), nil
			}
		}

		for _, raw := range c.IPs() {
			if ip := net.ParseIP(raw); ip != nil {
				return context.WithValue(ctx, clientIPKey{}, ip.String()), nil
			}
		}

		return context.WithValue(ctx, clientIPKey{}, c.IP()), nil
	}
}
