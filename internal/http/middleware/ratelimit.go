package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"contactsapi/internal/cache"
)

// RateLimit caps requests per caller per route using a fixed window
// counter in Redis. The key is the authenticated user ID when present,
// the client IP otherwise. When Redis is unreachable the request is let
// through; availability wins over strictness here.
func RateLimit(c cache.Cache, limit int, window time.Duration) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		caller := UserIDFromCtx(ctx)
		if caller == "" {
			caller = ctx.IP()
		}
		// Allow namespaces its keys itself, so this stays route:caller.
		key := ctx.Route().Path + ":" + caller

		ok, err := c.Allow(ctx.UserContext(), key, limit, window)
		if err != nil {
			return ctx.Next()
		}
		if !ok {
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return ctx.Next()
	}
}
