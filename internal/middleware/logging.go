package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// ContextMiddleware injects request ID and user ID from Fiber locals into
// the request context, so the context-aware logger picks them up even in
// deep service layers.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if rid := c.Locals("requestid"); rid != nil {
			if ridStr, ok := rid.(string); ok {
				ctx = observability.WithRequestID(ctx, ridStr)
			}
		}
		if uid := c.Locals("userID"); uid != nil {
			if uidVal, ok := uid.(uint); ok {
				ctx = observability.WithUserID(ctx, uidVal)
			}
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RequestLogger logs each request with method, path, status and latency.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		ctx := c.UserContext()
		if ctx == nil {
			ctx = context.Background()
		}

		switch {
		case status >= 500:
			observability.Logger.ErrorContext(ctx, "request", attrs...)
		case status >= 400:
			observability.Logger.WarnContext(ctx, "request", attrs...)
		default:
			observability.Logger.InfoContext(ctx, "request", attrs...)
		}

		return err
	}
}
