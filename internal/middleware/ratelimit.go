package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// rateLimitEnabled reports whether rate limiting applies for the configured
// environment. Test and development traffic is never throttled; an
// uninitialized config counts as development.
func rateLimitEnabled() bool {
	if cfg == nil {
		return false
	}
	switch cfg.Env {
	case "", "test", "development":
		return false
	}
	return true
}

// CheckRateLimit checks if a caller has exceeded its rate limit on a
// resource using a fixed INCR/EXPIRE window. It reports true when the
// request is allowed.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if !rateLimitEnabled() {
		return true, nil
	}
	if rdb == nil {
		return false, errors.New("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// callerKey identifies the caller for rate limiting purposes: the
// authenticated user when AuthRequired ran earlier in the chain, the remote
// IP otherwise.
func callerKey(c *fiber.Ctx) string {
	if uid := c.Locals("userID"); uid != nil {
		return fmt.Sprintf("user:%v", uid)
	}
	return fmt.Sprintf("ip:%s", c.IP())
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`.
// It keys by authenticated user when present, otherwise by remote IP, and
// fails open when the store is unavailable.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy returns a Fiber middleware enforcing `limit` requests
// per `window` with a specific failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Use the provided name or the request path as the resource identifier.
		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		ctx := c.UserContext()
		allowed, err := CheckRateLimit(ctx, rdb, resource, callerKey(c), limit, window)
		if err != nil {
			if policy == FailClosed {
				observability.Logger.WarnContext(ctx, "rate limit store unavailable, failing closed",
					slog.String("resource", resource),
					slog.String("path", c.Path()),
					slog.String("error", err.Error()),
				)
				return models.RespondWithError(c, fiber.StatusServiceUnavailable, models.NewInternalError(errors.New("rate limit store unavailable")))
			}
			observability.Logger.WarnContext(ctx, "rate limit store unavailable, failing open",
				slog.String("resource", resource),
				slog.String("error", err.Error()),
			)
			return c.Next()
		}

		if !allowed {
			appErr := models.NewRateLimitedError(fmt.Sprintf("rate limit exceeded for %s", resource))
			return models.RespondWithError(c, models.HTTPStatus(appErr.Code), appErr)
		}
		return c.Next()
	}
}
