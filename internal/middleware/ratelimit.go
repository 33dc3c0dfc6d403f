package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

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

// RateLimitPolicy describes one fixed-window limit.
type RateLimitPolicy struct {
	Name   string
	Limit  int
	Window time.Duration
	OnFail FailPolicy
	// Key overrides the default user-or-IP identity, e.g. to limit per email.
	Key func(c *fiber.Ctx) string
}

var limiterBypassEnvs = map[string]bool{"test": true, "development": true, "stress": true}

// CheckRateLimit increments the window counter for resource/id and reports whether
// the request is allowed. Limits are not enforced in test, development or stress.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if limiterBypassEnvs[env] {
		return true, nil
	}
	return checkWindow(ctx, rdb, resource, id, limit, window)
}

func checkWindow(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(limit), nil
}

// RateLimit returns a fail-open middleware enforcing limit requests per window,
// keyed by the session user when present and by client IP otherwise.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name string) fiber.Handler {
	return RateLimitWithPolicy(rdb, RateLimitPolicy{Name: name, Limit: limit, Window: window})
}

// RateLimitWithPolicy returns a middleware enforcing p.
func RateLimitWithPolicy(rdb *redis.Client, p RateLimitPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := rateLimitIdentity(c, p)
		resource := p.Name
		if resource == "" {
			resource = c.Path()
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, id, p.Limit, p.Window)
		if err != nil {
			if p.OnFail == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable, rejecting",
					slog.String("resource", resource), slog.String("error", err.Error()))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
					"msg":   "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(p.Window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
				"msg":   "Too many requests, please try again later.",
			})
		}
		return c.Next()
	}
}

func rateLimitIdentity(c *fiber.Ctx, p RateLimitPolicy) string {
	if p.Key != nil {
		if k := p.Key(c); k != "" {
			return "key:" + k
		}
	}
	if uid, ok := CurrentUserID(c); ok {
		return "user:" + uid
	}
	return "ip:" + c.IP()
}
