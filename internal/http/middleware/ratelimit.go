package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	redisStorage "github.com/gofiber/storage/redis/v2"

	"docconvert/internal/config"
	"docconvert/internal/logging"
)

// NewRateLimitStorage returns a Redis backed limiter store when the cache is
// enabled, and an in-process store otherwise or when Redis cannot be reached.
func NewRateLimitStorage(cfg config.CacheConfig) (store fiber.Storage) {
	store = memoryStorage.New()
	if !cfg.Enabled {
		return store
	}

	// redisStorage.New panics when the initial ping fails
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Redis limiter store init panicked, falling back to memory", "panic", r)
		}
	}()
	store = redisStorage.New(redisStorage.Config{
		Addrs:    []string{cfg.RedisHost},
		Database: cfg.RateDB,
	})
	logging.Info("Using Redis for rate limiting", "addr", cfg.RedisHost, "db", cfg.RateDB)
	return store
}

// RateLimit limits requests per client (IP + User-Agent) with a sliding
// window. A zero limit disables it. Probes, metrics and docs are never limited.
func RateLimit(cfg config.RateLimitConfig, store fiber.Storage) fiber.Handler {
	if cfg.Limit <= 0 {
		return Noop()
	}
	return limiter.New(limiter.Config{
		Max:               cfg.Limit,
		Expiration:        cfg.Interval,
		LimiterMiddleware: limiter.SlidingWindow{},
		Storage:           store,
		Next:              skipRateLimit,
		KeyGenerator:      clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			rid, _ := c.Locals(RequestIDLocalKey).(string)
			logging.Warn("Rate limit exceeded", "client", clientKey(c), "path", c.Path(), "request_id", rid)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"request_id": rid,
				"error": fiber.Map{
					"code":    "TOO_MANY_REQUESTS",
					"message": "Too Many Requests",
				},
			})
		},
	})
}

func clientKey(c *fiber.Ctx) string {
	sum := sha256.Sum256([]byte(c.IP() + c.Get(fiber.HeaderUserAgent)))
	return hex.EncodeToString(sum[:])
}

func skipRateLimit(c *fiber.Ctx) bool {
	p := c.Path()
	return p == "/health" || p == "/healthz" || p == "/metrics" || strings.HasPrefix(p, "/swagger")
}
