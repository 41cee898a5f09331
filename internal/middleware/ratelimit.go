package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/siddu-catalog/internal/config"
)

// bucketScript refills KEYS[1] in whole intervals, then draws cost tokens
// when the bucket holds that many.
// ARGV: now_ms, capacity, refill, interval_ms, ttl_s, cost.
var bucketScript = redis.NewScript(`
	local now = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill = tonumber(ARGV[3])
	local interval = tonumber(ARGV[4])
	local cost = tonumber(ARGV[6])

	local bucket = redis.call('HMGET', KEYS[1], 'tokens', 'refilled_at')
	local tokens = tonumber(bucket[1])
	local refilled_at = tonumber(bucket[2])
	if tokens == nil or refilled_at == nil then
		tokens = capacity
		refilled_at = now
	end

	if interval > 0 and refill > 0 then
		local steps = math.floor(math.max(0, now - refilled_at) / interval)
		if steps > 0 then
			tokens = math.min(capacity, tokens + steps * refill)
			refilled_at = refilled_at + steps * interval
		end
	end

	local allowed = 0
	local wait_ms = 0
	if tokens >= cost then
		allowed = 1
		tokens = tokens - cost
	else
		local needed = math.ceil((cost - tokens) / refill)
		wait_ms = math.max(0, needed * interval - (now - refilled_at))
	end

	redis.call('HSET', KEYS[1], 'tokens', tokens, 'refilled_at', refilled_at)
	redis.call('EXPIRE', KEYS[1], tonumber(ARGV[5]))
	return { allowed, tokens, wait_ms }
`)

// heavyRoutes fan out into many store calls or read the whole catalog, so
// each request draws HeavyCost tokens instead of one.
var heavyRoutes = map[string]bool{
	http.MethodPost + " /v1/admin/batch/confirm": true,
	http.MethodPost + " /v1/admin/import/json":   true,
	http.MethodPost + " /v1/admin/import/api":    true,
	http.MethodGet + " /v1/admin/export":         true,
}

func requestCost(cfg config.RateLimitConfig, c echo.Context) int {
	if !heavyRoutes[c.Request().Method+" "+c.Path()] {
		return 1
	}
	return min(max(cfg.HeavyCost, 1), cfg.Capacity)
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewTokenBucket limits requests with a Redis-side token bucket.  Imports,
// exports and batch confirmations cost HeavyCost tokens.  Redis errors let
// the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			cost := requestCost(cfg, c)
			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
				cost,
			}

			vals, err := bucketScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("ratelimit: redis error")
				return next(c)
			}
			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 3 {
				log.Warn().Str("key", key).Msgf("ratelimit: unexpected script result %#v", vals)
				return next(c)
			}
			allowed := fmt.Sprint(arr[0]) == "1"
			remaining := asInt64(arr[1])
			retryMs := asInt64(arr[2])

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if cost > 1 {
				h.Set("X-RateLimit-Cost", strconv.Itoa(cost))
			}

			if !allowed {
				secs := int(math.Ceil(float64(retryMs) / 1000.0))
				if secs < 0 {
					secs = 0
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				if cfg.Debug {
					log.Debug().Str("key", key).Int("cost", cost).Int64("retry_ms", retryMs).Msg("ratelimit: blocked")
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"message":     "rate limit exceeded",
					"retry_after": secs,
				})
			}
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			return next(c)
		}
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := UserID(c)
	if uid == "" {
		uid = "anon"
	}
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", uid, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
