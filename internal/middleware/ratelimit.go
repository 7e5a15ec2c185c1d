package middleware

import (
    "fmt"
    "math"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/wedding-guests/internal/config"
    "github.com/iliyamo/wedding-guests/internal/logger"
)

// Rate limit scopes.  A session bucket belongs to a client address; a write
// bucket belongs to the subject AdminAuth stored, so the write limiter must
// run after AdminAuth.
const (
    ScopeSession = "session"
    ScopeWrite   = "write"
)

// tokenBucket takes one token from KEYS[1] and refills one token per
// refill_ms.  It returns {allowed, tokens_left, retry_after_ms}.
var tokenBucket = redis.NewScript(`
    local key = KEYS[1]
    local now = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_ms = tonumber(ARGV[3])
    local ttl_ms = tonumber(ARGV[4])

    local state = redis.call('HMGET', key, 'tokens', 'at')
    local tokens = tonumber(state[1]) or capacity
    local at = tonumber(state[2]) or now

    local earned = math.floor(math.max(0, now - at) / refill_ms)
    if earned > 0 then
        tokens = math.min(capacity, tokens + earned)
        at = at + earned * refill_ms
    end

    local allowed = 0
    local retry = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        retry = math.max(0, refill_ms - (now - at))
    end

    redis.call('HSET', key, 'tokens', tokens, 'at', at)
    redis.call('PEXPIRE', key, ttl_ms)
    return {allowed, tokens, retry}
`)

// AdminRateLimit guards one admin route with a token bucket kept in Redis.
// Without Redis, or when disabled, it passes every request through; a Redis
// error on a single request also fails open.  A blocked request gets 429
// with the bucket state so the upload command can tell when to retry.
func AdminRateLimit(cfg config.RateLimitConfig, scope string, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    bucket := cfg.Write
    if scope == ScopeSession {
        bucket = cfg.Session
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg.Prefix, scope, c)
            vals, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(),
                bucket.Capacity,
                bucket.Refill.Milliseconds(),
                bucket.TTL().Milliseconds(),
            ).Int64Slice()
            if err != nil || len(vals) != 3 {
                logger.L().Warnw("ratelimit: bucket unavailable, letting request through", "key", key, "error", err)
                return next(c)
            }
            allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(bucket.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
            if allowed {
                return next(c)
            }

            secs := int(math.Ceil(float64(retryMs) / 1000))
            h.Set("Retry-After", strconv.Itoa(secs))
            logger.L().Infow("ratelimit: blocked", "scope", scope, "caller", callerID(c), "ip", c.RealIP(), "retry_after", secs)
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "Too many admin requests",
                "scope":       scope,
                "limit":       bucket.Capacity,
                "remaining":   remaining,
                "retry_after": secs,
            })
        }
    }
}

// rateKey is {prefix}:session:{ip} or {prefix}:write:{subject}.  A write
// request that reached the limiter without a subject is keyed on its
// address instead.
func rateKey(prefix, scope string, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    if scope == ScopeSession {
        return fmt.Sprintf("%s:%s:%s", prefix, scope, ip)
    }
    subject := callerID(c)
    if subject == "anon" {
        subject = "anon@" + ip
    }
    return fmt.Sprintf("%s:%s:%s", prefix, scope, subject)
}
