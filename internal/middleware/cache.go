package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/wedding-guests/internal/config"
    "github.com/iliyamo/wedding-guests/internal/logger"
)

// cachedResponse is what a cache hit replays.  It is kept in a Redis hash
// with the fields status, type and body.
type cachedResponse struct {
    Status      int
    ContentType string
    Body        []byte
}

// bodyRecorder passes the response through to the client and keeps a copy
// for the cache.  Once the body outgrows limit the copy is dropped and the
// response is not cached.
type bodyRecorder struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int64
    overflow bool
}

func (r *bodyRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
    if !r.overflow {
        if r.limit > 0 && int64(r.buf.Len()+len(b)) > r.limit {
            r.overflow = true
            r.buf = bytes.Buffer{}
        } else {
            r.buf.Write(b)
        }
    }
    return r.ResponseWriter.Write(b)
}

// cacheKey hashes method, route and query under prefix.  The guest list has
// no per-caller variants, so nothing else goes into the key.
func cacheKey(prefix string, c echo.Context) string {
    r := c.Request()
    sum := sha1.Sum([]byte(r.Method + " " + c.Path() + "?" + r.URL.RawQuery))
    return fmt.Sprintf("%s:%x", prefix, sum[:])
}

func loadResponse(ctx context.Context, rdb *redis.Client, key string) (cachedResponse, bool) {
    m, err := rdb.HGetAll(ctx, key).Result()
    if err != nil || len(m) == 0 {
        return cachedResponse{}, false
    }
    status, err := strconv.Atoi(m["status"])
    if err != nil || status == 0 {
        return cachedResponse{}, false
    }
    return cachedResponse{Status: status, ContentType: m["type"], Body: []byte(m["body"])}, true
}

func storeResponse(ctx context.Context, rdb *redis.Client, key string, r cachedResponse, ttl time.Duration) error {
    _, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
        p.HSet(ctx, key, "status", r.Status, "type", r.ContentType, "body", r.Body)
        p.Expire(ctx, key, ttl)
        return nil
    })
    return err
}

// NewRedisCache caches GET /guests and GET /manifest/all.  Only complete 200
// responses are stored; PurgeCache drops them when a guest changes and TTL
// bounds them otherwise.  X-Cache tells HIT from MISS.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKey(cfg.Prefix, c)

            if hit, ok := loadResponse(ctx, rdb, key); ok {
                c.Response().Header().Set("X-Cache", "HIT")
                return c.Blob(hit.Status, hit.ContentType, hit.Body)
            }

            rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if rec.status != http.StatusOK {
                return nil
            }
            if rec.overflow {
                logger.L().Debugw("cache: response too large to store", "route", c.Path(), "limit", cfg.MaxBodyBytes)
                return nil
            }
            entry := cachedResponse{
                Status:      rec.status,
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        rec.buf.Bytes(),
            }
            if err := storeResponse(context.WithoutCancel(ctx), rdb, key, entry, ttl); err != nil {
                logger.L().Warnw("cache: store failed", "route", c.Path(), "error", err)
            }
            return nil
        }
    }
}

// PurgeCache deletes every cached response under prefix and returns how many
// keys were removed.  SCAN keeps Redis responsive on large keyspaces.
func PurgeCache(ctx context.Context, rdb *redis.Client, prefix string) (int, error) {
    if rdb == nil {
        return 0, nil
    }
    var (
        cursor  uint64
        removed int
    )
    for {
        keys, next, err := rdb.Scan(ctx, cursor, prefix+":*", 200).Result()
        if err != nil {
            return removed, err
        }
        if len(keys) > 0 {
            n, err := rdb.Del(ctx, keys...).Result()
            if err != nil {
                return removed, err
            }
            removed += int(n)
        }
        if next == 0 {
            return removed, nil
        }
        cursor = next
    }
}
