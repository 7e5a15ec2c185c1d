package config

import (
    "context"
    "crypto/tls"
    "fmt"
    "net"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig locates the Redis server shared by the guest list cache, the
// admin rate limiter and the media cache.  Redis is optional: the server
// keeps running without it.
type RedisConfig struct {
    Addr     string
    Password string
    DB       int
    TLS      bool
}

// LoadRedisConfig reads REDIS_HOST and REDIS_PORT, or REDIS_ADDR, plus
// REDIS_PASSWORD, REDIS_DB and REDIS_TLS.  Host and port win over the
// address.
func LoadRedisConfig() RedisConfig {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = net.JoinHostPort(host, port)
    }
    return RedisConfig{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       envInt("REDIS_DB", 0),
        TLS:      envBool("REDIS_TLS", false),
    }
}

// Connect opens a client and pings the server within two seconds.  On error
// the client is closed and nil is returned.
func (rc RedisConfig) Connect(ctx context.Context) (*redis.Client, error) {
    opts := &redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB}
    if rc.TLS {
        host, _, _ := net.SplitHostPort(rc.Addr)
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}
    }
    client := redis.NewClient(opts)

    pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := client.Ping(pctx).Err(); err != nil {
        _ = client.Close()
        return nil, fmt.Errorf("redis %s: %w", rc.Addr, err)
    }
    return client, nil
}
