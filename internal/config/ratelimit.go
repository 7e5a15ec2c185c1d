package config

import "time"

// RateLimitConfig drives the token buckets in front of the admin routes.
// Sign-in attempts are counted per client address so guessing the secret is
// throttled.  Guest writes are counted per admin subject.
type RateLimitConfig struct {
    Enabled bool
    Prefix  string
    Session Bucket // POST /admin/session
    Write   Bucket // POST /admin/guest
}

// Bucket sizes one token bucket: Capacity requests in a burst, then one more
// every Refill.
type Bucket struct {
    Capacity int
    Refill   time.Duration
}

// TTL is how long an idle bucket is kept in Redis.  It covers a full refill,
// after which a fresh bucket is identical.
func (b Bucket) TTL() time.Duration {
    return time.Duration(b.Capacity+1) * b.Refill
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  Each bucket takes
// {NAME}_CAPACITY and {NAME}_REFILL, e.g. RATE_LIMIT_WRITE_CAPACITY=30.
func LoadRateLimitConfig() RateLimitConfig {
    return RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Prefix:  envStr("RATE_LIMIT_PREFIX", "rl-admin"),
        Session: loadBucket("RATE_LIMIT_SESSION", 5, time.Minute),
        Write:   loadBucket("RATE_LIMIT_WRITE", 30, 2*time.Second),
    }
}

func loadBucket(name string, capacity int, refill time.Duration) Bucket {
    b := Bucket{
        Capacity: envInt(name+"_CAPACITY", capacity),
        Refill:   envDur(name+"_REFILL", refill),
    }
    if b.Capacity < 1 {
        b.Capacity = 1
    }
    if b.Refill <= 0 {
        b.Refill = refill
    }
    return b
}
