package waitfor

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisProbe reports the cache reachable once PING succeeds.
type RedisProbe struct {
	addr        string
	password    string
	db          int
	dialTimeout time.Duration
}

// NewRedisProbe creates a probe for the Redis instance at addr.
func NewRedisProbe(addr, password string, db int, dialTimeout time.Duration) *RedisProbe {
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	return &RedisProbe{addr: addr, password: password, db: db, dialTimeout: dialTimeout}
}

func (p *RedisProbe) Name() string { return "redis" }

func (p *RedisProbe) Addr() string { return p.addr }

// Check pings with a single-attempt client; the wait loop owns retries.
func (p *RedisProbe) Check(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:        p.addr,
		Password:    p.password,
		DB:          p.db,
		DialTimeout: p.dialTimeout,
		MaxRetries:  -1,
	})
	defer func() { _ = client.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}
