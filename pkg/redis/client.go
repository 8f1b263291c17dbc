package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/yuutai/pkg/config"
)

// ErrDisabled is returned by calls that need a live server
var ErrDisabled = errors.New("redis disabled")

// Client is the connection behind the live quote cache. A disabled
// client turns every cache operation into a no-op so callers never
// branch on configuration.
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb     *redis.Client
	enabled bool
	addr    string
}

// New connects when cfg.Redis.Enabled; otherwise returns a disabled client
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{enabled: false}, nil
	}

	addr := fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port)
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection to %s failed: %w", addr, err)
	}

	return &Client{
		rdb:     rdb,
		enabled: true,
		addr:    addr,
	}, nil
}

// NewFromRedis wraps an existing go-redis client; nil gives a disabled client
func NewFromRedis(rdb *redis.Client) *Client {
	c := &Client{rdb: rdb, enabled: rdb != nil}
	if rdb != nil {
		c.addr = rdb.Options().Addr
	}
	return c
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled returns whether Redis is enabled
func (c *Client) Enabled() bool {
	return c.enabled
}

// Addr returns host:port, empty when disabled
func (c *Client) Addr() string {
	return c.addr
}

// Ping measures one round trip to the server
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	if !c.enabled {
		return 0, ErrDisabled
	}
	start := time.Now()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("ping %s: %w", c.addr, err)
	}
	return time.Since(start), nil
}

// countKeys counts keys matching pattern with SCAN, never KEYS
func (c *Client) countKeys(ctx context.Context, pattern string) (int, error) {
	if !c.enabled {
		return 0, nil
	}
	n := 0
	iter := c.rdb.Scan(ctx, 0, pattern, 500).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, iter.Err()
}
