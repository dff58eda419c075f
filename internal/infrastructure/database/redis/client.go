// Package redis wraps go-redis for the patient cache-aside layer
// internal/store reads through on get_by_id.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	rdb          *redis.Client
	keyGenerator *KeyGenerator
}

type Config struct {
	Host     string
	Port     int
	Password string
	Database int
}

func NewClient(config *Config, keyGenerator *KeyGenerator) (*Client, error) {
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password:     config.Password,
		DB:           config.Database,
		MaxRetries:   3,
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MinIdleConns: 2,
	}

	rdb := redis.NewClient(opts)

	client := &Client{
		rdb:          rdb,
		keyGenerator: keyGenerator,
	}

	if err := client.Ping(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

func (c *Client) Close() {
	if c.rdb != nil {
		c.rdb.Close()
	}
}

func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.Ping(ctx); err != nil {
		return err
	}
	stats := c.rdb.PoolStats()
	if stats.TotalConns == 0 {
		return fmt.Errorf("no redis connections available")
	}
	return nil
}

// SetWithPattern caches value under the named pattern's key, with the
// pattern's configured TTL.
func (c *Client) SetWithPattern(ctx context.Context, patternName string, value interface{}, identifier ...string) error {
	key, err := c.keyGenerator.GenerateKey(patternName, identifier...)
	if err != nil {
		return err
	}
	ttl, err := c.keyGenerator.GetTTL(patternName)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, value, time.Duration(ttl)*time.Second).Err()
}

// GetWithPattern reads a value cached under the named pattern's key. Returns
// redis.Nil (unwrapped, check with errors.Is) on a cache miss.
func (c *Client) GetWithPattern(ctx context.Context, patternName string, identifier ...string) (string, error) {
	key, err := c.keyGenerator.GenerateKey(patternName, identifier...)
	if err != nil {
		return "", err
	}
	return c.rdb.Get(ctx, key).Result()
}

// DelWithPattern evicts the cache entry for the named pattern's key.
func (c *Client) DelWithPattern(ctx context.Context, patternName string, identifier ...string) error {
	key, err := c.keyGenerator.GenerateKey(patternName, identifier...)
	if err != nil {
		return err
	}
	return c.rdb.Del(ctx, key).Err()
}

// IsMiss reports whether err represents a cache miss rather than a failure.
func IsMiss(err error) bool {
	return err == redis.Nil
}
