package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Webhook dedupe fast path. The database check inside the reconcile
// transaction stays authoritative; this only short-circuits obvious
// redeliveries before a transaction is opened.

func (c *Client) MarkWebhookProcessed(transactionRef string, ttl time.Duration) error {
	ctx := context.Background()
	return c.rdb.Set(ctx, "webhook:"+transactionRef, 1, ttl).Err()
}

func (c *Client) WasWebhookProcessed(transactionRef string) (bool, error) {
	ctx := context.Background()
	_, err := c.rdb.Get(ctx, "webhook:"+transactionRef).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to check webhook dedupe key: %w", err)
	}
	return true, nil
}

// Payment gateway bearer token cache.

func (c *Client) SetGatewayToken(token string, ttl time.Duration) error {
	ctx := context.Background()
	return c.rdb.Set(ctx, "momo:token", token, ttl).Err()
}

func (c *Client) GetGatewayToken() (string, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "momo:token").Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to get gateway token: %w", err)
	}
	return val, nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
