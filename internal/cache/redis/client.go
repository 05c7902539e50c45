package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cyberpulse/backend/pkg/logger"
)

// Client caches feed responses keyed by query hash. The cache replaces
// the original dashboard's in-process session cache as an explicit,
// optional collaborator.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SetFeed(ctx context.Context, queryHash string, response interface{}) error {
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal feed response: %w", err)
	}

	if err := c.client.Set(ctx, feedKey(queryHash), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set feed cache: %w", err)
	}

	logger.Debug("Feed cached", zap.String("query_hash", queryHash), zap.Duration("ttl", c.ttl))
	return nil
}

func (c *Client) GetFeed(ctx context.Context, queryHash string, response interface{}) (bool, error) {
	data, err := c.client.Get(ctx, feedKey(queryHash)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get feed cache: %w", err)
	}

	if err := json.Unmarshal(data, response); err != nil {
		return false, fmt.Errorf("failed to unmarshal feed response: %w", err)
	}

	logger.Debug("Feed cache hit", zap.String("query_hash", queryHash))
	return true, nil
}

// Invalidate removes every cached feed response.
func (c *Client) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "feed:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Feed cache invalidated")
	return nil
}

func feedKey(queryHash string) string {
	return fmt.Sprintf("feed:%s", queryHash)
}
