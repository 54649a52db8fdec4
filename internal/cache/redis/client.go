package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/curesight/client-go/pkg/logger"
	"github.com/curesight/client-go/pkg/utils"
)

// Client stores synthesized audio so a restarted kiosk does not re-synthesize
// phrases it has already played. Keys mirror the in-process cache keys.
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

	logger.Info("Redis audio cache initialized",
		zap.String("addr", fmt.Sprintf("%s:%d", host, port)),
		zap.Duration("ttl", ttl),
	)

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Keys carry arbitrary spoken text, so they are hashed before hitting redis.
func (c *Client) SetAudio(ctx context.Context, key string, audio []byte) error {
	if err := c.client.Set(ctx, "tts:"+utils.HashString(key), audio, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set audio cache: %w", err)
	}
	logger.Debug("Audio cached", zap.String("key", key), zap.Int("bytes", len(audio)))
	return nil
}

func (c *Client) GetAudio(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, "tts:"+utils.HashString(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get audio cache: %w", err)
	}
	logger.Debug("Audio cache hit", zap.String("key", key))
	return data, true, nil
}
