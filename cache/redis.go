package cache

import (
	"context"
	"fmt"
	"time"

	"sonique/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the shared Redis client.
var RedisClient *redis.Client

// Connect initializes the Redis connection.
func Connect(cfg *config.Config) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// Ping verifies the connection with a round trip.
func Ping(ctx context.Context) error {
	if RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if err := RedisClient.Set(ctx, "ping_check", "ok", time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	if _, err := RedisClient.Get(ctx, "ping_check").Result(); err != nil {
		return fmt.Errorf("failed to get key: %w", err)
	}
	if err := RedisClient.Del(ctx, "ping_check").Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}
