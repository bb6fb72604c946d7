package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dashboard snapshots are expensive multi-query aggregates, so handlers
// cache the rendered result for a short TTL. Staleness is bounded by the
// TTL; there is no invalidation.

// AdminDashboardKey is the cache key for the admin dashboard snapshot.
const AdminDashboardKey = "stats:admin"

// ArtistDashboardKey builds the cache key for one artist's dashboard.
func ArtistDashboardKey(artistID int64) string {
	return fmt.Sprintf("stats:artist:%d", artistID)
}

// GetJSON loads a cached value into dest. Returns false on a miss or when
// the cache is not connected; cache failures never fail the request.
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if RedisClient == nil {
		return false, nil
	}
	raw, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to decode cached value for %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v under key with the given TTL.
func SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	if RedisClient == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}
	if err := RedisClient.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}
