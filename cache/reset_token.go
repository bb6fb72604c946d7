package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

func resetTokenKey(token string) string {
	return "reset:" + token
}

// NewResetToken mints a random password-reset token for the user and
// stores it with the given TTL. Tokens are single use.
func NewResetToken(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	if RedisClient == nil {
		return "", fmt.Errorf("redis client not initialized")
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(buf)
	if err := RedisClient.Set(ctx, resetTokenKey(token), userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// ConsumeResetToken redeems a reset token, deleting it so it cannot be
// replayed. Returns (0, false, nil) for unknown or expired tokens.
func ConsumeResetToken(ctx context.Context, token string) (int64, bool, error) {
	if RedisClient == nil {
		return 0, false, fmt.Errorf("redis client not initialized")
	}
	key := resetTokenKey(token)
	val, err := RedisClient.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redeem reset token: %w", err)
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse reset token value: %w", err)
	}
	return userID, true, nil
}
