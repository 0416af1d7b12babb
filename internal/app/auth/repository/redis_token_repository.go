package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisTokenRepository struct {
	client *redis.Client
}

// NewRedisTokenRepository создает Redis-хранилище черного списка токенов.
// TTL ключа равен остатку жизни токена, Redis сам вычищает истекшие записи.
func NewRedisTokenRepository(client *redis.Client) TokenRepository {
	return &redisTokenRepository{client: client}
}

// AddToBlacklist добавляет токен в черный список с TTL до истечения срока
func (r *redisTokenRepository) AddToBlacklist(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Токен уже истек, черный список не нужен
		return nil
	}

	key := fmt.Sprintf("blacklist:%s", token)
	if err := r.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}

	return nil
}

// IsBlacklisted проверяет, находится ли токен в черном списке
func (r *redisTokenRepository) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", token)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if token is blacklisted: %w", err)
	}

	return exists > 0, nil
}

// CleanupExpiredTokens - в Redis не нужно, истекшие ключи удаляются по TTL.
// Метод оставлен для совместимости интерфейса.
func (r *redisTokenRepository) CleanupExpiredTokens(ctx context.Context) error {
	return nil
}
