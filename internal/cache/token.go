package cache

import (
	"context"
	"time"

	"CrewWatch/config"
	"CrewWatch/storage/redis"
)

const (
	tokenPrefix = "token"
)

// TokenStore refresh token 的 Redis 存储，实现 service.TokenStore
// Key: cw:token:refresh:{user_id}
type TokenStore struct{}

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

func (s *TokenStore) Set(ctx context.Context, userID, refreshToken string) error {
	key := redis.Key(tokenPrefix, "refresh", userID)
	ttl := time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour

	return redis.Client().Set(ctx, key, refreshToken, ttl).Err()
}

func (s *TokenStore) Validate(ctx context.Context, userID, refreshToken string) bool {
	key := redis.Key(tokenPrefix, "refresh", userID)

	stored, err := redis.Client().Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return stored == refreshToken
}

func (s *TokenStore) Delete(ctx context.Context, userID string) error {
	key := redis.Key(tokenPrefix, "refresh", userID)
	return redis.Client().Del(ctx, key).Err()
}
