package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore 记录已注销的令牌 ID
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NewTokenStore rdb 为 nil 时返回空实现，注销只在客户端生效
func NewTokenStore(rdb *redis.Client) TokenStore {
	if rdb == nil {
		return noopTokenStore{}
	}
	return &redisTokenStore{rdb: rdb}
}

type redisTokenStore struct {
	rdb *redis.Client
}

func revokedKey(jti string) string { return "auth:revoked:" + jti }

func (s *redisTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKey(jti), 1, ttl).Err()
}

func (s *redisTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKey(jti)).Result()
	return n > 0, err
}

type noopTokenStore struct{}

func (noopTokenStore) Revoke(context.Context, string, time.Duration) error { return nil }
func (noopTokenStore) IsRevoked(context.Context, string) (bool, error)     { return false, nil }
