package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/dukamart/inventory/pkg/errors"
)

// TokenBlacklist 令牌黑名单
// 运维令牌泄露时写入黑名单,在令牌自然过期前拒绝使用
type TokenBlacklist struct {
	client *redis.Client
}

// NewTokenBlacklist 创建令牌黑名单
func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}

// Revoke 吊销令牌,ttl一般设置为令牌剩余有效期
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if err := b.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.ErrRedisError.WithErr(err)
	}
	return nil
}

// RevokeUntil 吊销令牌直到其过期时间;已过期的令牌无需写入
func (b *TokenBlacklist) RevokeUntil(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.Revoke(ctx, token, ttl)
}

// IsRevoked 检查令牌是否已吊销
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.ErrRedisError.WithErr(err)
	}
	return n > 0, nil
}
