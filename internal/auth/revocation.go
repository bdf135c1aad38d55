package auth

import (
	"context"
	"fmt"
	"time"
)

const revokedKeyPrefix = "revoked_token:"

type revocationStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Exists(ctx context.Context, keys ...string) (int64, error)
}

// Revoker 记录已登出的令牌, 记录在令牌过期后自动失效
type Revoker struct {
	store revocationStore
	now   func() time.Time
}

func NewRevoker(store revocationStore) *Revoker {
	return &Revoker{store: store, now: time.Now}
}

func (r *Revoker) Revoke(ctx context.Context, claims *Claims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(r.now())
	}
	// 已过期的令牌无需记录
	if ttl <= 0 {
		return nil
	}

	if err := r.store.Set(ctx, revokedKeyPrefix+claims.ID, 1, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.store.Exists(ctx, revokedKeyPrefix+tokenID)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}
