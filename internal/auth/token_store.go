package auth

import (
	"context"
	"time"

	"dentalce/internal/cache"
)

const usedResetTokenKeyPrefix = "used:reset_token:"

// TokenStoreInterface defines the interface for reset token bookkeeping.
type TokenStoreInterface interface {
	MarkResetUsed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
	ReleaseReset(ctx context.Context, tokenID string) error
}

// TokenStore records redeemed reset tokens in Redis so each is used once.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// MarkResetUsed claims tokenID until ttl elapses. It reports false when the
// token was already claimed. With Redis down every claim succeeds, so
// single use only holds while Redis answers.
func (s *TokenStore) MarkResetUsed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.cache.SetNX(ctx, usedResetTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// ReleaseReset undoes MarkResetUsed after a failed redemption.
func (s *TokenStore) ReleaseReset(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, usedResetTokenKeyPrefix+tokenID)
}
