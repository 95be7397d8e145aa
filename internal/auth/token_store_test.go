package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentalce/internal/cache"
)

func TestTokenStore_UnreachableRedisAllowsEveryClaim(t *testing.T) {
	tests := []struct {
		name  string
		cache *cache.Client
	}{
		{name: "no cache configured", cache: nil},
		{name: "redis refusing connections", cache: cache.New("127.0.0.1:1", "", 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewTokenStore(tt.cache)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			first, err := store.MarkResetUsed(ctx, "jti-1", time.Minute)
			require.NoError(t, err)
			second, err := store.MarkResetUsed(ctx, "jti-1", time.Minute)
			require.NoError(t, err)

			assert.True(t, first)
			assert.True(t, second)
			assert.NoError(t, store.ReleaseReset(ctx, "jti-1"))
		})
	}
}
