package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/placeproxy/internal/application/services"
	"github.com/avatarctic/placeproxy/internal/infrastructure/repositories"
)

type failingWindowRepo struct{}

func (failingWindowRepo) IncrementWindow(ctx context.Context, client string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	return 0, time.Now(), errors.New("redis down")
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	svc := impl.NewRateLimiterService(repositories.NewRateLimitMemoryRepository(), &impl.RateLimiterConfig{
		DefaultRequestsPerMinute: 2,
		BurstMultiplier:          1.5,
		Window:                   time.Hour,
	}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, limit, _, err := svc.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 2, limit)
	}
	allowed, remaining, _, _, err := svc.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, _, _, err = svc.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed, "clients are counted separately")
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	svc := impl.NewRateLimiterService(failingWindowRepo{}, nil, nil)
	allowed, _, _, _, err := svc.Allow(context.Background(), "10.0.0.1")
	require.Error(t, err)
	assert.True(t, allowed)
}
