package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimitRedisRepository implements rate limiting counter storage with Redis.
type RateLimitRedisRepository struct {
	r redis.Cmdable
}

func NewRateLimitRedisRepository(r redis.Cmdable) *RateLimitRedisRepository {
	return &RateLimitRedisRepository{r: r}
}

// IncrementWindow increments a per-client counter for a fixed window.
func (repo *RateLimitRedisRepository) IncrementWindow(ctx context.Context, client string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	windowStart := time.Now().Truncate(window)
	key := fmt.Sprintf("%s:%s:%d", keyPrefix, client, windowStart.Unix())
	pipe := repo.r.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, windowStart, err
	}
	return int(incr.Val()), windowStart, nil
}

type windowCounter struct {
	start time.Time
	count int
}

// RateLimitMemoryRepository keeps fixed-window counters in process memory.
// Counters from past windows are dropped when their client is next seen or on the next window roll.
type RateLimitMemoryRepository struct {
	mu       sync.Mutex
	counters map[string]windowCounter
	now      func() time.Time
	lastRoll time.Time
}

func NewRateLimitMemoryRepository() *RateLimitMemoryRepository {
	return &RateLimitMemoryRepository{counters: make(map[string]windowCounter), now: time.Now}
}

// IncrementWindow implements ports.RateLimitRepository. ttl is implied by the window here.
func (repo *RateLimitMemoryRepository) IncrementWindow(_ context.Context, client string, window time.Duration, keyPrefix string, _ time.Duration) (int, time.Time, error) {
	windowStart := repo.now().Truncate(window)
	key := keyPrefix + ":" + client

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if windowStart.After(repo.lastRoll) {
		for k, wc := range repo.counters {
			if wc.start.Before(windowStart) {
				delete(repo.counters, k)
			}
		}
		repo.lastRoll = windowStart
	}
	wc := repo.counters[key]
	if !wc.start.Equal(windowStart) {
		wc = windowCounter{start: windowStart}
	}
	wc.count++
	repo.counters[key] = wc
	return wc.count, windowStart, nil
}
