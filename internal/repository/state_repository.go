package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateRepository records authorization states that have already been
// presented to the callback, so each state is accepted at most once.
type StateRepository interface {
	// Consume marks state as used. It returns ErrStateNotPending when the
	// state was consumed before and the mark has not yet expired.
	Consume(ctx context.Context, state string, ttl time.Duration) error
}

type redisStateRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisStateRepository(client *redis.Client, prefix string) StateRepository {
	return &redisStateRepository{client: client, prefix: prefix}
}

func (r *redisStateRepository) Consume(ctx context.Context, state string, ttl time.Duration) error {
	ok, err := r.client.SetNX(ctx, r.prefix+state, 1, ttl).Result()
	if err != nil {
		return fmt.Errorf("consume oauth state: %w", err)
	}
	if !ok {
		return ErrStateNotPending
	}
	return nil
}

type memoryStateRepository struct {
	mu       sync.Mutex
	consumed map[string]time.Time
	now      func() time.Time
}

// NewMemoryStateRepository keeps consumed states in process memory. It is
// used when no redis is configured.
func NewMemoryStateRepository() StateRepository {
	return &memoryStateRepository{
		consumed: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (r *memoryStateRepository) Consume(_ context.Context, state string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for s, expiresAt := range r.consumed {
		if now.After(expiresAt) {
			delete(r.consumed, s)
		}
	}

	if _, ok := r.consumed[state]; ok {
		return ErrStateNotPending
	}
	r.consumed[state] = now.Add(ttl)
	return nil
}
