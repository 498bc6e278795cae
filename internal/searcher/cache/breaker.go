package cache

import (
	"context"
	"time"

	pkgredis "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/resilience"
)

// breakerStore short-circuits Store calls while Redis is failing, so an
// unreachable cache costs a search nothing instead of a network timeout.
type breakerStore struct {
	next Store
	cb   *resilience.CircuitBreaker
}

// WithBreaker guards store with a circuit breaker. Key misses are not
// failures.
func WithBreaker(store Store, cfg resilience.CircuitBreakerConfig) Store {
	cfg.IsFailure = func(err error) bool {
		return err != nil && !pkgredis.IsNilError(err)
	}
	return &breakerStore{
		next: store,
		cb:   resilience.NewCircuitBreaker("query-cache", cfg),
	}
}

func (b *breakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.cb.Execute(func() error {
		var err error
		data, err = b.next.Get(ctx, key)
		return err
	})
	return data, err
}

func (b *breakerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.cb.Execute(func() error {
		return b.next.Set(ctx, key, value, ttl)
	})
}

// FlushByPattern bypasses the breaker: invalidation must be attempted even
// while reads are being skipped.
func (b *breakerStore) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	return b.next.FlushByPattern(ctx, pattern)
}
