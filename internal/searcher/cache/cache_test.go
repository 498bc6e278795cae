package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/resilience"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		a, b string
		same bool
	}{
		{"curly dog", "dog  curly", true},
		{"dog -cat", "-cat dog dog", true},
		{"dog -cat", "cat -dog", false},
		{"dog", "dogs", false},
	}
	for _, tt := range tests {
		got := buildKey(tt.a, "ACTUAL") == buildKey(tt.b, "ACTUAL")
		if got != tt.same {
			t.Errorf("same key for %q and %q = %v, want %v", tt.a, tt.b, got, tt.same)
		}
	}
	if buildKey("dog", "ACTUAL") == buildKey("dog", "BANNED") {
		t.Error("filter must be part of the key")
	}
}

func TestGetOrCompute(t *testing.T) {
	c := New(newMemoryStore(), time.Minute)
	ctx := context.Background()
	var calls atomic.Int32
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		return &executor.SearchResult{
			Query:   "curly dog",
			Results: []document.Document{{ID: 2, Relevance: 0.4, Rating: 2}},
		}, nil
	}

	res, hit, err := c.GetOrCompute(ctx, "curly dog", "ACTUAL", compute)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	res2, hit, err := c.GetOrCompute(ctx, "dog curly", "ACTUAL", compute)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if calls.Load() != 1 {
		t.Errorf("compute called %d times, want 1", calls.Load())
	}
	if res2.Results[0] != res.Results[0] {
		t.Errorf("cached result %+v differs from %+v", res2.Results[0], res.Results[0])
	}
	if res2.Query != "dog curly" {
		t.Errorf("cached result query = %q, want the caller's %q", res2.Query, "dog curly")
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.GetOrCompute(ctx, "curly dog", "ACTUAL", compute); hit {
		t.Error("expected miss after invalidation")
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 2 {
		t.Errorf("stats = %d hits, %d misses; want 1, 2", hits, misses)
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute)
	boom := errors.New("bad query")
	_, _, err := c.GetOrCompute(context.Background(), "cat -", "ACTUAL", func() (*executor.SearchResult, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(store.data) != 0 {
		t.Errorf("store has %d entries after failed compute", len(store.data))
	}
}

type failingStore struct {
	memoryStore
	calls atomic.Int32
}

func (f *failingStore) Get(context.Context, string) ([]byte, error) {
	f.calls.Add(1)
	return nil, errors.New("connection refused")
}

func (f *failingStore) Set(context.Context, string, []byte, time.Duration) error {
	f.calls.Add(1)
	return errors.New("connection refused")
}

func TestBreakerSkipsFailingStore(t *testing.T) {
	inner := &failingStore{memoryStore: memoryStore{data: make(map[string][]byte)}}
	c := New(WithBreaker(inner, resilience.CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour}), time.Minute)
	compute := func() (*executor.SearchResult, error) {
		return &executor.SearchResult{Query: "cat"}, nil
	}
	for i := 0; i < 5; i++ {
		if _, _, err := c.GetOrCompute(context.Background(), "cat", "ACTUAL", compute); err != nil {
			t.Fatal(err)
		}
	}
	if got := inner.calls.Load(); got != 2 {
		t.Errorf("store reached %d times, want 2", got)
	}
}

func TestBreakerTreatsMissAsSuccess(t *testing.T) {
	store := WithBreaker(newMemoryStore(), resilience.CircuitBreakerConfig{FailureThreshold: 1})
	for i := 0; i < 3; i++ {
		if _, err := store.Get(context.Background(), "absent"); !errors.Is(err, redis.Nil) {
			t.Fatalf("err = %v, want redis.Nil", err)
		}
	}
}
