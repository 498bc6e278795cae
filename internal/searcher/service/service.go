// Package service serializes access to the search engine. The engine and
// executor are not safe for concurrent use; every caller (HTTP, Kafka,
// startup loader) goes through a Service, which takes a write lock for
// ingestion and a read lock for queries. It also owns the cross-cutting
// concerns around each operation: result caching, metrics and analytics.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
)

// Ingestion sources, used as metric labels and in analytics events.
const (
	SourceHTTP     = "http"
	SourceKafka    = "kafka"
	SourcePostgres = "postgres"
	SourceCLI      = "cli"
)

// ErrCacheDisabled is returned by cache operations when no cache is wired.
var ErrCacheDisabled = errors.New("query cache is disabled")

var errNotReady = errors.New("startup ingestion in progress")

// flushRetryInterval spaces out flush attempts made by searches while the
// cache holds entries that predate an insert.
const flushRetryInterval = time.Second

type Service struct {
	mu        sync.RWMutex
	engine    *indexer.Engine
	exec      *executor.Executor
	cache     *cache.QueryCache
	metrics   *metrics.Metrics
	collector *analytics.Collector
	ready     atomic.Bool

	// cacheDirty is set when a flush after an insert failed. While it is set
	// searches neither read nor write the cache.
	cacheDirty atomic.Bool
	flushMu    sync.Mutex
	lastFlush  time.Time
	flushRetry time.Duration
}

// New wraps engine. queryCache, m and collector are optional.
func New(engine *indexer.Engine, queryCache *cache.QueryCache, m *metrics.Metrics, collector *analytics.Collector) *Service {
	return &Service{
		engine:     engine,
		exec:       executor.New(engine),
		cache:      queryCache,
		metrics:    m,
		collector:  collector,
		flushRetry: flushRetryInterval,
	}
}

// AddDocument indexes a document on behalf of source. On success the query
// cache is dropped before the write lock is released, so no reader can see a
// result computed without the new document. If the flush fails the cache is
// bypassed until a later flush succeeds.
func (s *Service) AddDocument(ctx context.Context, source string, id int, text string, status document.Status, ratings []int) error {
	start := time.Now()
	log := logger.FromContext(ctx)

	s.mu.Lock()
	err := s.engine.AddDocument(id, text, status, ratings)
	if err == nil && s.cache != nil {
		if cerr := s.cache.Invalidate(ctx); cerr != nil {
			s.cacheDirty.Store(true)
			log.Warn("cache invalidation after ingest failed, bypassing cache", "doc_id", id, "error", cerr)
		} else {
			s.cacheDirty.Store(false)
		}
	}
	docs, terms := s.engine.DocumentCount(), s.engine.TermCount()
	s.mu.Unlock()

	if s.metrics != nil {
		if err != nil {
			s.metrics.DocsRejectedTotal.WithLabelValues(source).Inc()
		} else {
			s.metrics.DocsIndexedTotal.Inc()
			s.metrics.IndexDocuments.Set(float64(docs))
			s.metrics.IndexTerms.Set(float64(terms))
		}
	}
	if s.collector != nil {
		s.collector.Track(analytics.NewIndexEvent(id, source, status.String(), time.Since(start), err))
	}
	if err != nil {
		log.Info("document rejected", "doc_id", id, "source", source, "error", err)
		return err
	}
	log.Debug("document added", "doc_id", id, "source", source, "status", status)
	return nil
}

// Search runs raw under filter, consulting the cache when one is wired. The
// bool reports whether the result came from the cache.
func (s *Service) Search(ctx context.Context, raw string, f Filter) (*executor.SearchResult, bool, error) {
	start := time.Now()
	filterKey := f.Key()
	compute := func() (*executor.SearchResult, error) {
		return s.exec.Search(raw, f.Predicate())
	}

	s.mu.RLock()
	var (
		result *executor.SearchResult
		hit    bool
		err    error
	)
	if s.cacheUsable(ctx) {
		result, hit, err = s.cache.GetOrCompute(ctx, raw, filterKey, compute)
	} else {
		result, err = compute()
	}
	s.mu.RUnlock()

	latency := time.Since(start)
	s.observeSearch(result, hit, err, latency)
	if err != nil {
		return nil, false, err
	}

	logger.FromContext(ctx).Info("search completed",
		"query", raw,
		"filter", filterKey,
		"returned", len(result.Results),
		"cache_hit", hit,
		"latency_ms", latency.Milliseconds(),
	)
	if s.collector != nil {
		ev := analytics.NewSearchEvent(raw, filterKey, len(result.Results), latency, hit)
		ev.RequestID = logger.RequestID(ctx)
		s.collector.Track(ev)
	}
	return result, hit, nil
}

// cacheUsable reports whether a search may go through the cache. A dirty
// cache gets one flush attempt per flushRetry; callers hold the read lock,
// so no insert can race the flush.
func (s *Service) cacheUsable(ctx context.Context) bool {
	if s.cache == nil {
		return false
	}
	if !s.cacheDirty.Load() {
		return true
	}
	if !s.flushMu.TryLock() {
		return false
	}
	defer s.flushMu.Unlock()
	if !s.cacheDirty.Load() {
		return true
	}
	if time.Since(s.lastFlush) < s.flushRetry {
		return false
	}
	s.lastFlush = time.Now()
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.FromContext(ctx).Debug("cache still dirty", "error", err)
		return false
	}
	s.cacheDirty.Store(false)
	logger.FromContext(ctx).Info("cache flushed after earlier failure")
	return true
}

func (s *Service) observeSearch(result *executor.SearchResult, hit bool, err error, latency time.Duration) {
	if s.metrics == nil {
		return
	}
	switch {
	case err != nil:
		s.metrics.SearchQueriesTotal.WithLabelValues("invalid").Inc()
		return
	case len(result.Results) == 0:
		s.metrics.SearchQueriesTotal.WithLabelValues("zero_result").Inc()
	default:
		s.metrics.SearchQueriesTotal.WithLabelValues("hit").Inc()
	}
	cacheStatus := "disabled"
	if s.cache != nil {
		if hit {
			cacheStatus = "hit"
			s.metrics.CacheHitsTotal.Inc()
		} else {
			cacheStatus = "miss"
			s.metrics.CacheMissesTotal.Inc()
		}
	}
	s.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	s.metrics.SearchResultsCount.Observe(float64(len(result.Results)))
}

// FindTopDocuments returns the best ACTUAL documents for raw.
func (s *Service) FindTopDocuments(raw string) ([]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exec.FindTopDocuments(raw)
}

func (s *Service) FindTopDocumentsByStatus(raw string, status document.Status) ([]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exec.FindTopDocumentsByStatus(raw, status)
}

// FindTopDocumentsWith ranks with an arbitrary predicate. Such results are
// never cached.
func (s *Service) FindTopDocumentsWith(raw string, filter document.Predicate) ([]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exec.FindTopDocumentsWith(raw, filter)
}

func (s *Service) MatchDocument(raw string, id int) (*executor.MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exec.MatchDocument(raw, id)
}

func (s *Service) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.DocumentCount()
}

// DocumentID returns the id of the i-th added document.
func (s *Service) DocumentID(i int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.DocumentID(i)
}

// WordFrequencies returns the term frequencies of document id.
func (s *Service) WordFrequencies(id int) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.engine.Document(id); !ok {
		return nil, apperrors.Newf(apperrors.ErrDocumentNotFound, 404, "there is no document with id %d", id)
	}
	return s.engine.WordFrequencies(id), nil
}

// Terms returns every indexed term with its postings.
func (s *Service) Terms() []index.TermEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Snapshot()
}

func (s *Service) CacheEnabled() bool {
	return s.cache != nil
}

func (s *Service) CacheStats() (hits, misses int64, err error) {
	if s.cache == nil {
		return 0, 0, ErrCacheDisabled
	}
	hits, misses = s.cache.Stats()
	return hits, misses, nil
}

// InvalidateCache drops every cached result. A successful flush also clears
// the dirty state left by a failed flush during ingestion.
func (s *Service) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return ErrCacheDisabled
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	if err := s.cache.Invalidate(ctx); err != nil {
		return err
	}
	s.cacheDirty.Store(false)
	return nil
}

// MarkReady flags the end of startup ingestion.
func (s *Service) MarkReady() {
	s.ready.Store(true)
}

// Ping fails until MarkReady has been called, so readiness probes hold
// traffic back while the bootstrap load is running.
func (s *Service) Ping(context.Context) error {
	if !s.ready.Load() {
		return errNotReady
	}
	return nil
}
