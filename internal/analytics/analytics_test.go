package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
)

type fakePublisher struct {
	mu      sync.Mutex
	batches [][]kafka.Event
}

func (f *fakePublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]kafka.Event, len(events))
	copy(cp, events)
	f.batches = append(f.batches, cp)
	return nil
}

func (f *fakePublisher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func TestAggregatorStats(t *testing.T) {
	agg := NewAggregator()
	agg.Record(NewSearchEvent("curly dog", "ACTUAL", 3, 4*time.Millisecond, false))
	agg.Record(NewSearchEvent("curly dog", "ACTUAL", 3, 2*time.Millisecond, true))
	agg.Record(NewSearchEvent("parrot", "ACTUAL", 0, 6*time.Millisecond, false))
	agg.Record(NewIndexEvent(1, "http", "ACTUAL", 0, nil))
	agg.Record(NewIndexEvent(1, "http", "ACTUAL", 0, errors.New("duplicate")))
	agg.Record("ignored")

	s := agg.Stats()
	if s.TotalSearches != 3 || s.CacheHits != 1 || s.CacheMisses != 2 || s.ZeroResultCount != 1 {
		t.Errorf("search counters = %+v", s)
	}
	if s.TotalDocIndexed != 1 || s.TotalDocRejected != 1 {
		t.Errorf("index counters = %d/%d", s.TotalDocIndexed, s.TotalDocRejected)
	}
	if s.AvgLatencyMs != 4 || s.P50LatencyMs != 4 || s.P99LatencyMs != 6 {
		t.Errorf("latency = avg %v p50 %d p99 %d", s.AvgLatencyMs, s.P50LatencyMs, s.P99LatencyMs)
	}
	if len(s.TopQueries) != 2 || s.TopQueries[0] != (QueryCount{Query: "curly dog", Count: 2}) {
		t.Errorf("top queries = %+v", s.TopQueries)
	}
	if len(s.ZeroResultQueries) != 1 || s.ZeroResultQueries[0].Query != "parrot" {
		t.Errorf("zero result queries = %+v", s.ZeroResultQueries)
	}
}

func TestLatencyWindowIsBounded(t *testing.T) {
	agg := NewAggregator()
	for i := 0; i < maxLatencySamples+10; i++ {
		agg.Record(SearchEvent{Query: "q", Returned: 1, LatencyMs: int64(i)})
	}
	if len(agg.latencies) != maxLatencySamples {
		t.Errorf("kept %d samples", len(agg.latencies))
	}
}

func TestCollectorFlushesOnClose(t *testing.T) {
	pub := &fakePublisher{}
	agg := NewAggregator()
	c := NewCollector(pub, agg, CollectorOptions{BatchSize: 2, FlushInterval: time.Hour})
	c.Start(context.Background())

	for i := 0; i < 5; i++ {
		c.Track(NewIndexEvent(i, "kafka", "ACTUAL", 0, nil))
	}
	c.Close()
	c.Track(NewIndexEvent(99, "kafka", "ACTUAL", 0, nil))

	if got := pub.total(); got != 5 {
		t.Errorf("published %d events, want 5", got)
	}
	if got := agg.Stats().TotalDocIndexed; got != 6 {
		t.Errorf("aggregated %d index events, want 6", got)
	}
	if key := pub.batches[0][0].Key; key != string(EventIndexDoc) {
		t.Errorf("event key = %q", key)
	}
}

func TestCollectorWithoutPublisher(t *testing.T) {
	agg := NewAggregator()
	c := NewCollector(nil, agg, CollectorOptions{})
	c.Start(context.Background())
	c.Track(NewSearchEvent("cat", "ANY", 1, 0, false))
	c.Close()
	if agg.Stats().TotalSearches != 1 {
		t.Error("event not aggregated")
	}
}

func TestCollectorDropsWhenFull(t *testing.T) {
	c := NewCollector(&fakePublisher{}, nil, CollectorOptions{BufferSize: 1})
	c.Track(SearchEvent{})
	c.Track(SearchEvent{})
	if c.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", c.Dropped())
	}
	c.Close()
}

func TestStatsHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Record(NewSearchEvent("cat", "ACTUAL", 1, 0, false))
	rec := httptest.NewRecorder()
	NewHandler(agg).Stats(rec, httptest.NewRequest("GET", "/api/v1/analytics/stats", nil))

	var got AggregatedStats
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.TotalSearches != 1 {
		t.Errorf("total_searches = %d", got.TotalSearches)
	}
}
