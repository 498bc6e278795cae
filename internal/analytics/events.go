package analytics

import "time"

type EventType string

const (
	EventSearch   EventType = "search"
	EventIndexDoc EventType = "index_document"
)

// SearchEvent describes one ranked query as served to a client.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Filter    string    `json:"filter"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// IndexEvent describes one ingestion attempt. Rejected documents carry the
// reason in Error.
type IndexEvent struct {
	Type       EventType `json:"type"`
	DocumentID int       `json:"document_id"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	Accepted   bool      `json:"accepted"`
	Error      string    `json:"error,omitempty"`
	LatencyMs  int64     `json:"latency_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewSearchEvent stamps a SearchEvent with the current time.
func NewSearchEvent(query, filter string, returned int, latency time.Duration, cacheHit bool) SearchEvent {
	return SearchEvent{
		Type:      EventSearch,
		Query:     query,
		Filter:    filter,
		Returned:  returned,
		LatencyMs: latency.Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexEvent stamps an IndexEvent; a nil err marks it accepted.
func NewIndexEvent(id int, source, status string, latency time.Duration, err error) IndexEvent {
	ev := IndexEvent{
		Type:       EventIndexDoc,
		DocumentID: id,
		Source:     source,
		Status:     status,
		Accepted:   err == nil,
		LatencyMs:  latency.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}
