package indexer

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
)

// Engine owns the inverted index and the document store. Documents are
// append-only. Engine does no locking of its own.
type Engine struct {
	stop     *stopwords.Set
	memIndex *index.MemoryIndex
	docs     *store.Store
}

func NewEngine(stop *stopwords.Set) *Engine {
	if stop == nil {
		stop = stopwords.Empty()
	}
	return &Engine{
		stop:     stop,
		memIndex: index.NewMemoryIndex(),
		docs:     store.New(),
	}
}

// debug logs through the current default logger, so an engine built before
// logging is configured still follows the configured handler.
func (e *Engine) debug(msg string, args ...any) {
	l := slog.Default()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.With("component", "indexer").Debug(msg, args...)
}

// AddDocument indexes text under id. Every check runs before the index or
// store is touched, so a failed call leaves the engine unchanged.
func (e *Engine) AddDocument(id int, text string, status document.Status, ratings []int) error {
	if err := e.docs.CheckID(id); err != nil {
		e.debug("document rejected", "doc_id", id, "error", err)
		return err
	}
	words, err := tokenizer.SplitValid(text)
	if err != nil {
		e.debug("document rejected", "doc_id", id, "error", err)
		return err
	}
	words = e.stop.Filter(words)

	e.memIndex.AddDocument(id, words)
	if err := e.docs.Add(id, store.Record{
		Rating: store.AverageRating(ratings),
		Status: status,
	}); err != nil {
		return err
	}
	e.debug("document indexed",
		"doc_id", id,
		"token_count", len(words),
		"status", status,
	)
	return nil
}

func (e *Engine) DocumentCount() int {
	return e.docs.Count()
}

// DocumentID returns the id of the i-th added document.
func (e *Engine) DocumentID(i int) (int, error) {
	return e.docs.IDAt(i)
}

// IDs returns document ids in insertion order.
func (e *Engine) IDs() []int {
	return e.docs.IDs()
}

func (e *Engine) Document(id int) (store.Record, bool) {
	return e.docs.Get(id)
}

// WordFrequencies returns the term frequencies of one document, empty for an
// unknown id.
func (e *Engine) WordFrequencies(id int) map[string]float64 {
	return e.memIndex.TermFrequencies(id)
}

func (e *Engine) Search(term string) index.PostingList {
	return e.memIndex.Search(term)
}

func (e *Engine) DocFreq(term string) int {
	return e.memIndex.DocFreq(term)
}

func (e *Engine) Contains(term string, id int) bool {
	return e.memIndex.Contains(term, id)
}

func (e *Engine) Snapshot() []index.TermEntry {
	return e.memIndex.Snapshot()
}

func (e *Engine) TermCount() int {
	return e.memIndex.TermCount()
}

func (e *Engine) IndexSize() int64 {
	return e.memIndex.Size()
}

func (e *Engine) StopWords() *stopwords.Set {
	return e.stop
}
