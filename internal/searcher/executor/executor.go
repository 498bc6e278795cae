package executor

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// SearchResult is the outcome of one ranked query.
type SearchResult struct {
	Query   string              `json:"query"`
	Results []document.Document `json:"results"`
}

// MatchResult lists the query terms found in one document.
type MatchResult struct {
	DocumentID int             `json:"document_id"`
	Words      []string        `json:"words"`
	Status     document.Status `json:"status"`
}

type Executor struct {
	engine *indexer.Engine
}

func New(engine *indexer.Engine) *Executor {
	return &Executor{
		engine: engine,
	}
}

// FindTopDocuments returns the best ACTUAL documents for raw.
func (e *Executor) FindTopDocuments(raw string) ([]document.Document, error) {
	return e.FindTopDocumentsByStatus(raw, document.StatusActual)
}

// FindTopDocumentsByStatus returns the best documents in the given status.
func (e *Executor) FindTopDocumentsByStatus(raw string, status document.Status) ([]document.Document, error) {
	return e.FindTopDocumentsWith(raw, document.WithStatus(status))
}

// FindTopDocumentsWith returns at most ranker.MaxResults documents accepted by
// filter. A nil filter accepts every document. Only malformed queries fail;
// unknown terms are ignored.
func (e *Executor) FindTopDocumentsWith(raw string, filter document.Predicate) ([]document.Document, error) {
	plan, err := parser.Parse(raw, e.engine.StopWords())
	if err != nil {
		return nil, err
	}
	include := e.lookup(plan.Plus)
	exclude := e.lookup(plan.Minus)

	params := ranker.RankParams{TotalDocs: e.engine.DocumentCount()}
	getDocInfo := func(docID int) ranker.DocInfo {
		rec, _ := e.engine.Document(docID)
		return ranker.DocInfo{Rating: rec.Rating, Status: rec.Status}
	}
	ranked := ranker.Rank(include, exclude, params, getDocInfo, filter, ranker.MaxResults)
	e.debug("query executed",
		"query", plan.RawQuery,
		"plus", plan.Plus,
		"minus", plan.Minus,
		"results", len(ranked),
	)
	return ranked, nil
}

func (e *Executor) debug(msg string, args ...any) {
	l := slog.Default()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.With("component", "query-executor").Debug(msg, args...)
}

// Search wraps FindTopDocumentsWith in a SearchResult.
func (e *Executor) Search(raw string, filter document.Predicate) (*SearchResult, error) {
	docs, err := e.FindTopDocumentsWith(raw, filter)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Query: raw, Results: docs}, nil
}

// MatchDocument returns the inclusion terms of raw present in document id,
// in lexical order, with the document's status. If any exclusion term is
// present the word list is empty.
func (e *Executor) MatchDocument(raw string, id int) (*MatchResult, error) {
	rec, ok := e.engine.Document(id)
	if !ok {
		return nil, apperrors.InvalidInput("there is no document with id %d", id)
	}
	plan, err := parser.Parse(raw, e.engine.StopWords())
	if err != nil {
		return nil, err
	}
	result := &MatchResult{
		DocumentID: id,
		Words:      make([]string, 0, len(plan.Plus)),
		Status:     rec.Status,
	}
	for _, term := range plan.Minus {
		if e.engine.Contains(term, id) {
			return result, nil
		}
	}
	for _, term := range plan.Plus {
		if e.engine.Contains(term, id) {
			result.Words = append(result.Words, term)
		}
	}
	return result, nil
}

func (e *Executor) lookup(terms []string) []ranker.TermPostings {
	out := make([]ranker.TermPostings, 0, len(terms))
	for _, term := range terms {
		postings := e.engine.Search(term)
		if len(postings) == 0 {
			continue
		}
		out = append(out, ranker.TermPostings{Term: term, Postings: postings})
	}
	return out
}
