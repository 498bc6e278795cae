// Package loader bootstraps the engine from the Postgres documents table.
// The table is read once, in seq order, before the service reports ready:
//
//	CREATE TABLE documents (
//	    seq     BIGSERIAL PRIMARY KEY,
//	    id      INTEGER   NOT NULL,
//	    text    TEXT      NOT NULL DEFAULT '',
//	    status  TEXT      NOT NULL DEFAULT 'ACTUAL',
//	    ratings INTEGER[]
//	);
package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

const loadQuery = `SELECT id, text, status, ratings FROM documents ORDER BY seq`

// Rows is the subset of *sql.Rows the loader reads.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Querier is implemented by postgres.Client.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type DocumentAdder interface {
	AddDocument(ctx context.Context, source string, id int, text string, status document.Status, ratings []int) error
}

// Result summarizes one load.
type Result struct {
	Loaded   int
	Rejected int
	Elapsed  time.Duration
}

type Loader struct {
	open   func(ctx context.Context) (Rows, error)
	svc    DocumentAdder
	source string
	logger *slog.Logger
}

// New reads documents through db and adds them to svc under source.
func New(db Querier, svc DocumentAdder, source string) *Loader {
	return newLoader(func(ctx context.Context) (Rows, error) {
		rows, err := db.Query(ctx, loadQuery)
		if err != nil {
			return nil, err
		}
		return rows, nil
	}, svc, source)
}

func newLoader(open func(ctx context.Context) (Rows, error), svc DocumentAdder, source string) *Loader {
	return &Loader{
		open:   open,
		svc:    svc,
		source: source,
		logger: slog.Default().With("component", "postgres-loader"),
	}
}

// Load adds every row. Rows the engine rejects (duplicate ids, control
// characters, unknown statuses) are logged and counted; any other error
// aborts the load.
func (l *Loader) Load(ctx context.Context) (Result, error) {
	start := time.Now()
	var res Result

	rows, err := l.open(ctx)
	if err != nil {
		return res, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id      int
			text    string
			status  string
			ratings []int64
		)
		if err := rows.Scan(&id, &text, &status, pq.Array(&ratings)); err != nil {
			return res, fmt.Errorf("scanning document row: %w", err)
		}
		err := l.add(ctx, id, text, status, ratings)
		switch {
		case err == nil:
			res.Loaded++
		case errors.Is(err, apperrors.ErrInvalidInput):
			res.Rejected++
			l.logger.Warn("skipping document row", "doc_id", id, "error", err)
		default:
			return res, fmt.Errorf("loading document %d: %w", id, err)
		}
	}
	if err := rows.Err(); err != nil {
		return res, fmt.Errorf("iterating document rows: %w", err)
	}

	res.Elapsed = time.Since(start)
	l.logger.Info("documents loaded",
		"loaded", res.Loaded,
		"rejected", res.Rejected,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

func (l *Loader) add(ctx context.Context, id int, text, statusName string, ratings []int64) error {
	status, err := document.ParseStatus(statusName)
	if err != nil {
		return err
	}
	converted := make([]int, len(ratings))
	for i, r := range ratings {
		converted[i] = int(r)
	}
	return l.svc.AddDocument(ctx, l.source, id, text, status, converted)
}
