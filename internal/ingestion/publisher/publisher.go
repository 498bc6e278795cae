// Package publisher writes ingest events to the Kafka documents topic. Every
// event carries the same key so the whole feed lands on one partition and
// consumers see documents in publication order, which fixes their insertion
// order in the engine.
package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
)

const feedKey = "documents"

// BatchPublisher is implemented by kafka.Producer.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

type Publisher struct {
	producer BatchPublisher
	logger   *slog.Logger
}

func New(producer BatchPublisher) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   slog.Default().With("component", "publisher"),
	}
}

// Publish validates every request and, only if all pass, publishes them in
// order as a single batch.
func (p *Publisher) Publish(ctx context.Context, reqs []ingestion.IngestRequest) error {
	events := make([]kafka.Event, 0, len(reqs))
	for i := range reqs {
		if err := validator.ValidateIngestRequest(&reqs[i]); err != nil {
			return fmt.Errorf("document #%d: %w", i, err)
		}
		events = append(events, kafka.Event{Key: feedKey, Value: reqs[i]})
	}
	if err := p.producer.PublishBatch(ctx, events); err != nil {
		return fmt.Errorf("publishing %d documents: %w", len(events), err)
	}
	p.logger.Info("documents published", "count", len(events))
	return nil
}
