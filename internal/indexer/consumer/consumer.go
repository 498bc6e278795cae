// Package consumer reads ingest events from the Kafka documents topic and
// adds them to the search service.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
)

// DocumentAdder is the ingestion side of the search service.
type DocumentAdder interface {
	AddDocument(ctx context.Context, source string, id int, text string, status document.Status, ratings []int) error
}

// Runner is a started-until-cancelled message source.
type Runner interface {
	Start(ctx context.Context) error
}

// IndexConsumer drives ingestion from a Kafka consumer.
type IndexConsumer struct {
	consumer Runner
	logger   *slog.Logger
}

func New(kafkaConsumer Runner) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start consumes until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleMessage returns a MessageHandler that adds each event through svc
// under source. Events that can never succeed (undecodable payloads,
// invalid fields, duplicate ids, control characters) are logged and
// acknowledged; only unexpected errors leave the message uncommitted.
func HandleMessage(svc DocumentAdder, source string) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.IngestEvent](value)
		if err != nil {
			logger.Error("failed to decode ingest event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		if err := validator.ValidateIngestRequest(&event); err != nil {
			logger.Warn("dropping invalid ingest event", "key", string(key), "error", err)
			return nil
		}

		id := *event.ID
		logger.Debug("processing ingest event", "doc_id", id)
		err = svc.AddDocument(ctx, source, id, event.Text, event.StatusOrDefault(), event.Ratings)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, apperrors.ErrInvalidInput):
			logger.Warn("ingest event rejected", "doc_id", id, "error", err)
			return nil
		default:
			return fmt.Errorf("indexing document %d: %w", id, err)
		}
	}
}
