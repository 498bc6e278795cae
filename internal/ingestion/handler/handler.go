package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
)

const maxBodyBytes = 2 << 20

// Service is what the handler needs from the search service.
type Service interface {
	AddDocument(ctx context.Context, source string, id int, text string, status document.Status, ratings []int) error
	DocumentCount() int
}

type Handler struct {
	svc    Service
	source string
	logger *slog.Logger
}

func New(svc Service, source string) *Handler {
	return &Handler{
		svc:    svc,
		source: source,
		logger: slog.Default().With("component", "ingestion-handler"),
	}
}

// Ingest handles POST /api/v1/documents.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req ingestion.IngestRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := validator.ValidateIngestRequest(&req); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := req.StatusOrDefault()
	if err := h.svc.AddDocument(ctx, h.source, *req.ID, req.Text, status, req.Ratings); err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Warn("ingestion failed",
			"doc_id", *req.ID,
			"error", err,
			"status_code", statusCode,
		)
		h.writeError(w, statusCode, err.Error())
		return
	}
	log.Info("document ingested", "doc_id", *req.ID, "status", status)
	h.writeJSON(w, http.StatusCreated, ingestion.IngestResponse{
		DocumentID:    *req.ID,
		Status:        status.String(),
		DocumentCount: h.svc.DocumentCount(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
