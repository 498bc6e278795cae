// Package handler exposes the search service over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/paginator"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/service"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
)

// SearchResponse is the body of GET /api/v1/search. Pagination fields are set
// only when a page was requested.
type SearchResponse struct {
	Query    string              `json:"query"`
	Filter   string              `json:"filter"`
	Total    int                 `json:"total"`
	Results  []document.Document `json:"results"`
	CacheHit bool                `json:"cache_hit"`
	Page     *int                `json:"page,omitempty"`
	PageSize *int                `json:"page_size,omitempty"`
	Pages    *int                `json:"pages,omitempty"`
}

type Handler struct {
	svc             *service.Service
	defaultPageSize int
	logger          *slog.Logger
}

func New(svc *service.Service, defaultPageSize int) *Handler {
	return &Handler{
		svc:             svc,
		defaultPageSize: defaultPageSize,
		logger:          slog.Default().With("component", "search-handler"),
	}
}

// Register mounts the query endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/search", h.Search)
	r.Get("/documents/count", h.DocumentCount)
	r.Get("/documents/at/{index}", h.DocumentAt)
	r.Get("/documents/{id}/words", h.WordFrequencies)
	r.Get("/documents/{id}/match", h.Match)
	r.Get("/terms", h.Terms)
	r.Get("/cache/stats", h.CacheStats)
	r.Post("/cache/invalidate", h.CacheInvalidate)
}

// Search handles GET /api/v1/search?q=&status=&min_rating=&page=&page_size=.
// status accepts a status name or "any"; the default is ACTUAL.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := parseFilter(q.Get("status"), q.Get("min_rating"))
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	result, hit, err := h.svc.Search(r.Context(), q.Get("q"), filter)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	resp := SearchResponse{
		Query:    result.Query,
		Filter:   filter.Key(),
		Total:    len(result.Results),
		Results:  result.Results,
		CacheHit: hit,
	}

	if q.Has("page") || q.Has("page_size") {
		page, err := intParam(q.Get("page"), 0, "page")
		if err != nil {
			h.writeAppError(w, r, err)
			return
		}
		size, err := intParam(q.Get("page_size"), h.defaultPageSize, "page_size")
		if err != nil {
			h.writeAppError(w, r, err)
			return
		}
		p, err := paginator.New(result.Results, size)
		if err != nil {
			h.writeAppError(w, r, err)
			return
		}
		pages := p.Len()
		resp.Results = []document.Document{}
		if pages > 0 || page != 0 {
			if resp.Results, err = p.Page(page); err != nil {
				h.writeAppError(w, r, err)
				return
			}
		}
		resp.Page, resp.PageSize, resp.Pages = &page, &size, &pages
	}
	if resp.Results == nil {
		resp.Results = []document.Document{}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) DocumentCount(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]int{"count": h.svc.DocumentCount()})
}

// DocumentAt handles GET /api/v1/documents/at/{index}: the id of the
// index-th added document.
func (h *Handler) DocumentAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeAppError(w, r, apperrors.InvalidInput("index must be an integer"))
		return
	}
	id, err := h.svc.DocumentID(index)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"index": index, "document_id": id})
}

func (h *Handler) WordFrequencies(w http.ResponseWriter, r *http.Request) {
	id, ok := h.docID(w, r)
	if !ok {
		return
	}
	freqs, err := h.svc.WordFrequencies(id)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"document_id": id, "words": freqs})
}

// Match handles GET /api/v1/documents/{id}/match?q=.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	id, ok := h.docID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.MatchDocument(r.URL.Query().Get("q"), id)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type termResponse struct {
	Term      string `json:"term"`
	Documents []int  `json:"documents"`
}

// Terms lists the vocabulary with the documents containing each term.
func (h *Handler) Terms(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.Terms()
	out := make([]termResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, termResponse{Term: e.Term, Documents: e.Postings.DocIDs()})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	hits, misses, err := h.svc.CacheStats()
	if errors.Is(err, service.ErrCacheDisabled) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	err := h.svc.InvalidateCache(r.Context())
	switch {
	case errors.Is(err, service.ErrCacheDisabled):
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
	case err != nil:
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
	default:
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
	}
}

func (h *Handler) docID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.writeAppError(w, r, apperrors.InvalidInput("document id must be an integer"))
		return 0, false
	}
	return id, true
}

func parseFilter(status, minRating string) (service.Filter, error) {
	var f service.Filter
	switch status {
	case "":
	case "any", "ANY":
		f.AnyStatus = true
	default:
		s, err := document.ParseStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = &s
	}
	if minRating != "" {
		v, err := strconv.Atoi(minRating)
		if err != nil {
			return f, apperrors.InvalidInput("min_rating must be an integer")
		}
		f.MinRating = &v
	}
	return f, nil
}

func intParam(raw string, def int, name string) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput("%s must be an integer", name)
	}
	return v, nil
}

func (h *Handler) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", r.URL.Path, "error", err)
		h.writeError(w, status, "internal error")
		return
	}
	log.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	h.writeError(w, status, err.Error())
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
