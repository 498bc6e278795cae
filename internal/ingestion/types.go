// Package ingestion feeds documents into the search service from its three
// sources: the HTTP endpoint, the Kafka documents topic and the Postgres
// bootstrap table. All of them share the IngestRequest shape.
package ingestion

import "github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"

// IngestRequest is one document to add. It is the JSON body of
// POST /api/v1/documents and the payload of the documents topic. A missing
// status means ACTUAL.
type IngestRequest struct {
	ID      *int             `json:"id" yaml:"id"`
	Text    string           `json:"text" yaml:"text"`
	Status  *document.Status `json:"status,omitempty" yaml:"status,omitempty"`
	Ratings []int            `json:"ratings" yaml:"ratings"`
}

// IngestEvent is the Kafka message form of IngestRequest.
type IngestEvent = IngestRequest

// StatusOrDefault returns the requested status, ACTUAL when unset.
func (r *IngestRequest) StatusOrDefault() document.Status {
	if r.Status == nil {
		return document.StatusActual
	}
	return *r.Status
}

// IngestResponse is returned once a document is indexed.
type IngestResponse struct {
	DocumentID    int    `json:"document_id"`
	Status        string `json:"status"`
	DocumentCount int    `json:"document_count"`
}
