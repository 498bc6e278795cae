package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/service"
)

// corpus is the YAML file format read by the query, match, terms and publish
// commands.
type corpus struct {
	StopWords string                    `yaml:"stopWords"`
	Documents []ingestion.IngestRequest `yaml:"documents"`
}

func intPtr(v int) *int { return &v }

func statusPtr(s document.Status) *document.Status { return &s }

// sampleCorpus is the built-in demo data set.
func sampleCorpus() *corpus {
	return &corpus{
		StopWords: "and with",
		Documents: []ingestion.IngestRequest{
			{ID: intPtr(1), Text: "funny pet and nasty rat", Status: statusPtr(document.StatusActual), Ratings: []int{7, 2, 7}},
			{ID: intPtr(2), Text: "funny pet with curly hair", Status: statusPtr(document.StatusActual), Ratings: []int{1, 2, 3}},
			{ID: intPtr(3), Text: "big cat nasty hair", Status: statusPtr(document.StatusActual), Ratings: []int{1, 2, 8}},
			{ID: intPtr(4), Text: "big dog cat Vladislav", Status: statusPtr(document.StatusActual), Ratings: []int{1, 3, 2}},
			{ID: intPtr(5), Text: "big dog hamster Borya", Status: statusPtr(document.StatusActual), Ratings: []int{1, 1, 1}},
		},
	}
}

func loadCorpus(path string) (*corpus, error) {
	if path == "" {
		return sampleCorpus(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}
	var c corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", path, err)
	}
	return &c, nil
}

// build indexes the corpus. Documents the engine rejects are reported through
// reject and skipped.
func (c *corpus) build(ctx context.Context, reject func(req ingestion.IngestRequest, err error)) (*service.Service, error) {
	stop, err := stopwords.FromText(c.StopWords)
	if err != nil {
		return nil, err
	}
	svc := service.New(indexer.NewEngine(stop), nil, nil, nil)
	for _, req := range c.Documents {
		if req.ID == nil {
			reject(req, fmt.Errorf("document without id"))
			continue
		}
		if err := svc.AddDocument(ctx, service.SourceCLI, *req.ID, req.Text, req.StatusOrDefault(), req.Ratings); err != nil {
			reject(req, err)
		}
	}
	svc.MarkReady()
	return svc, nil
}
