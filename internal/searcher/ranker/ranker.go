package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
)

const (
	// MaxResults caps the number of documents a query returns.
	MaxResults = 5
	// Epsilon is the relevance difference under which two documents are
	// ordered by rating instead.
	Epsilon = 1e-6
)

// TermPostings pairs a query term with its postings.
type TermPostings struct {
	Term     string
	Postings index.PostingList
}

type RankParams struct {
	TotalDocs int
}

type DocInfo struct {
	Rating int
	Status document.Status
}

// Rank scores candidates with TF-IDF. Documents failing filter are skipped
// while scoring; any document listed in exclude is dropped regardless of
// filter. The result is ordered by relevance, then rating, then ascending id,
// and cut to limit when limit > 0.
func Rank(
	include []TermPostings,
	exclude []TermPostings,
	params RankParams,
	getDocInfo func(docID int) DocInfo,
	filter document.Predicate,
	limit int,
) []document.Document {
	if filter == nil {
		filter = document.Any
	}
	scores := make(map[int]float64)
	for _, tp := range include {
		if len(tp.Postings) == 0 {
			continue
		}
		idf := computeIDF(params.TotalDocs, len(tp.Postings))
		for _, posting := range tp.Postings {
			info := getDocInfo(posting.DocID)
			if filter(posting.DocID, info.Status, info.Rating) {
				scores[posting.DocID] += posting.TermFreq * idf
			}
		}
	}
	for _, tp := range exclude {
		for _, posting := range tp.Postings {
			delete(scores, posting.DocID)
		}
	}

	ids := make([]int, 0, len(scores))
	for docID := range scores {
		ids = append(ids, docID)
	}
	sort.Ints(ids)
	result := make([]document.Document, 0, len(ids))
	for _, docID := range ids {
		result = append(result, document.Document{
			ID:        docID,
			Relevance: scores[docID],
			Rating:    getDocInfo(docID).Rating,
		})
	}
	Sort(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Sort orders documents by descending relevance; relevances closer than
// Epsilon fall back to descending rating. Equal keys keep their order.
func Sort(docs []document.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if math.Abs(docs[i].Relevance-docs[j].Relevance) < Epsilon {
			return docs[i].Rating > docs[j].Rating
		}
		return docs[i].Relevance > docs[j].Relevance
	})
}

func computeIDF(totalDocs int, docFreq int) float64 {
	return math.Log(float64(totalDocs) / float64(docFreq))
}
