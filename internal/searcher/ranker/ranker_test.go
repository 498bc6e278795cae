package ranker

import (
	"math"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
)

func infoFrom(m map[int]DocInfo) func(int) DocInfo {
	return func(id int) DocInfo { return m[id] }
}

func ids(docs []document.Document) []int {
	out := make([]int, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestRankTFIDF(t *testing.T) {
	include := []TermPostings{
		{Term: "dog", Postings: index.PostingList{{DocID: 4, TermFreq: 0.25}, {DocID: 5, TermFreq: 0.25}}},
		{Term: "curly", Postings: index.PostingList{{DocID: 2, TermFreq: 0.25}}},
	}
	info := infoFrom(map[int]DocInfo{2: {Rating: 2}, 4: {Rating: 2}, 5: {Rating: 1}})

	got := Rank(include, nil, RankParams{TotalDocs: 5}, info, nil, MaxResults)
	if want := []int{2, 4, 5}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("order = %v, want %v", ids(got), want)
	}
	if want := 0.25 * math.Log(5); math.Abs(got[0].Relevance-want) > 1e-12 {
		t.Errorf("curly relevance = %v, want %v", got[0].Relevance, want)
	}
	if want := 0.25 * math.Log(2.5); math.Abs(got[1].Relevance-want) > 1e-12 {
		t.Errorf("dog relevance = %v, want %v", got[1].Relevance, want)
	}
	if got[1].Rating != 2 || got[2].Rating != 1 {
		t.Errorf("ratings = %d, %d", got[1].Rating, got[2].Rating)
	}
}

func TestRankExcludeOverridesFilter(t *testing.T) {
	include := []TermPostings{
		{Term: "cat", Postings: index.PostingList{{DocID: 1, TermFreq: 0.5}, {DocID: 2, TermFreq: 0.5}, {DocID: 3, TermFreq: 0.5}}},
	}
	exclude := []TermPostings{
		{Term: "dog", Postings: index.PostingList{{DocID: 2, TermFreq: 0.5}, {DocID: 9, TermFreq: 1}}},
	}
	info := infoFrom(map[int]DocInfo{
		1: {Status: document.StatusActual},
		2: {Status: document.StatusActual},
		3: {Status: document.StatusBanned},
		9: {Status: document.StatusActual},
	})
	got := Rank(include, exclude, RankParams{TotalDocs: 10}, info, document.WithStatus(document.StatusActual), 0)
	if want := []int{1}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("ids = %v, want %v", ids(got), want)
	}
}

func TestRankTruncatesAndTieBreaks(t *testing.T) {
	postings := make(index.PostingList, 0, 8)
	ratings := make(map[int]DocInfo)
	for id := 0; id < 8; id++ {
		postings = append(postings, index.Posting{DocID: id, TermFreq: 0.5})
		ratings[id] = DocInfo{Rating: id % 3}
	}
	got := Rank([]TermPostings{{Term: "x", Postings: postings}}, nil, RankParams{TotalDocs: 16}, infoFrom(ratings), nil, MaxResults)
	if len(got) != MaxResults {
		t.Fatalf("len = %d, want %d", len(got), MaxResults)
	}
	// ratings by id: 0 1 2 0 1 2 0 1; equal relevance sorts rating desc, then id asc.
	if want := []int{2, 5, 1, 4, 7}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("ids = %v, want %v", ids(got), want)
	}
}

func TestRankTermInEveryDocument(t *testing.T) {
	include := []TermPostings{{Term: "all", Postings: index.PostingList{{DocID: 1, TermFreq: 1}, {DocID: 2, TermFreq: 1}}}}
	got := Rank(include, nil, RankParams{TotalDocs: 2}, infoFrom(map[int]DocInfo{1: {Rating: 1}, 2: {Rating: 3}}), nil, MaxResults)
	if want := []int{2, 1}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("ids = %v, want %v", ids(got), want)
	}
	for _, d := range got {
		if d.Relevance != 0 {
			t.Errorf("doc %d relevance = %v, want 0", d.ID, d.Relevance)
		}
	}
}

func TestSortProperties(t *testing.T) {
	docs := []document.Document{
		{ID: 1, Relevance: 0.3, Rating: 1},
		{ID: 2, Relevance: 0.3 + 5e-7, Rating: 9},
		{ID: 3, Relevance: 0.9, Rating: 0},
		{ID: 4, Relevance: 0.1, Rating: 4},
	}
	Sort(docs)
	if want := []int{3, 2, 1, 4}; !reflect.DeepEqual(ids(docs), want) {
		t.Fatalf("ids = %v, want %v", ids(docs), want)
	}
	for i := 1; i < len(docs); i++ {
		prev, cur := docs[i-1], docs[i]
		if math.Abs(prev.Relevance-cur.Relevance) < Epsilon {
			if prev.Rating < cur.Rating {
				t.Errorf("tie at %d not ordered by rating", i)
			}
		} else if prev.Relevance < cur.Relevance {
			t.Errorf("relevance increases at %d", i)
		}
	}
}
