package index

import (
	"sort"
)

// MemoryIndex is the inverted index: term -> document id -> term frequency.
// It is not safe for concurrent use; callers serialize writers against
// readers.
type MemoryIndex struct {
	index    map[string]map[int]float64
	docTerms map[int]map[string]float64
	size     int64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		index:    make(map[string]map[int]float64),
		docTerms: make(map[int]map[string]float64),
	}
}

// AddDocument indexes the already-filtered words of one document. Each
// occurrence contributes 1/len(words) to its term's frequency. A document
// with no words gets no entries.
func (m *MemoryIndex) AddDocument(docID int, words []string) {
	if len(words) == 0 {
		return
	}
	inv := 1.0 / float64(len(words))
	termData := make(map[string]float64)
	for _, w := range words {
		termData[w] += inv
	}
	for term, tf := range termData {
		docs, exists := m.index[term]
		if !exists {
			docs = make(map[int]float64)
			m.index[term] = docs
		}
		docs[docID] += tf
		m.size += int64(len(term) + 16)
	}
	m.docTerms[docID] = termData
}

// Search returns the postings for term ordered by ascending document id, or
// nil when the term is not indexed.
func (m *MemoryIndex) Search(term string) PostingList {
	docs, exists := m.index[term]
	if !exists {
		return nil
	}
	result := make(PostingList, 0, len(docs))
	for docID, tf := range docs {
		result = append(result, Posting{DocID: docID, TermFreq: tf})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DocID < result[j].DocID
	})
	return result
}

// DocFreq is the number of documents containing term.
func (m *MemoryIndex) DocFreq(term string) int {
	return len(m.index[term])
}

// Contains reports whether term is indexed for docID.
func (m *MemoryIndex) Contains(term string, docID int) bool {
	_, ok := m.index[term][docID]
	return ok
}

// TermFrequencies returns a copy of the term frequencies of one document.
func (m *MemoryIndex) TermFrequencies(docID int) map[string]float64 {
	terms := m.docTerms[docID]
	out := make(map[string]float64, len(terms))
	for term, tf := range terms {
		out[term] = tf
	}
	return out
}

// Snapshot returns every term with its postings, sorted by term.
func (m *MemoryIndex) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(m.index))
	for term := range m.index {
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: m.Search(term),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// TermCount is the number of distinct indexed terms.
func (m *MemoryIndex) TermCount() int {
	return len(m.index)
}

// Size is a rough estimate of the index footprint in bytes.
func (m *MemoryIndex) Size() int64 {
	return m.size
}
