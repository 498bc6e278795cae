package index

// Posting records how strongly one document is associated with a term.
// TermFreq is the share of the document's indexed words equal to the term.
type Posting struct {
	DocID    int     `json:"doc_id"`
	TermFreq float64 `json:"term_freq"`
}

type PostingList []Posting

// DocIDs returns the document ids of the list in order.
func (pl PostingList) DocIDs() []int {
	ids := make([]int, len(pl))
	for i, p := range pl {
		ids[i] = p.DocID
	}
	return ids
}

type TermEntry struct {
	Term     string
	Postings PostingList
}
