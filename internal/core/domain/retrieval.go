package domain

// SearchHit is a transient reference to a chunk produced by one search
// strategy. Seq is the chunk's store-wide creation order and is the final
// tie-break everywhere, so the three strategies agree on identity and order.
type SearchHit struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Seq        int64   `json:"-"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// HitLists carries the output of the three search strategies. The fusion
// contract is fixed at exactly these three named lists; adding a strategy is
// a change to this type, not a runtime branch.
type HitLists struct {
	Dense   []SearchHit
	Sparse  []SearchHit
	Trigram []SearchHit
}

// FusedResult is a chunk with its reciprocal-rank-fusion score and final
// rank. The per-strategy ranks record provenance: 1-based position within
// the strategy's list, 0 when the strategy did not return the chunk.
type FusedResult struct {
	DocumentID  string  `json:"document_id"`
	Filename    string  `json:"filename"`
	ChunkIndex  int     `json:"chunk_index"`
	Seq         int64   `json:"-"`
	Content     string  `json:"content"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
	DenseRank   int     `json:"dense_rank,omitempty"`
	SparseRank  int     `json:"sparse_rank,omitempty"`
	TrigramRank int     `json:"trigram_rank,omitempty"`
}

// Strategies reports how many of the three strategies returned this chunk.
func (r FusedResult) Strategies() int {
	n := 0
	if r.DenseRank > 0 {
		n++
	}
	if r.SparseRank > 0 {
		n++
	}
	if r.TrigramRank > 0 {
		n++
	}
	return n
}

// Source ties a generated answer back to one chunk of evidence.
type Source struct {
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Preview    string  `json:"preview"`
	Rank       int     `json:"rank"`
	Score      float64 `json:"score"`
}

type Answer struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}
