package usecase

import (
	"sort"

	"github.com/docqa-ai/docqa/internal/core/domain"
)

const defaultRRFK = 60

type chunkKey struct {
	documentID string
	chunkIndex int
}

// fuseRRF merges the three strategy rankings with Reciprocal Rank Fusion:
// a chunk at 1-based rank r in a list contributes 1/(rrfK+r), contributions
// sum across lists, and absence from a list simply contributes nothing.
// Ordering is fully deterministic: fused score descending, then number of
// contributing strategies descending, then chunk creation order ascending.
// The output is truncated to topK when topK > 0.
func fuseRRF(lists domain.HitLists, rrfK, topK int) []domain.FusedResult {
	if rrfK <= 0 {
		rrfK = defaultRRFK
	}

	acc := make(map[chunkKey]*domain.FusedResult, len(lists.Dense)+len(lists.Sparse)+len(lists.Trigram))
	merge := func(hits []domain.SearchHit, record func(*domain.FusedResult, int)) {
		for i, hit := range hits {
			rank := i + 1
			key := chunkKey{documentID: hit.DocumentID, chunkIndex: hit.ChunkIndex}
			result, ok := acc[key]
			if !ok {
				result = &domain.FusedResult{
					DocumentID: hit.DocumentID,
					Filename:   hit.Filename,
					ChunkIndex: hit.ChunkIndex,
					Seq:        hit.Seq,
					Content:    hit.Content,
				}
				acc[key] = result
			}
			result.Score += 1.0 / float64(rrfK+rank)
			record(result, rank)
		}
	}

	merge(lists.Dense, func(r *domain.FusedResult, rank int) {
		if r.DenseRank == 0 {
			r.DenseRank = rank
		}
	})
	merge(lists.Sparse, func(r *domain.FusedResult, rank int) {
		if r.SparseRank == 0 {
			r.SparseRank = rank
		}
	})
	merge(lists.Trigram, func(r *domain.FusedResult, rank int) {
		if r.TrigramRank == 0 {
			r.TrigramRank = rank
		}
	})

	out := make([]domain.FusedResult, 0, len(acc))
	for _, r := range acc {
		out = append(out, *r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if si, sj := out[i].Strategies(), out[j].Strategies(); si != sj {
			return si > sj
		}
		if out[i].Seq != out[j].Seq {
			return out[i].Seq < out[j].Seq
		}
		if out[i].DocumentID != out[j].DocumentID {
			return out[i].DocumentID < out[j].DocumentID
		}
		return out[i].ChunkIndex < out[j].ChunkIndex
	})

	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
