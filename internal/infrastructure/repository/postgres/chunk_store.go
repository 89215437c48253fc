package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/docqa-ai/docqa/internal/core/domain"
)

// ChunkStore persists chunks and runs the three retrieval primitives against
// one chunk table: cosine similarity over pgvector embeddings, full-text rank
// over a tsvector column, and pg_trgm similarity over the raw content.
type ChunkStore struct {
	db    *sql.DB
	table string
	dims  int
}

func NewChunkStore(db *sql.DB, dims int) *ChunkStore {
	return &ChunkStore{db: db, table: chunkTableName(dims), dims: dims}
}

func (s *ChunkStore) InsertChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.dims {
			return domain.WrapError(domain.ErrConfiguration, "insert chunks",
				fmt.Errorf("embedding has %d dimensions, table expects %d", len(chunk.Embedding), s.dims))
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := fmt.Sprintf(`
INSERT INTO %s (document_id, chunk_index, content, token_count, embedding)
VALUES ($1,$2,$3,$4,$5::vector)
`, s.table)

	for _, chunk := range chunks {
		_, err := tx.ExecContext(ctx, query,
			documentID, chunk.Index, chunk.Content, chunk.TokenCount, vectorLiteral(chunk.Embedding))
		if err != nil {
			return fmt.Errorf("insert chunk %d: %w", chunk.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert tx: %w", err)
	}
	return nil
}

func (s *ChunkStore) DeleteChunks(ctx context.Context, documentID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE document_id = $1`, s.table)
	if _, err := s.db.ExecContext(ctx, query, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

func (s *ChunkStore) SearchDense(ctx context.Context, embedding []float32, limit int) ([]domain.SearchHit, error) {
	if len(embedding) != s.dims {
		return nil, domain.WrapError(domain.ErrConfiguration, "dense search",
			fmt.Errorf("query vector has %d dimensions, table expects %d", len(embedding), s.dims))
	}

	query := fmt.Sprintf(`
SELECT c.document_id, d.filename, c.chunk_index, c.seq, c.content,
	1 - (c.embedding <=> $1::vector) AS score
FROM %s c
JOIN documents d ON d.id = c.document_id
ORDER BY c.embedding <=> $1::vector, c.seq
LIMIT $2
`, s.table)

	return s.queryHits(ctx, "dense search", query, vectorLiteral(embedding), limit)
}

func (s *ChunkStore) SearchSparse(ctx context.Context, text string, limit int) ([]domain.SearchHit, error) {
	query := fmt.Sprintf(`
SELECT c.document_id, d.filename, c.chunk_index, c.seq, c.content,
	ts_rank(c.content_tsv, plainto_tsquery('simple', $1)) AS score
FROM %s c
JOIN documents d ON d.id = c.document_id
WHERE c.content_tsv @@ plainto_tsquery('simple', $1)
ORDER BY score DESC, c.seq
LIMIT $2
`, s.table)

	return s.queryHits(ctx, "sparse search", query, text, limit)
}

func (s *ChunkStore) SearchTrigram(ctx context.Context, text string, limit int) ([]domain.SearchHit, error) {
	query := fmt.Sprintf(`
SELECT c.document_id, d.filename, c.chunk_index, c.seq, c.content,
	similarity(c.content, $1) AS score
FROM %s c
JOIN documents d ON d.id = c.document_id
WHERE c.content %% $1
ORDER BY score DESC, c.seq
LIMIT $2
`, s.table)

	return s.queryHits(ctx, "trigram search", query, text, limit)
}

func (s *ChunkStore) queryHits(ctx context.Context, operation, query string, arg any, limit int) ([]domain.SearchHit, error) {
	rows, err := s.db.QueryContext(ctx, query, arg, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer rows.Close()

	var hits []domain.SearchHit
	for rows.Next() {
		var hit domain.SearchHit
		if err := rows.Scan(&hit.DocumentID, &hit.Filename, &hit.ChunkIndex, &hit.Seq, &hit.Content, &hit.Score); err != nil {
			return nil, fmt.Errorf("%s scan: %w", operation, err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", operation, err)
	}
	return hits, nil
}

func vectorLiteral(embedding []float32) string {
	var b strings.Builder
	b.Grow(len(embedding)*10 + 2)
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
