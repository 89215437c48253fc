package ports

import (
	"context"
	"io"
	"time"

	"github.com/docqa-ai/docqa/internal/core/domain"
)

// DocumentRepository persists document state.
type DocumentRepository interface {
	// CreateReplacing inserts doc and removes any prior document with the
	// same filename (chunks cascade) in one serialized transaction. It
	// returns the displaced document's storage path, or "" when the
	// filename was new, so callers can clean up the old blob.
	CreateReplacing(ctx context.Context, doc *domain.Document) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
}

// ChunkStore indexes chunks and serves the three ranking primitives, scoped
// to the chunk set matching the active embedding dimensionality.
type ChunkStore interface {
	InsertChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error
	DeleteChunks(ctx context.Context, documentID string) error
	SearchDense(ctx context.Context, queryVector []float32, limit int) ([]domain.SearchHit, error)
	SearchSparse(ctx context.Context, queryText string, limit int) ([]domain.SearchHit, error)
	SearchTrigram(ctx context.Context, queryText string, limit int) ([]domain.SearchHit, error)
}

// Embedder builds vectors for chunks and query text. Embed preserves input
// order. An unreachable backend yields domain.ErrModelUnavailable.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// AnswerGenerator produces the final user-facing answer from an assembled
// prompt context and the question.
type AnswerGenerator interface {
	Generate(ctx context.Context, promptContext, question string) (string, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored document per its format.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// Chunker splits document text into ordered, overlapping chunks.
type Chunker interface {
	Split(text string) []domain.Chunk
}

// SearchMonitor records per-strategy retrieval outcomes.
type SearchMonitor interface {
	ObserveStrategy(strategy string, duration time.Duration, hits int, timedOut bool)
}
