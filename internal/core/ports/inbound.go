package ports

import (
	"context"
	"io"

	"github.com/docqa-ai/docqa/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload and
// management.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename string, size int64, body io.Reader) (*domain.Document, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// QueryService is the inbound contract for hybrid retrieval. Search returns
// the fused ranking without generation; Answer adds the generated response
// with source attributions.
type QueryService interface {
	Search(ctx context.Context, query string, topK int) ([]domain.FusedResult, error)
	Answer(ctx context.Context, query string, topK int) (*domain.Answer, error)
}
