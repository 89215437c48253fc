package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docqa-ai/docqa/internal/core/domain"
	"github.com/docqa-ai/docqa/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	store     ports.ChunkStore
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	store ports.ChunkStore,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
	}
}

// ProcessByID runs the ingestion pipeline for an uploaded document:
// extract text, chunk, embed, index. Failures are recorded on the document
// so the caller can observe them via status.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.processPipeline(ctx, documentID); err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}

	chunks := uc.chunker.Split(text)
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}

	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
	}

	vectors, err := uc.embedder.Embed(ctx, contents)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}

	for i := range chunks {
		chunks[i].DocumentID = doc.ID
		chunks[i].Embedding = vectors[i]
	}

	// Queue redelivery may reprocess a document; drop any chunks from a
	// previous attempt so indexing stays idempotent.
	if err := uc.store.DeleteChunks(ctx, doc.ID); err != nil {
		return fmt.Errorf("clear previous chunks: %w", err)
	}
	if err := uc.store.InsertChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	return nil
}
