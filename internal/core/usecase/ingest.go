package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docqa-ai/docqa/internal/core/domain"
	"github.com/docqa-ai/docqa/internal/core/ports"
)

type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

// Upload stores the raw document, registers it (replacing any prior document
// with the same filename) and queues it for processing.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename string,
	size int64,
	body io.Reader,
) (*domain.Document, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("filename is required"))
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	format, ok := domain.ParseFormat(ext)
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload",
			fmt.Errorf("unsupported format %q", ext))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:          id,
		Filename:    filename,
		Format:      format,
		StoragePath: storageKey,
		FileSize:    size,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	displaced, err := uc.repo.CreateReplacing(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}
	if displaced != "" && displaced != storageKey {
		// The new document is already committed; a stale blob must not
		// fail the upload.
		if err := uc.storage.Delete(ctx, displaced); err != nil {
			slog.Warn("replaced_blob_cleanup_failed", "storage_path", displaced, "error", err)
		}
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return doc, nil
}

func (uc *IngestDocumentUseCase) Get(ctx context.Context, id string) (*domain.Document, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *IngestDocumentUseCase) List(ctx context.Context) ([]domain.Document, error) {
	return uc.repo.List(ctx)
}

// Delete removes the document row (chunks cascade) and its stored blob.
func (uc *IngestDocumentUseCase) Delete(ctx context.Context, id string) error {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := uc.storage.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete stored document: %w", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
