package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docqa-ai/docqa/internal/core/domain"
)

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, *domain.Document) (string, error) {
	return f.text, f.err
}

type chunkerFake struct {
	chunks []domain.Chunk
}

func (f *chunkerFake) Split(string) []domain.Chunk { return f.chunks }

type insertRecordingStore struct {
	chunkStoreFake
	inserted []domain.Chunk
	err      error
}

func (f *insertRecordingStore) InsertChunks(_ context.Context, _ string, chunks []domain.Chunk) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = chunks
	return nil
}

func TestProcessByIDHappyPath(t *testing.T) {
	repo := &repoFake{getDoc: &domain.Document{ID: "doc-1", Filename: "a.txt", Format: domain.FormatText}}
	store := &insertRecordingStore{}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{text: "some extracted text"},
		&chunkerFake{chunks: []domain.Chunk{
			{Index: 0, Content: "some extracted", TokenCount: 2},
			{Index: 1, Content: "extracted text", TokenCount: 2},
		}},
		&embedderFake{},
		store,
	)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if len(store.inserted) != 2 {
		t.Fatalf("expected 2 chunks indexed, got %d", len(store.inserted))
	}
	for i, c := range store.inserted {
		if c.DocumentID != "doc-1" {
			t.Fatalf("chunk %d missing document id", i)
		}
		if len(c.Embedding) == 0 {
			t.Fatalf("chunk %d missing embedding", i)
		}
	}
	want := []domain.DocumentStatus{domain.StatusProcessing, domain.StatusReady}
	if len(repo.statuses) != 2 || repo.statuses[0] != want[0] || repo.statuses[1] != want[1] {
		t.Fatalf("unexpected status transitions: %v", repo.statuses)
	}
}

func TestProcessByIDEmptyTextMarksFailed(t *testing.T) {
	repo := &repoFake{getDoc: &domain.Document{ID: "doc-1"}}
	uc := NewProcessDocumentUseCase(repo, &extractorFake{text: "   \n"}, &chunkerFake{}, &embedderFake{}, &insertRecordingStore{})

	err := uc.ProcessByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.statuses[len(repo.statuses)-1] != domain.StatusFailed {
		t.Fatalf("expected final status failed, got %v", repo.statuses)
	}
	if !strings.Contains(repo.errs[len(repo.errs)-1], "empty extracted text") {
		t.Fatalf("failure reason not recorded: %v", repo.errs)
	}
}

func TestProcessByIDEmbedderFailureMarksFailed(t *testing.T) {
	repo := &repoFake{getDoc: &domain.Document{ID: "doc-1"}}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{text: "content"},
		&chunkerFake{chunks: []domain.Chunk{{Index: 0, Content: "content", TokenCount: 1}}},
		&embedderFake{err: domain.WrapError(domain.ErrModelUnavailable, "embed", errors.New("ollama down"))},
		&insertRecordingStore{},
	)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	if repo.statuses[len(repo.statuses)-1] != domain.StatusFailed {
		t.Fatalf("expected final status failed, got %v", repo.statuses)
	}
}
