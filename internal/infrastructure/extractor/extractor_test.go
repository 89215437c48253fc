package extractor

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/docqa-ai/docqa/internal/core/domain"
)

type storageFake struct {
	files map[string][]byte
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.files == nil {
		f.files = map[string][]byte{}
	}
	f.files[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.files[key])), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	delete(f.files, key)
	return nil
}

func extract(t *testing.T, format domain.DocumentFormat, raw []byte) (string, error) {
	t.Helper()
	storage := &storageFake{files: map[string][]byte{"key": raw}}
	e := NewExtractor(storage)
	return e.Extract(context.Background(), &domain.Document{
		Filename:    "file",
		Format:      format,
		StoragePath: "key",
	})
}

func TestExtractPlainText(t *testing.T) {
	text, err := extract(t, domain.FormatText, []byte("  hello world \n"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "hello world" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractRejectsInvalidUTF8(t *testing.T) {
	_, err := extract(t, domain.FormatText, []byte{0xff, 0xfe, 0x00})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExtractJSONCollectsStringValues(t *testing.T) {
	raw := []byte(`{"title":"annual report","sections":[{"body":"first part"},{"body":"second part"}],"pages":12}`)
	text, err := extract(t, domain.FormatJSON, raw)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "first part\nsecond part\nannual report"
	if text != want {
		t.Fatalf("unexpected text: %q, want %q", text, want)
	}
}

func TestExtractJSONRejectsMalformed(t *testing.T) {
	_, err := extract(t, domain.FormatJSON, []byte(`{"broken":`))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExtractPDFRejectsGarbage(t *testing.T) {
	_, err := extract(t, domain.FormatPDF, []byte("not a pdf at all"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
