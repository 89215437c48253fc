package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/docqa-ai/docqa/internal/core/domain"
	"github.com/docqa-ai/docqa/internal/core/ports"
)

// Extractor turns a stored document into plain text, dispatching on the
// document format recorded at upload time.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	switch doc.Format {
	case domain.FormatText, domain.FormatMarkdown:
		return extractPlain(doc.Filename, raw)
	case domain.FormatJSON:
		return extractJSON(raw)
	case domain.FormatPDF:
		return extractPDF(raw)
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "extract",
			fmt.Errorf("unsupported format %q", doc.Format))
	}
}

func extractPlain(filename string, raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract",
			fmt.Errorf("file %s is not valid UTF-8", filename))
	}
	return strings.TrimSpace(string(raw)), nil
}

// extractJSON collects every string value in the document, walking objects
// and arrays depth-first in encounter order.
func extractJSON(raw []byte) (string, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract", fmt.Errorf("parse json: %w", err))
	}

	var parts []string
	collectStrings(value, &parts)
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

func collectStrings(value any, parts *[]string) {
	switch v := value.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			*parts = append(*parts, s)
		}
	case []any:
		for _, item := range v {
			collectStrings(item, parts)
		}
	case map[string]any:
		// json.Unmarshal maps lose key order; sort for stable output.
		for _, key := range sortedKeys(v) {
			collectStrings(v[key], parts)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func extractPDF(raw []byte) (string, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract", fmt.Errorf("parse pdf: %w", err))
	}

	var b strings.Builder
	for page := 1; page <= pdfReader.NumPage(); page++ {
		p := pdfReader.Page(page)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %w", page, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}
