package domain

import "time"

type DocumentFormat string

const (
	FormatText     DocumentFormat = "txt"
	FormatMarkdown DocumentFormat = "md"
	FormatJSON     DocumentFormat = "json"
	FormatPDF      DocumentFormat = "pdf"
)

// ParseFormat maps a filename extension to a supported document format.
func ParseFormat(ext string) (DocumentFormat, bool) {
	switch ext {
	case "txt", "text":
		return FormatText, true
	case "md", "markdown":
		return FormatMarkdown, true
	case "json":
		return FormatJSON, true
	case "pdf":
		return FormatPDF, true
	default:
		return "", false
	}
}

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document is the unit of ingestion. Filename is unique across the store:
// uploading an existing filename replaces the prior document and its chunks.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	Format      DocumentFormat `json:"format"`
	StoragePath string         `json:"-"`
	FileSize    int64          `json:"file_size"`
	ChunkCount  int            `json:"chunk_count"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Chunk is an overlapping token-bounded segment of a document's text.
// (DocumentID, Index) pairs are unique; a chunk is immutable once stored.
type Chunk struct {
	DocumentID string
	Index      int
	Content    string
	TokenCount int
	Embedding  []float32
}
