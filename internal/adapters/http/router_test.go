package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docqa-ai/docqa/internal/core/domain"
)

type ingestorFake struct {
	uploaded *domain.Document
	docs     []domain.Document
	getErr   error
	deleted  []string
}

func (f *ingestorFake) Upload(_ context.Context, filename string, size int64, body io.Reader) (*domain.Document, error) {
	if strings.HasSuffix(filename, ".exe") {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("unsupported format"))
	}
	_, _ = io.Copy(io.Discard, body)
	doc := &domain.Document{ID: "doc-1", Filename: filename, FileSize: size, Status: domain.StatusUploaded}
	f.uploaded = doc
	return doc, nil
}

func (f *ingestorFake) Get(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &domain.Document{ID: id, Status: domain.StatusReady}, nil
}

func (f *ingestorFake) List(context.Context) ([]domain.Document, error) { return f.docs, nil }

func (f *ingestorFake) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type queryServiceFake struct {
	results   []domain.FusedResult
	answer    *domain.Answer
	searchErr error
	answerErr error
}

func (f *queryServiceFake) Search(_ context.Context, query string, _ int) ([]domain.FusedResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", errors.New("query is empty"))
	}
	return f.results, f.searchErr
}

func (f *queryServiceFake) Answer(context.Context, string, int) (*domain.Answer, error) {
	return f.answer, f.answerErr
}

func newTestHandler(ingest *ingestorFake, query *queryServiceFake, traffic TrafficConfig) http.Handler {
	return NewRouter(ingest, query, traffic).Handler()
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(&ingestorFake{}, &queryServiceFake{}, TrafficConfig{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadDocumentAccepted(t *testing.T) {
	ingest := &ingestorFake{}
	handler := newTestHandler(ingest, &queryServiceFake{}, TrafficConfig{})

	body, contentType := multipartUpload(t, "notes.md", "# hello")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	if ingest.uploaded == nil || ingest.uploaded.Filename != "notes.md" {
		t.Fatalf("upload not forwarded: %+v", ingest.uploaded)
	}
}

func TestUploadDocumentMissingFile(t *testing.T) {
	handler := newTestHandler(&ingestorFake{}, &queryServiceFake{}, TrafficConfig{})

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", strings.NewReader("not multipart"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadDocumentUnsupportedFormat(t *testing.T) {
	handler := newTestHandler(&ingestorFake{}, &queryServiceFake{}, TrafficConfig{})

	body, contentType := multipartUpload(t, "virus.exe", "MZ")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestListDocumentsEmptyIsArray(t *testing.T) {
	handler := newTestHandler(&ingestorFake{}, &queryServiceFake{}, TrafficConfig{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/documents", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var resp struct {
		Documents []domain.Document `json:"documents"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Documents == nil {
		t.Fatal("expected empty array, got null")
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	ingest := &ingestorFake{getErr: domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id missing"))}
	handler := newTestHandler(ingest, &queryServiceFake{}, TrafficConfig{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestDeleteDocumentNoContent(t *testing.T) {
	ingest := &ingestorFake{}
	handler := newTestHandler(ingest, &queryServiceFake{}, TrafficConfig{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/v1/documents/doc-9", nil))
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if len(ingest.deleted) != 1 || ingest.deleted[0] != "doc-9" {
		t.Fatalf("delete not forwarded: %v", ingest.deleted)
	}
}

func TestSearchReturnsFusedResults(t *testing.T) {
	query := &queryServiceFake{results: []domain.FusedResult{
		{DocumentID: "doc-1", Filename: "a.txt", ChunkIndex: 2, Content: "chunk", Score: 0.032, Rank: 1},
	}}
	handler := newTestHandler(&ingestorFake{}, query, TrafficConfig{})

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"hello","top_k":3}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var resp struct {
		Query   string               `json:"query"`
		Results []domain.FusedResult `json:"results"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Rank != 1 {
		t.Fatalf("unexpected results: %+v", resp.Results)
	}
}

func TestSearchEmptyQueryIsBadRequest(t *testing.T) {
	handler := newTestHandler(&ingestorFake{}, &queryServiceFake{}, TrafficConfig{})

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"  "}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestChatModelUnavailableIs503(t *testing.T) {
	query := &queryServiceFake{answerErr: domain.WrapError(domain.ErrModelUnavailable, "generate", errors.New("connection refused"))}
	handler := newTestHandler(&ingestorFake{}, query, TrafficConfig{})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"question":"hi"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestChatReturnsAnswerWithSources(t *testing.T) {
	query := &queryServiceFake{answer: &domain.Answer{
		Text: "the answer",
		Sources: []domain.Source{
			{Filename: "a.txt", ChunkIndex: 0, Preview: "chunk preview", Rank: 1, Score: 0.03},
		},
	}}
	handler := newTestHandler(&ingestorFake{}, query, TrafficConfig{})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"question":"hi","top_k":2}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var answer domain.Answer
	if err := json.NewDecoder(res.Body).Decode(&answer); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if answer.Text != "the answer" || len(answer.Sources) != 1 {
		t.Fatalf("unexpected answer: %+v", answer)
	}
}
