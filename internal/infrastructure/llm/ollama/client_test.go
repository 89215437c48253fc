package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docqa-ai/docqa/internal/core/domain"
)

func TestGeneratorSendsContextAndQuestion(t *testing.T) {
	var capturedPrompt string
	var capturedModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		capturedPrompt, _ = payload["prompt"].(string)
		capturedModel, _ = payload["model"].(string)
		_, _ = w.Write([]byte(`{"response":" grounded answer \n"}`))
	}))
	defer server.Close()

	gen := NewGenerator(New(server.URL, "qwen2.5:3b", "all-minilm", nil))
	answer, err := gen.Generate(context.Background(), "first chunk\n\n---\n\nsecond chunk", "what is this?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if answer != "grounded answer" {
		t.Fatalf("expected trimmed answer, got %q", answer)
	}
	if capturedModel != "qwen2.5:3b" {
		t.Fatalf("unexpected model: %s", capturedModel)
	}
	if !strings.Contains(capturedPrompt, "what is this?") || !strings.Contains(capturedPrompt, "second chunk") {
		t.Fatalf("unexpected prompt: %s", capturedPrompt)
	}
}

func TestGeneratorEmptyContextPrompt(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		capturedPrompt, _ = payload["prompt"].(string)
		_, _ = w.Write([]byte(`{"response":"no data"}`))
	}))
	defer server.Close()

	gen := NewGenerator(New(server.URL, "gen", "embed", nil))
	if _, err := gen.Generate(context.Background(), "", "anything?"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(capturedPrompt, "No context was retrieved") {
		t.Fatalf("expected empty-context instruction, got %s", capturedPrompt)
	}
}

func TestEmbedUsesProfileModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		var payload struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.Model != "multilingual-e5-base" {
			t.Fatalf("unexpected model: %s", payload.Model)
		}
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2],[0.3,0.4]]}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "multilingual-e5-base", nil))
	vectors, err := embedder.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 2 || vectors[1][0] != 0.3 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}
}

func TestEmbedVectorCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[0.1]]}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "embed", nil))
	_, err := embedder.Embed(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error on vector count mismatch")
	}
}

func TestServerErrorMapsToModelUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "embed", nil))
	_, err := embedder.EmbedQuery(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected model-unavailable kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestConnectionFailureMapsToModelUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	gen := NewGenerator(New(server.URL, "gen", "embed", nil))
	_, err := gen.Generate(context.Background(), "ctx", "q")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected model-unavailable kind, got %v", err)
	}
}
