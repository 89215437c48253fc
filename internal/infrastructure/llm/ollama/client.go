package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/docqa-ai/docqa/internal/infrastructure/resilience"
)

// Client talks to a local Ollama instance. The embedding model comes from the
// resolved embedding profile, so its dimensionality is known up front.
type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL, genModel, embedModel string, exec *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		exec:       exec,
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.postJSON(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, mapModelError("embed", err)
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed: got %d vectors for %d inputs", len(response.Embeddings), len(texts))
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, mapModelError("embed", fmt.Errorf("empty embedding result"))
	}
	return vectors[0], nil
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Generate(ctx context.Context, promptContext, question string) (string, error) {
	reqBody := map[string]any{
		"model":  g.client.genModel,
		"prompt": buildAnswerPrompt(promptContext, question),
		"stream": false,
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := g.client.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", mapModelError("generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}
