package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/docqa-ai/docqa/internal/core/domain"
	"github.com/docqa-ai/docqa/internal/core/ports"
)

type TrafficConfig struct {
	RateLimitRPS   int
	RateLimitBurst int
	MaxConcurrent  int
}

type Router struct {
	ingest  ports.DocumentIngestor
	query   ports.QueryService
	traffic TrafficConfig
}

func NewRouter(ingest ports.DocumentIngestor, query ports.QueryService, traffic TrafficConfig) *Router {
	return &Router{ingest: ingest, query: query, traffic: traffic}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	mux.HandleFunc("DELETE /v1/documents/{id}", rt.deleteDocument)
	mux.HandleFunc("POST /v1/search", rt.search)
	mux.HandleFunc("POST /v1/chat", rt.chat)

	var handler http.Handler = mux
	if rt.traffic.MaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.traffic.MaxConcurrent, 50*time.Millisecond)
	}
	if rt.traffic.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(r.Context(), fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.ingest.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.ingest.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := rt.ingest.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	results, err := rt.query.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": strings.TrimSpace(req.Query), "results": results})
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
		TopK     int    `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	answer, err := rt.query.Answer(r.Context(), req.Question, req.TopK)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
