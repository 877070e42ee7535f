package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"medrag/internal/logging"
	"medrag/internal/models"
	"medrag/internal/util"
)

// Searcher answers one medical question.
type Searcher interface {
	Answer(ctx context.Context, query string) (models.AnswerEnvelope, error)
}

type DocumentLister interface {
	ListDocuments(ctx context.Context, status string) ([]models.Document, error)
}

// IngestStarter kicks off a corpus ingestion run over a directory.
type IngestStarter interface {
	StartIngest(ctx context.Context, dir string) (runID string, err error)
}

type Server struct {
	searcher  Searcher
	documents DocumentLister
	ingest    IngestStarter
}

// NewServer accepts nil documents/ingest; the matching routes then answer 503.
func NewServer(searcher Searcher, documents DocumentLister, ingest IngestStarter) *Server {
	return &Server{searcher: searcher, documents: documents, ingest: ingest}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/documents", s.handleDocuments)
	mux.HandleFunc("/ingest", s.handleIngest)
	return withRequestID(withCORS(mux))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query string
	switch r.Method {
	case http.MethodGet:
		query = r.URL.Query().Get("q")
	case http.MethodPost:
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "Invalid request body",
				"message": "Malformed JSON request body.",
			})
			return
		}
		query = req.Query
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	query = strings.TrimSpace(query)
	if query == "" {
		writeQueryRequired(w)
		return
	}

	env, err := s.searcher.Answer(r.Context(), query)
	if errors.Is(err, util.ErrEmptyQuery) {
		writeQueryRequired(w)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "search failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Internal server error",
			"message": err.Error(),
			"query":   query,
		})
		return
	}
	w.Header().Set("Cache-Control", "max-age=300")
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if s.documents == nil {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("document store not configured"))
		return
	}
	docs, err := s.documents.ListDocuments(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if s.ingest == nil {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("ingestion not configured"))
		return
	}
	var req struct {
		Dir string `json:"dir"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
			return
		}
	}
	runID, err := s.ingest.StartIngest(r.Context(), strings.TrimSpace(req.Dir))
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"run_id": runID, "status": "started"})
}

func writeQueryRequired(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "Query parameter required",
		"message": "Please provide a medical question using ?q=your_question",
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if w.Header().Get("Cache-Control") == "" || code != http.StatusOK {
		w.Header().Set("Cache-Control", "no-cache")
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "MR-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status == http.StatusServiceUnavailable:
		return apiError{Code: "MR-API-5030", Message: "This feature is not configured on this deployment."}
	case status == http.StatusBadGateway:
		return apiError{Code: "MR-API-5020", Message: "Workflow service unavailable. Retry shortly."}
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{Code: "MR-DB-5001", Message: "Database schema is not initialized. Run migrations and retry."}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{Code: "MR-DB-5002", Message: "Database connection is unavailable. Check local services and retry."}
		default:
			return apiError{Code: "MR-API-5000", Message: "Internal server error. Please retry or check service logs."}
		}
	case status == http.StatusBadRequest:
		code = "MR-API-4001"
		msg = "Invalid request. Check inputs and retry."
		if strings.Contains(raw, "invalid json") {
			msg = "Malformed JSON request body."
		}
	case status == http.StatusNotFound:
		code = "MR-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusMethodNotAllowed:
		code = "MR-API-4005"
		msg = "This endpoint does not support the requested method."
	}
	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withRequestID tags the request context and response with an X-Request-Id,
// reusing the caller's when present, and logs one line per request.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := logging.WithLogFields(r.Context(), logging.LogFields{RequestID: id, Component: "api"})

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		slog.InfoContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
