package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"videorag/internal/domain"
)

// maxRequestBytes bounds /ask bodies.
const maxRequestBytes = 1 << 20

// Backend is the part of the service the HTTP adapter needs.
type Backend interface {
	Ask(query string, topK int) []string
	Stats() domain.Stats
}

// AskRequest is the /ask body. TopK is kept raw so that a value that is
// not an integer can be answered with an empty result instead of a 400.
type AskRequest struct {
	Query string          `json:"query"`
	TopK  json.RawMessage `json:"top_k,omitempty"`
}

type AskResponse struct {
	Query     string   `json:"query"`
	Responses []string `json:"responses"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Snapshot  string `json:"snapshot"`
	Units     int    `json:"units"`
	Dimension int    `json:"dimension"`
	Model     string `json:"model"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes the retriever over JSON HTTP.
type Server struct {
	backend     Backend
	defaultTopK int
	logger      *slog.Logger
}

func NewServer(backend Backend, defaultTopK int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		backend:     backend,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request: " + err.Error()})
		return
	}

	topK := parseTopK(req.TopK, s.defaultTopK)

	start := time.Now()
	responses := s.backend.Ask(req.Query, topK)
	s.logger.Debug("answered query", "top_k", topK, "results", len(responses), "elapsed", time.Since(start))

	if responses == nil {
		responses = []string{}
	}
	s.writeJSON(w, http.StatusOK, AskResponse{Query: req.Query, Responses: responses})
}

// parseTopK returns def when raw is absent or null and 0 when raw is not
// a JSON integer.
func parseTopK(raw json.RawMessage, def int) int {
	if len(raw) == 0 || string(raw) == "null" {
		return def
	}
	k, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0
	}
	return k
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.backend.Stats()
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Snapshot:  stats.Snapshot.ID,
		Units:     stats.Units,
		Dimension: stats.Snapshot.Dimension,
		Model:     stats.Snapshot.Model,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}
