// Package server exposes the roadmap pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/alexanderramin/waypoint/internal/repository"
	"github.com/alexanderramin/waypoint/internal/roadmap"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 64 << 10

const (
	defaultRunLimit = 50
	maxRunLimit     = 200
)

// Server routes HTTP requests to the pipeline.
type Server struct {
	pipeline roadmap.Pipeline
	goals    roadmap.GoalExtractor
	gateway  llm.Gateway
	runs     repository.RunRepo
	logger   *slog.Logger
	router   *mux.Router
}

// Options wires the optional dependencies of a Server.
type Options struct {
	Goals   roadmap.GoalExtractor
	Gateway llm.Gateway
	Runs    repository.RunRepo
	Logger  *slog.Logger
}

// New creates a Server for pipeline.
func New(pipeline roadmap.Pipeline, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		pipeline: pipeline,
		goals:    opts.Goals,
		gateway:  opts.Gateway,
		runs:     opts.Runs,
		logger:   logger,
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/roadmap", s.handleRoadmap).Methods(http.MethodPost)
	if s.goals != nil {
		api.HandleFunc("/goal", s.handleGoal).Methods(http.MethodPost)
	}
	if s.runs != nil {
		api.HandleFunc("/runs", s.handleListRuns).Methods(http.MethodGet)
		api.HandleFunc("/runs/{id}", s.handleGetRun).Methods(http.MethodGet)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully, waiting up to ten seconds for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server_listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

type messageRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMessage(w, r)
	if !ok {
		return
	}
	resp, err := s.pipeline.GenerateRoadmap(r.Context(), req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGoal(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMessage(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, r, roadmap.ErrEmptyMessage)
		return
	}
	goal, err := s.goals.Extract(r.Context(), req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	code := http.StatusOK
	if s.gateway != nil {
		available := s.gateway.Available(r.Context())
		status["llm"] = available
		if !available {
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, status)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxRunLimit {
			writeJSON(w, http.StatusBadRequest, errorBody{
				Error: fmt.Sprintf("limit must be between 1 and %d", maxRunLimit),
				Code:  "invalid_request",
			})
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRecent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]runView, 0, len(runs))
	for _, rec := range runs {
		out = append(out, newRunView(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := s.runs.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRunView(rec))
}

func (s *Server) decodeMessage(w http.ResponseWriter, r *http.Request) (messageRequest, bool) {
	var req messageRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error(), Code: "invalid_request"})
		return req, false
	}
	return req, true
}

type runView struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	Goal       string    `json:"goal,omitempty"`
	Stages     int       `json:"stages"`
	Nodes      int       `json:"nodes"`
	Calendar   bool      `json:"calendar"`
	Recovered  bool      `json:"recovered,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMs int64     `json:"durationMs"`
}

func newRunView(rec *repository.RunRecord) runView {
	return runView{
		ID:         rec.ID,
		Message:    rec.Message,
		Goal:       rec.Goal,
		Stages:     rec.Stages,
		Nodes:      rec.Nodes,
		Calendar:   rec.Calendar,
		Recovered:  rec.Recovered,
		Error:      rec.Error,
		StartedAt:  rec.StartedAt,
		DurationMs: rec.DurationMs,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.InfoContext(r.Context(), "http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
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
