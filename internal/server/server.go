// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the pipeline behind a small web form. Article
// generation takes minutes, so POST starts a background job and the page
// polls the job until the article is ready.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/blog-engine/pkg/types"
)

//go:embed web/index.html
var embeddedStatic embed.FS

// jobTimeout bounds one full pipeline run.
const jobTimeout = 20 * time.Minute

// Runner runs the pipeline for one topic. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, topic string, w io.Writer) (types.Article, error)
}

// Server handles the web form and the article job API.
type Server struct {
	runner   Runner
	store    *jobStore
	staticFS http.Handler
	logger   *slog.Logger
}

// New builds a Server over a pipeline runner.
func New(runner Runner, logger *slog.Logger) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("server: runner is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	sub, err := fs.Sub(embeddedStatic, "web")
	if err != nil {
		return nil, err
	}

	return &Server{
		runner:   runner,
		store:    newJobStore(),
		staticFS: http.FileServer(http.FS(sub)),
		logger:   logger,
	}, nil
}

// Routes returns the server's handler with logging attached.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/articles", s.handleArticles)
	mux.HandleFunc("/api/articles/", s.handleArticleByID)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/", s.staticFS)
	return s.logMiddleware(mux)
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.logger.Info("listening", "addr", addr)
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// --- Handlers ---

type createReq struct {
	Topic string `json:"topic"`
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreate(w, r)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.list())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		http.Error(w, "topic is required", http.StatusBadRequest)
		return
	}

	job := s.store.create(topic)
	go s.runJob(job.ID, topic)

	s.logger.Info("job started", "id", job.ID, "topic", topic)
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleArticleByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/articles/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	job, ok := s.store.get(id)
	if !ok {
		http.Error(w, "article job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// runJob executes the pipeline in the background and records the outcome.
func (s *Server) runJob(id, topic string) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.store.setStatus(id, StatusRunning, "")
	article, err := s.runner.Run(ctx, topic, s.store.logWriter(id))
	if err != nil {
		s.logger.Error("job failed", "id", id, "error", err)
		s.store.setStatus(id, StatusFailed, err.Error())
		return
	}

	s.store.finish(id, article)
	s.logger.Info("job finished", "id", id, "title", article.Title, "words", article.WordCount)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the response code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond).String(),
		)
	})
}
