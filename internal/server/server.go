// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jeranaias/hrefhelper/internal/index"
	"github.com/jeranaias/hrefhelper/internal/session"
	"github.com/jeranaias/hrefhelper/internal/tasks"
)

// ============================================================================
// CONSTANTS
// ============================================================================

// Version is reported by /health. The CLI sets it at startup.
var Version = "dev"

// ============================================================================
// CONFIGURATION
// ============================================================================

// Config holds listener and middleware settings.
type Config struct {
	Host         string
	Port         int
	RateLimit    float64
	RateBurst    int
	MaxBodyBytes int64
	Logger       *log.Logger
}

// DefaultConfig returns a loopback-only configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "127.0.0.1",
		Port:         8765,
		RateLimit:    20,
		RateBurst:    40,
		MaxBodyBytes: 64 * 1024,
	}
}

// ============================================================================
// SERVER
// ============================================================================

// Server exposes a session over JSON/HTTP for editor plugins.
type Server struct {
	cfg     Config
	mgr     *session.Manager
	host    *session.RootSet
	logger  *log.Logger
	router  *http.ServeMux
	handler http.Handler
	server  *http.Server

	started  time.Time
	requests atomic.Int64
}

// New creates a server over mgr. host must be the RootSet mgr was created
// with; POST /v1/roots and /v1/activate update it.
func New(mgr *session.Manager, host *session.RootSet, cfg Config) *Server {
	defaults := DefaultConfig()
	if cfg.Host == "" {
		cfg.Host = defaults.Host
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaults.RateLimit
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = defaults.RateBurst
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	s := &Server{
		cfg:     cfg,
		mgr:     mgr,
		host:    host,
		logger:  logger,
		router:  http.NewServeMux(),
		started: time.Now(),
	}
	s.setupRoutes()

	s.handler = Chain(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		SecurityHeadersMiddleware(),
		RateLimitMiddleware(NewRateLimiter(cfg.RateLimit, cfg.RateBurst)),
		BodyLimitMiddleware(cfg.MaxBodyBytes),
		s.countRequests,
	)(s.router)

	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

// ============================================================================
// ROUTES
// ============================================================================

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /stats", s.handleStats)

	s.router.HandleFunc("GET /v1/roots", s.handleListRoots)
	s.router.HandleFunc("POST /v1/roots", s.handleOpenRoot)
	s.router.HandleFunc("POST /v1/reindex", s.handleReindex)
	s.router.HandleFunc("POST /v1/activate", s.handleActivate)
	s.router.HandleFunc("GET /v1/completions", s.handleCompletions)
	s.router.HandleFunc("GET /v1/known", s.handleKnown)

	s.router.HandleFunc("GET /v1/tasks", s.handleListTasks)
	s.router.HandleFunc("GET /v1/tasks/{id}", s.handleGetTask)
	s.router.HandleFunc("DELETE /v1/tasks/{id}", s.handleCancelTask)
}

// ============================================================================
// HEALTH AND STATS
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	SessionID     string `json:"session_id"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.mgr.Index().Stats().IsIndexing {
		status = "indexing"
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        status,
		Version:       Version,
		SessionID:     s.mgr.SessionID(),
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	})
}

// StatsResponse represents the statistics response.
type StatsResponse struct {
	session.Status
	Requests int64 `json:"requests"`
}

// handleStats handles GET /stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		Status:   s.mgr.GetStatus(),
		Requests: s.requests.Load(),
	})
}

// ============================================================================
// ROOTS AND REINDEXING
// ============================================================================

// RootInfo describes one open root.
type RootInfo struct {
	Path    string `json:"path"`
	Indexed bool   `json:"indexed"`
}

// handleListRoots handles GET /v1/roots.
func (s *Server) handleListRoots(w http.ResponseWriter, r *http.Request) {
	roots := []RootInfo{}
	for _, root := range s.host.OpenRoots() {
		roots = append(roots, RootInfo{Path: root, Indexed: s.mgr.Index().IsIndexed(root)})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"roots": roots})
}

// OpenRootRequest is the body of POST /v1/roots.
type OpenRootRequest struct {
	Root string `json:"root"`
}

// TaskAccepted is returned when work was queued.
type TaskAccepted struct {
	TaskID string `json:"task_id"`
	Root   string `json:"root"`
}

// handleOpenRoot handles POST /v1/roots: the editor opened a folder.
func (s *Server) handleOpenRoot(w http.ResponseWriter, r *http.Request) {
	var req OpenRootRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := checkDir(req.Root); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.host.Add(req.Root)
	id, err := s.mgr.ScheduleReindex(req.Root)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	root, _ := filepath.Abs(req.Root)
	writeJSON(w, http.StatusAccepted, TaskAccepted{TaskID: id, Root: root})
}

// ReindexRequest is the body of POST /v1/reindex. An empty Root means every
// open root.
type ReindexRequest struct {
	Root  string `json:"root,omitempty"`
	Async bool   `json:"async,omitempty"`
}

// handleReindex handles POST /v1/reindex.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	var req ReindexRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	roots := s.host.OpenRoots()
	if req.Root != "" {
		if err := checkDir(req.Root); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		roots = []string{req.Root}
	}

	if req.Async {
		accepted := []TaskAccepted{}
		for _, root := range roots {
			id, err := s.mgr.ScheduleReindex(root)
			if err != nil {
				writeError(w, statusFor(err), err.Error())
				return
			}
			accepted = append(accepted, TaskAccepted{TaskID: id, Root: root})
		}
		writeJSON(w, http.StatusAccepted, map[string]interface{}{"tasks": accepted})
		return
	}

	results := []index.Result{}
	for _, root := range roots {
		res, err := s.mgr.TriggerReindex(r.Context(), root)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		results = append(results, res)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// ============================================================================
// ACTIVATION AND QUERIES
// ============================================================================

// ActivateRequest is the body of POST /v1/activate.
type ActivateRequest struct {
	Path string `json:"path"`
}

// ActivateResponse reports what an activation did.
type ActivateResponse struct {
	Path  string `json:"path"`
	Added bool   `json:"added"`
	Known bool   `json:"known"`
}

// handleActivate handles POST /v1/activate: the editor focused a file.
func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, index.ErrInvalidPath.Error()+": path is required")
		return
	}

	s.host.SetActive(req.Path)
	added, err := s.mgr.SyncActive(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	path, _ := s.host.ActiveFile()
	writeJSON(w, http.StatusOK, ActivateResponse{
		Path:  path,
		Added: added,
		Known: s.mgr.Index().IsKnown(path),
	})
}

// CompletionsResponse is returned by GET /v1/completions.
type CompletionsResponse struct {
	Prefix      string                   `json:"prefix"`
	Count       int                      `json:"count"`
	Completions []index.CompletionRecord `json:"completions"`
}

// handleCompletions handles GET /v1/completions?prefix=&limit=.
func (s *Server) handleCompletions(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	records := s.mgr.QueryCompletions(prefix, limit)
	if records == nil {
		records = []index.CompletionRecord{}
	}
	writeJSON(w, http.StatusOK, CompletionsResponse{Prefix: prefix, Count: len(records), Completions: records})
}

// KnownResponse is returned by GET /v1/known.
type KnownResponse struct {
	Path  string `json:"path"`
	Known bool   `json:"known"`
	Root  string `json:"root,omitempty"`
}

// handleKnown handles GET /v1/known?path=.
func (s *Server) handleKnown(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, index.ErrInvalidPath.Error()+": path is required")
		return
	}

	resp := KnownResponse{Path: path, Known: s.mgr.Index().IsKnown(path)}
	if root, err := s.mgr.ContainingRoot(path); err == nil {
		resp.Root = root
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// TASKS
// ============================================================================

// handleListTasks handles GET /v1/tasks.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	list := s.mgr.Tasks()
	if list == nil {
		list = []*tasks.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": list})
}

// handleGetTask handles GET /v1/tasks/{id}.
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task := s.mgr.Task(r.PathValue("id"))
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleCancelTask handles DELETE /v1/tasks/{id}.
func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.mgr.Task(id) == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if !s.mgr.CancelTask(id) {
		writeError(w, http.StatusConflict, "task already finished")
		return
	}
	writeJSON(w, http.StatusOK, s.mgr.Task(id))
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens on the configured address and serves until Shutdown.
// Returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr(), err)
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Printf("SERVER_START | addr=%s version=%s", ln.Addr(), Version)
	return s.server.Serve(ln)
}

// Shutdown gracefully shuts down the server. After Shutdown, Start and Serve
// return http.ErrServerClosed immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Printf("SERVER_SHUTDOWN | requests=%d", s.requests.Load())
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	var resp ErrorResponse
	resp.Error.Message = message
	resp.Error.Code = status
	writeJSON(w, status, resp)
}

// decodeJSON reads a JSON body into v, writing a 400 or 413 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// checkDir rejects roots that are empty or not directories.
func checkDir(root string) error {
	if root == "" {
		return fmt.Errorf("%w: root is required", index.ErrInvalidRoot)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %v", index.ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", index.ErrInvalidRoot, root)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, index.ErrInvalidRoot), errors.Is(err, index.ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrOutsideRoots):
		return http.StatusNotFound
	case errors.Is(err, tasks.ErrQueueFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
