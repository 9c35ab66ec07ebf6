// Package web serves the agent and the notes stores over a JSON HTTP API.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hpungsan/orden/internal/agent"
	"github.com/hpungsan/orden/internal/ops"
	"github.com/hpungsan/orden/internal/tools"
)

// UserHeader carries the calling user's id. Requests without it act as the
// configured default user.
const UserHeader = "X-Orden-User"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Options configures the HTTP server.
type Options struct {
	Version     string
	Bind        string
	Port        int
	DefaultUser string
	Logger      *slog.Logger
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *agent.Service, exec *tools.Executor, deps *ops.Deps, opts Options) *http.Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handlers{
		agent:       svc,
		exec:        exec,
		deps:        deps,
		defaultUser: opts.DefaultUser,
		version:     opts.Version,
		logger:      logger,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", h.HandleIndex)
	mux.HandleFunc("POST /api/agent/command", h.HandleCommand)
	mux.HandleFunc("GET /api/agent/status", h.HandleStatus)
	mux.HandleFunc("GET /api/folders", h.HandleListFolders)
	mux.HandleFunc("POST /api/folders", h.HandleCreateFolder)
	mux.HandleFunc("GET /api/folders/{folderId}/notes", h.HandleListNotes)
	mux.HandleFunc("POST /api/folders/{folderId}/notes", h.HandleCreateNote)
	mux.HandleFunc("GET /api/search", h.HandleSearch)
	mux.HandleFunc("GET /api/notes/edits", h.HandleListEdits)
	mux.HandleFunc("GET /api/notes/custom", h.HandleListCustom)
	mux.HandleFunc("GET /api/notes/{folderId}/{noteId}", h.HandleReadNote)
	mux.HandleFunc("PUT /api/notes/{folderId}/{noteId}", h.HandleUpdateNote)
	mux.HandleFunc("DELETE /api/notes/{folderId}/{noteId}", h.HandleDeleteNote)

	// Wrap with security headers
	handler := securityHeaders(logRequests(logger, mux))

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Bind, opts.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs one debug line per request.
func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.DebugContext(r.Context(), "http request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("orden API listening", "addr", "http://"+srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
