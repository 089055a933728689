// Package server serves the console shell, the history bridge and metrics
// over HTTP.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	clientdist "github.com/vango-dev/navcore/client/dist"
	"github.com/vango-dev/navcore/internal/app"
	"github.com/vango-dev/navcore/pkg/history/wsbridge"
	"github.com/vango-dev/navcore/pkg/routepath"
)

// Fixed endpoints. Everything else serves the shell.
const (
	BridgePath  = "/_nav/ws"
	ClientPath  = "/_nav/client.js"
	MetricsPath = "/metrics"
	HealthPath  = "/healthz"
)

//go:embed templates/shell.html
var templates embed.FS

var shellTemplate = template.Must(template.ParseFS(templates, "templates/shell.html"))

type shellData struct {
	Lang       string
	Title      string
	View       string
	Path       string
	ClientPath string
	BridgePath string
}

// Server is the navcore HTTP server.
type Server struct {
	app        *app.App
	bridge     *wsbridge.Handler
	router     chi.Router
	logger     *slog.Logger
	httpServer *http.Server
}

// New builds the server routes for a.
func New(a *app.App) *Server {
	s := &Server{
		app:    a,
		bridge: a.BridgeHandler(),
		logger: a.Logger.With("component", "server"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get(HealthPath, s.handleHealth)
	r.Get(ClientPath, handleClient)
	if a.Registry != nil {
		r.Handle(MetricsPath, promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	}
	r.With(a.Localize).Handle(BridgePath, s.bridge)
	r.With(a.Localize).Get("/*", s.handleShell)

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is done, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.app.Config.Server.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops accepting connections and waits for requests to finish.
// Bridge sessions end with the base context passed to Serve.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.app.Config.Server.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete", "bridges", s.bridge.Active())
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func handleClient(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
	w.Write(clientdist.NavJS)
}

// handleShell serves the page for any application path. The initial
// title is resolved server side; unmatched paths get a 404 status with the
// not-found title.
func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	cfg := s.app.Config
	// Match what the tab sends: location.pathname is not decoded.
	path, ok := routepath.TrimBase(routepath.CleanBase(cfg.Routes.Base), r.URL.EscapedPath())
	if !ok {
		http.NotFound(w, r)
		return
	}

	status := http.StatusOK
	route, err := s.app.Table.Resolve(path)
	if err != nil {
		status = http.StatusNotFound
		route.ViewID = cfg.Routes.NotFoundView
		route.Path = path
	}

	lang := app.Language(r.Context())
	if lang == "" {
		lang = cfg.I18n.Lang
	}
	data := shellData{
		Lang:       lang,
		Title:      s.app.Titles.RouteTitle(route, cfg.Routes.NotFoundView, lang, cfg.I18n.Lang),
		View:       route.ViewID,
		Path:       path,
		ClientPath: ClientPath,
		BridgePath: BridgePath,
	}

	var buf bytes.Buffer
	if err := shellTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("shell render failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// logRequests logs each request with slog once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
