// Package server hosts a presentation over HTTP: the browser page, slide
// SVGs, a REST action surface, the live websocket view and MCP tools.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/joeblew999/deckshow/internal/session"
)

// Config holds server configuration
type Config struct {
	Addr string
	// AllowAll accepts any CORS and websocket origin (dev mode)
	AllowAll bool
}

// Server is the HTTP host of one session
type Server struct {
	cfg        Config
	session    *session.Session
	hub        *Hub
	log        *slog.Logger
	router     chi.Router
	httpServer *http.Server
	mounts     []mount
}

type mount struct {
	pattern string
	h       http.Handler
}

// Option configures a Server
type Option func(*Server)

// WithHandler mounts an extra handler, such as the MCP endpoint or the deck
// library, under pattern
func WithHandler(pattern string, h http.Handler) Option {
	return func(s *Server) { s.mounts = append(s.mounts, mount{pattern, h}) }
}

// New creates a server for sess. hub must be the view the session was built with.
func New(cfg Config, sess *session.Session, hub *Hub, log *slog.Logger, opts ...Option) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{cfg: cfg, session: sess, hub: hub, log: log}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.AllowAll {
		hub.AllowAnyOrigin()
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Mcp-Session-Id"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/", s.handleIndex)
	r.Get("/slides/{file}", s.handleSlideSVG)
	r.Get("/charts/{file}", s.handleChartSVG)
	r.Handle("/ws", s.hub)
	s.registerAPI(r)

	for _, m := range s.mounts {
		r.Mount(m.pattern, m.h)
	}
	return r
}

// requestLogger logs each request through slog
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address until Shutdown
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.log.Info("deckshow listening", "addr", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
