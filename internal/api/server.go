// Package api serves verse lookup and composition over HTTP and WebSocket.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/FocuswithJustin/QuranLO/core/format"
	"github.com/FocuswithJustin/QuranLO/core/glyph"
	"github.com/FocuswithJustin/QuranLO/core/quran"
	"github.com/FocuswithJustin/QuranLO/core/source"
	"github.com/FocuswithJustin/QuranLO/core/surah"
	"github.com/FocuswithJustin/QuranLO/internal/cache"
	"github.com/FocuswithJustin/QuranLO/internal/logging"
	"github.com/FocuswithJustin/QuranLO/internal/server"
)

// Config holds API server settings.
type Config struct {
	Port           int
	AllowedOrigins []string
	Version        string

	// RateLimit applies per-IP request limiting when RequestsPerMinute > 0.
	RateLimit RateLimiterConfig

	// WebSocket limits; zero values take the defaults.
	MaxMessageRate int
	MaxMessageSize int64

	// Defaults for compose requests that leave these unset.
	ArabicFont string
	LatinFont  string
	Bismillah  bool
	Footer     bool
}

// Deps are the catalogs and stores the server reads from.
type Deps struct {
	Surahs  *surah.Catalog
	Sources *source.Catalog
	Glyphs  *glyph.Policy
	// Open opens the verse store of a source. Stores are closed after each
	// request.
	Open format.Opener
	// Stores is reported by /health when set.
	Stores *cache.Stores
}

// StoreOpener resolves a source under dataDir and opens it through stores.
func StoreOpener(dataDir string, stores *cache.Stores) format.Opener {
	return func(src source.Source) (quran.Store, error) {
		path, err := source.Resolve(dataDir, src)
		if err != nil {
			return nil, err
		}
		return stores.Open(path)
	}
}

// Server is the API server.
type Server struct {
	cfg      Config
	deps     Deps
	composer *format.Composer
	hub      *Hub
	started  time.Time
}

// New creates a server.
func New(cfg Config, deps Deps) *Server {
	if cfg.MaxMessageRate <= 0 {
		cfg.MaxMessageRate = 10
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Server{
		cfg:      cfg,
		deps:     deps,
		composer: format.NewComposer(deps.Surahs, deps.Glyphs, deps.Open),
		hub:      NewHub(),
		started:  time.Now(),
	}
}

// Hub returns the server's WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed handler wrapped in the middleware chain and
// starts the WebSocket hub, which runs until ctx is done.
func (s *Server) Handler(ctx context.Context) http.Handler {
	s.hub.Start(ctx)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/surahs", s.handleSurahs)
	r.Get("/surahs/{surah}", s.handleSurah)
	r.Get("/sources", s.handleSources)
	r.Get("/verses/{ref}", s.handleVerses)
	r.Post("/compose", s.handleCompose)
	r.Get("/ws", s.handleWebSocket)

	var handler http.Handler = server.SecurityHeadersWithCSP(server.APICSPConfig(), r)
	if s.cfg.RateLimit.RequestsPerMinute > 0 {
		rl := s.cfg.RateLimit
		if rl.BurstSize == 0 {
			rl.BurstSize = 10
		}
		handler = NewRateLimiter(ctx, rl).Middleware(handler)
		logging.Info("rate limiting enabled",
			"requests_per_minute", rl.RequestsPerMinute,
			"burst_size", rl.BurstSize)
	}
	handler = server.CORSMiddlewareWithConfig(server.CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}, handler)
	return logging.CombinedMiddleware(handler)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.ServerStartup("rest_api", "http", s.cfg.Port, "websocket_protocol", "ws")
	if len(s.cfg.AllowedOrigins) == 0 {
		logging.Warn("cors_permissive", "note", "allowing all origins")
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logging.Info("server_stopped", "uptime", time.Since(s.started).Round(time.Second).String())
	return nil
}
