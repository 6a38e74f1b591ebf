// Package httpapi exposes the forecast and rule engines over HTTP. The
// handlers are a thin shell: they decode, call a pure engine, and encode.
package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"milecast/internal/config"
	"milecast/internal/forecast"
	"milecast/internal/rules"
	"milecast/internal/state"
)

// BuildInfo carries the ldflags version metadata surfaced by the health
// endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// Server routes forecast and engine requests onto the in-memory snapshot.
type Server struct {
	cfg      *config.AppConfig
	build    BuildInfo
	forecast *forecast.Engine
	engine   *rules.Engine
	executor rules.Executor

	mu   sync.RWMutex
	snap *state.Snapshot

	eventSchema *eventValidator
	router      chi.Router
}

// NewServer wires the engines and snapshot into a router.
func NewServer(cfg *config.AppConfig, build BuildInfo, snap *state.Snapshot, fc *forecast.Engine, eng *rules.Engine, ex rules.Executor) (*Server, error) {
	validator, err := newEventValidator()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:         cfg,
		build:       build,
		forecast:    fc,
		engine:      eng,
		executor:    ex,
		snap:        snap,
		eventSchema: validator,
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	r.Route("/forecast/{milestoneID}", func(r chi.Router) {
		r.Get("/", s.handleForecast)
		r.Get("/summary", s.handleForecastSummary)
		r.Post("/scenario", s.handleScenario)
		r.Post("/mitigation-preview", s.handleMitigationPreview)
	})

	r.Route("/engine", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/rules", s.handleRules)
		r.Post("/events", s.handleEvent)
		r.Post("/events/execute", s.handleEventExecute)
	})

	s.router = r
	return s, nil
}

// Handler returns the root http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetSnapshot swaps the snapshot serving future requests. In-flight requests
// keep the snapshot they started with.
func (s *Server) SetSnapshot(snap *state.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func (s *Server) snapshot() *state.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Run serves until the context is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", s.cfg.HTTPAddr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("HTTP server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// requestLogger logs one line per request with latency and status.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
