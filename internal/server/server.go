package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/farhapartex/metasearch/internal/config"
	"github.com/farhapartex/metasearch/internal/handlers"
)

// shutdownTimeout bounds how long in-flight requests may drain on stop.
const shutdownTimeout = 15 * time.Second

// Server runs the public search listener and the internal metrics listener.
type Server struct {
	log        *zap.Logger
	app        *http.Server
	metricsSrv *http.Server
}

// New assembles the route table and both listeners.
func New(cfg *config.Config, search http.Handler, pages *handlers.PageHandler, publicDir string, log *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("GET /search", search)
	mux.HandleFunc("GET /about", pages.About)
	mux.HandleFunc("GET /settings", pages.Settings)
	mux.HandleFunc("GET /robots.txt", pages.Robots)
	mux.HandleFunc("GET /healthz", pages.Health)
	mux.Handle("GET /static/", http.StripPrefix("/static/",
		http.FileServer(http.Dir(filepath.Join(publicDir, "static")))))

	// "GET /" matches every GET the table above does not, so unknown paths
	// land here for the themed 404; other methods get 405 from the mux
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			pages.NotFound(w, r)
			return
		}
		pages.Index(w, r)
	})

	app := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.BindAddr, cfg.Server.Port),
		Handler:      chain(mux, withRequestID, withObservability(log)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.BindAddr, cfg.Server.MetricsPort),
		Handler:     metricsMux,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	return &Server{
		log:        log.With(zap.String("module", "server")),
		app:        app,
		metricsSrv: metricsSrv,
	}
}

// Run serves until ctx is canceled or a listener fails, then drains
// in-flight requests before returning.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		s.log.Info("search server listening", zap.String("addr", s.app.Addr))
		if err := s.app.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("search server: %w", err)
		}
	}()

	go func() {
		s.log.Info("metrics server listening", zap.String("addr", s.metricsSrv.Addr))
		if err := s.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		s.shutdown()
		return err
	}

	s.log.Info("shutdown signal received, draining requests")
	s.shutdown()
	s.log.Info("server stopped")
	return nil
}

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.app.Shutdown(ctx); err != nil {
		s.log.Error("search server shutdown failed", zap.Error(err))
	}
	if err := s.metricsSrv.Shutdown(ctx); err != nil {
		s.log.Error("metrics server shutdown failed", zap.Error(err))
	}
}
