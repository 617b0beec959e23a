package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/farhapartex/metasearch/internal/aggregator"
	"github.com/farhapartex/metasearch/internal/cache"
	"github.com/farhapartex/metasearch/internal/config"
	"github.com/farhapartex/metasearch/internal/engines"
	"github.com/farhapartex/metasearch/internal/handlers"
	"github.com/farhapartex/metasearch/internal/logger"
	"github.com/farhapartex/metasearch/internal/render"
	"github.com/farhapartex/metasearch/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()

	zapLog.Info("configuration loaded",
		zap.String("bind_addr", cfg.Server.BindAddr),
		zap.Int("port", cfg.Server.Port),
		zap.Int("metrics_port", cfg.Server.MetricsPort),
		zap.Strings("upstream_engines", cfg.Aggregator.UpstreamEngines),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
	)

	resultCache, err := cache.New(cfg.Cache.RedisURL, cfg.Cache.TTL, cfg.Cache.OpTimeout, zapLog)
	if err != nil {
		zapLog.Fatal("failed to connect to result cache", zap.Error(err))
	}
	defer func() { _ = resultCache.Close() }()

	agg := aggregator.New(buildEngineRegistry(cfg), cfg.Aggregator, zapLog)

	publicDir, err := render.ResolvePublicDir(cfg.Server.PublicDir)
	if err != nil {
		zapLog.Fatal("failed to locate public assets", zap.Error(err))
	}
	zapLog.Info("serving public assets", zap.String("dir", publicDir))

	renderer, err := render.New(publicDir)
	if err != nil {
		zapLog.Fatal("failed to parse templates", zap.Error(err))
	}

	searchHandler := handlers.NewSearchHandler(resultCache, agg, renderer, cfg, zapLog)
	pageHandler := handlers.NewPageHandler(renderer, publicDir, cfg, zapLog)

	srv := server.New(cfg, searchHandler, pageHandler, publicDir, zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		zapLog.Fatal("server exited", zap.Error(err))
	}
}

// buildEngineRegistry constructs every supported engine keyed by the name
// users select it with. Engines missing credentials still register; they
// fail per request instead of disabling the selection.
func buildEngineRegistry(cfg *config.Config) map[string]engines.Engine {
	available := []engines.Engine{
		engines.NewDuckDuckGoEngine(cfg.Engines.DuckDuckGoBaseURL, cfg.Aggregator.EngineTimeout),
		engines.NewSearxNGEngine(cfg.Engines.SearxNGBaseURL, cfg.Aggregator.EngineTimeout),
		engines.NewBraveEngine(cfg.Engines.BraveAPIKey, cfg.Engines.BraveBaseURL, cfg.Aggregator.EngineTimeout),
	}

	registry := make(map[string]engines.Engine, len(available))
	for _, engine := range available {
		registry[engine.Name()] = engine
	}
	return registry
}
