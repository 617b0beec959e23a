package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/farhapartex/metasearch/internal/cache"
	"github.com/farhapartex/metasearch/internal/config"
	"github.com/farhapartex/metasearch/internal/metrics"
	"github.com/farhapartex/metasearch/internal/models"
)

// resultCache is the slice of the cache client the search pipeline needs.
type resultCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// aggregator fans a query out to the selected upstream engines.
type aggregator interface {
	Search(ctx context.Context, query string, page uint, engineNames []string) (*models.SearchResultSet, error)
}

// renderer produces response markup from a named template.
type renderer interface {
	Render(name string, data any) (string, error)
}

// SearchHandler orchestrates one search request end to end: pagination
// normalization, cache lookup, engine selection, aggregation, enrichment,
// cache population and rendering.
//
// Requests are independent units of work; the only cross-request state is
// the singleflight group, which collapses concurrent misses on the same
// cache key into a single upstream computation.
type SearchHandler struct {
	cache      resultCache
	aggregator aggregator
	renderer   renderer
	cfg        *config.Config
	log        *zap.Logger
	flights    singleflight.Group
}

// NewSearchHandler creates the search pipeline handler
func NewSearchHandler(resultCache resultCache, agg aggregator, renderer renderer, cfg *config.Config, log *zap.Logger) *SearchHandler {
	return &SearchHandler{
		cache:      resultCache,
		aggregator: agg,
		renderer:   renderer,
		cfg:        cfg,
		log:        log.With(zap.String("module", "search")),
	}
}

// ServeHTTP answers GET /search?q=<query>&page=<n>.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageParam(r.URL.Query().Get("page"))
	if err != nil {
		http.Error(w, "invalid page parameter", http.StatusBadRequest)
		return
	}

	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		// an empty query is user input, not an error
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	effectivePage, cacheKey := normalizePage(query, page, r.URL.RequestURI(), h.cfg.Server.BindAddr, h.cfg.Server.Port)

	serialized, err := h.cache.Get(r.Context(), cacheKey)
	if err == nil {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		h.respond(w, serialized, cacheKey)
		return
	}

	// a degraded store behaves as an always-miss cache; only the metric
	// outcome distinguishes absence from store failure
	if errors.Is(err, cache.ErrCacheMiss) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		h.log.Warn("cache lookup failed, treating as miss", zap.String("key", cacheKey), zap.Error(err))
	}

	engineNames, err := resolveEngines(r, h.cfg.Aggregator.UpstreamEngines)
	if err != nil {
		h.log.Error("failed to resolve engine selection", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// a shared flight must not die with the leader's connection; engine and
	// cache op timeouts still bound the detached work
	flightCtx := context.WithoutCancel(r.Context())
	value, err, shared := h.flights.Do(cacheKey, func() (interface{}, error) {
		return h.computeAndCache(flightCtx, query, effectivePage, cacheKey, engineNames)
	})
	if err != nil {
		h.log.Error("search pipeline failed",
			zap.String("query", query),
			zap.Uint("page", effectivePage),
			zap.Error(err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if shared {
		h.log.Debug("joined in-flight computation", zap.String("key", cacheKey))
	}

	h.respond(w, value.(string), cacheKey)
}

// computeAndCache runs the miss pipeline: aggregate, enrich, serialize and
// populate the cache. Its return value is the exact payload a later hit
// would read back.
func (h *SearchHandler) computeAndCache(ctx context.Context, query string, page uint, cacheKey string, engineNames []string) (string, error) {
	// a concurrent flight may have filled the key while this request was
	// waiting its turn
	if serialized, err := h.cache.Get(ctx, cacheKey); err == nil {
		return serialized, nil
	}

	resultSet, err := h.aggregator.Search(ctx, query, page, engineNames)
	if err != nil {
		return "", fmt.Errorf("aggregation failed: %w", err)
	}

	resultSet.AddStyle(models.Style{
		Theme:       h.cfg.Style.Theme,
		Colorscheme: h.cfg.Style.Colorscheme,
	})
	if resultSet.IsEmptyResultSet() {
		resultSet.MarkEmptyResultSet()
	}

	serialized, err := json.Marshal(resultSet)
	if err != nil {
		return "", fmt.Errorf("failed to serialize result set: %w", err)
	}

	if err := h.cache.Set(ctx, cacheKey, string(serialized)); err != nil {
		metrics.CacheWrites.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to cache result set: %w", err)
	}
	metrics.CacheWrites.WithLabelValues("ok").Inc()

	return string(serialized), nil
}

// respond deserializes the result set payload and renders the search page.
// Cached payloads are already enriched, so no enrichment happens here.
func (h *SearchHandler) respond(w http.ResponseWriter, serialized, cacheKey string) {
	var resultSet models.SearchResultSet
	if err := json.Unmarshal([]byte(serialized), &resultSet); err != nil {
		h.log.Error("failed to deserialize result set", zap.String("key", cacheKey), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	markup, err := h.renderer.Render("search", &resultSet)
	if err != nil {
		h.log.Error("failed to render search page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(markup)); err != nil {
		h.log.Warn("failed to write response", zap.Error(err))
	}
}
