package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/farhapartex/metasearch/internal/config"
	"github.com/farhapartex/metasearch/internal/engines"
	"github.com/farhapartex/metasearch/internal/metrics"
	"github.com/farhapartex/metasearch/internal/models"
)

var (
	// ErrNoUsableEngine means the selection named no engine this process knows.
	ErrNoUsableEngine = errors.New("aggregator: no usable engine in selection")

	// ErrAllEnginesFailed means every selected engine errored out.
	ErrAllEnginesFailed = errors.New("aggregator: all selected engines failed")
)

// Aggregator fans a query out to upstream engines and merges their answers
// into a single result set. Individual engine failures are tolerated as long
// as at least one engine delivers.
type Aggregator struct {
	engines  map[string]engines.Engine
	breakers map[string]*gobreaker.CircuitBreaker
	cfg      config.AggregatorConfig
	log      *zap.Logger
}

// New creates an aggregator over the given engine registry. When circuit
// breaking is enabled, each engine gets its own breaker so one flaky upstream
// cannot poison the others.
func New(registry map[string]engines.Engine, cfg config.AggregatorConfig, log *zap.Logger) *Aggregator {
	a := &Aggregator{
		engines:  registry,
		breakers: make(map[string]*gobreaker.CircuitBreaker, len(registry)),
		cfg:      cfg,
		log:      log.With(zap.String("module", "aggregator")),
	}

	if cfg.EnableCircuitBreaker {
		for name := range registry {
			a.breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:    name,
				Timeout: cfg.CircuitBreakerTimeout,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures >= uint32(cfg.CircuitBreakerThreshold)
				},
				OnStateChange: func(name string, from, to gobreaker.State) {
					a.log.Warn("circuit breaker state change",
						zap.String("engine", name),
						zap.String("from", from.String()),
						zap.String("to", to.String()),
					)
				},
			})
		}
	}

	return a
}

// Search runs the query against every engine in the selection using the
// fan-out/fan-in pattern and merges the results, deduplicating by URL.
// Unknown engine names are skipped; a selection with none usable fails.
func (a *Aggregator) Search(ctx context.Context, query string, page uint, engineNames []string) (*models.SearchResultSet, error) {
	a.delay()

	selected := make([]engines.Engine, 0, len(engineNames))
	for _, name := range engineNames {
		engine, ok := a.engines[name]
		if !ok {
			a.log.Warn("unknown engine in selection, skipping", zap.String("engine", name))
			metrics.EngineRequests.WithLabelValues(name, "unknown").Inc()
			continue
		}
		selected = append(selected, engine)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoUsableEngine, engineNames)
	}

	startTime := time.Now()

	resultsChan := make(chan *models.EngineResult, len(selected))
	var wg sync.WaitGroup

	for _, engine := range selected {
		wg.Add(1)
		go a.searchEngine(ctx, engine, query, page, resultsChan, &wg)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	merged := make([]*models.SearchResult, 0)
	seen := make(map[string]*models.SearchResult)
	failed := 0

	for engineResult := range resultsChan {
		if engineResult.Error != nil {
			failed++
			status := "error"
			switch {
			case engineResult.TimedOut:
				status = "timeout"
			case errors.Is(engineResult.Error, gobreaker.ErrOpenState):
				status = "open"
			}
			metrics.EngineRequests.WithLabelValues(engineResult.Engine, status).Inc()
			a.log.Warn("engine failed",
				zap.String("engine", engineResult.Engine),
				zap.Duration("duration", engineResult.Duration),
				zap.Error(engineResult.Error),
			)
			continue
		}

		metrics.EngineRequests.WithLabelValues(engineResult.Engine, "success").Inc()
		metrics.EngineLatency.WithLabelValues(engineResult.Engine).Observe(engineResult.Duration.Seconds())
		if a.cfg.Debug {
			a.log.Debug("engine completed",
				zap.String("engine", engineResult.Engine),
				zap.Int("results", len(engineResult.Results)),
				zap.Duration("duration", engineResult.Duration),
			)
		}

		for _, result := range engineResult.Results {
			if existing, ok := seen[result.URL]; ok {
				existing.Engines = unionEngines(existing.Engines, result.Engines)
				continue
			}
			seen[result.URL] = result
			merged = append(merged, result)
		}
	}

	if failed == len(selected) {
		return nil, fmt.Errorf("%w: %d engines", ErrAllEnginesFailed, failed)
	}

	a.log.Info("aggregation completed",
		zap.String("query", query),
		zap.Uint("page", page),
		zap.Int("results", len(merged)),
		zap.Int("engines_queried", len(selected)),
		zap.Int("engines_failed", failed),
		zap.Duration("duration", time.Since(startTime)),
	)

	return models.NewSearchResultSet(query, merged), nil
}

// searchEngine queries a single engine (runs in goroutine)
func (a *Aggregator) searchEngine(
	parentCtx context.Context,
	engine engines.Engine,
	query string,
	page uint,
	resultsChan chan<- *models.EngineResult,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	startTime := time.Now()
	engineResult := models.NewEngineResult(engine.Name())

	ctx, cancel := context.WithTimeout(parentCtx, a.cfg.EngineTimeout)
	defer cancel()

	results, err := a.execute(ctx, engine, query, page)
	engineResult.Duration = time.Since(startTime)

	if err != nil {
		engineResult.Error = err
		if ctx.Err() == context.DeadlineExceeded {
			engineResult.TimedOut = true
		}
	} else {
		if len(results) > a.cfg.MaxResultsPerEngine {
			results = results[:a.cfg.MaxResultsPerEngine]
		}
		engineResult.Results = results
	}

	resultsChan <- engineResult
}

// execute runs the engine call through its circuit breaker when one is
// configured for it.
func (a *Aggregator) execute(ctx context.Context, engine engines.Engine, query string, page uint) ([]*models.SearchResult, error) {
	breaker, ok := a.breakers[engine.Name()]
	if !ok {
		return engine.Search(ctx, query, page, a.cfg.MaxResultsPerEngine)
	}

	var results []*models.SearchResult
	_, err := breaker.Execute(func() (interface{}, error) {
		searched, err := engine.Search(ctx, query, page, a.cfg.MaxResultsPerEngine)
		if err != nil {
			return nil, err
		}
		results = searched
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// delay sleeps between 1 and the configured number of seconds before fanning
// out, spacing upstream calls apart so bursts are less bot-shaped.
func (a *Aggregator) delay() {
	maxSecs := int64(a.cfg.RandomDelay / time.Second)
	if maxSecs < 1 {
		return
	}
	time.Sleep(time.Duration(1+rand.Int63n(maxSecs)) * time.Second)
}

func unionEngines(existing, extra []string) []string {
	for _, engine := range extra {
		found := false
		for _, have := range existing {
			if have == engine {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, engine)
		}
	}
	return existing
}
