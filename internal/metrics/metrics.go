package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups tracks result cache lookups by outcome (hit, miss, error).
	// A store error is demoted to a miss by the search pipeline but stays
	// visible here as its own outcome.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metasearch_cache_lookups_total",
			Help: "Total number of result cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// CacheWrites tracks result cache writes by status
	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metasearch_cache_writes_total",
			Help: "Total number of result cache writes by status",
		},
		[]string{"status"},
	)

	// EngineRequests tracks upstream engine calls by engine and status
	EngineRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metasearch_engine_requests_total",
			Help: "Total number of upstream engine requests by engine and status",
		},
		[]string{"engine", "status"},
	)

	// EngineLatency tracks upstream engine call latency
	EngineLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metasearch_engine_latency_seconds",
			Help:    "Latency of upstream engine requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"engine"},
	)

	// HTTPRequestDuration tracks inbound request handling time
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metasearch_http_request_duration_seconds",
			Help:    "Time spent handling HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)
)
