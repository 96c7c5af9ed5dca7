package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_resolutions_total",
		Help: "Total number of SKU stock resolutions by source",
	}, []string{"source"})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_cache_hits_total",
		Help: "Total number of reconciliation cache hits",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_cache_misses_total",
		Help: "Total number of reconciliation cache misses",
	})

	CacheSharedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_cache_shared_total",
		Help: "Total number of resolutions served from an in-flight fetch",
	})

	CacheInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_cache_invalidations_total",
		Help: "Total number of explicit cache invalidations",
	})

	FallbackProbesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_fallback_probes_total",
		Help: "Total number of suffix fallback probes issued",
	})

	UpstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_upstream_errors_total",
		Help: "Total number of upstream warehouse failures by reason",
	}, []string{"reason"})

	UpstreamLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "warehouse_upstream_latency_seconds",
		Help:    "Latency of authoritative warehouse queries",
		Buckets: prometheus.DefBuckets,
	})

	StockUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_updates_total",
		Help: "Total number of variation-targeted stock updates by trigger",
	}, []string{"trigger"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
