package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "polzela", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "polzela", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "polzela", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "polzela", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "polzela", Name: "cache_events_total", Help: "Cache hits/misses/dels/clears."},
		[]string{"cache", "event"},
	)
	CatalogLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "polzela", Name: "catalog_loads_total", Help: "Catalog requests by source."},
		[]string{"source"}, // fresh|cached
	)
	CatalogLines = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "polzela", Name: "catalog_lines_total", Help: "Parsed catalog lines by result."},
		[]string{"result"},
	)
	SnapshotOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "polzela", Name: "snapshot_ops_total", Help: "Offline snapshot reads/writes."},
		[]string{"backend", "op", "result"},
	)
	ConnectivityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "polzela", Name: "connectivity_checks_total", Help: "Connectivity decisions."},
		[]string{"state"}, // online|offline|unknown
	)
)

// Serve exposes reg on a dedicated listener; an empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		CatalogLoads, CatalogLines, SnapshotOps, ConnectivityChecks)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|del|clear
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveCatalogLoad(source string) { CatalogLoads.WithLabelValues(source).Inc() }

func ObserveCatalogLine(result string) { CatalogLines.WithLabelValues(result).Inc() }

func ObserveSnapshot(backend, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	SnapshotOps.WithLabelValues(backend, op, result).Inc()
}

func ObserveConnectivity(state string) { ConnectivityChecks.WithLabelValues(state).Inc() }
