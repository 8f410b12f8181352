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
		prometheus.CounterOpts{Namespace: "places", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "places", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	FeedRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "places", Name: "feed_requests_total", Help: "Catalog feed requests."},
		[]string{"endpoint", "status"},
	)
	FeedLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "places", Name: "feed_request_duration_seconds",
			Help:    "Catalog feed request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	FeedBreakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "places", Name: "feed_breaker_state", Help: "Catalog feed breaker state (0 closed, 1 half-open, 2 open)."},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "places", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	RankingLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "places", Name: "ranking_duration_seconds",
			Help:    "Filter, score and sort pass duration seconds.",
			Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01},
		},
		[]string{"sort"},
	)
	RankedResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "places", Name: "ranked_results",
			Help:    "Venues returned per ranking pass.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)
	IngestEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "places", Name: "ingest_events_total", Help: "Ingested venues by outcome."},
		[]string{"outcome"}, // outcome: ok|miss|invalid|error
	)
)

// Serve exposes reg on a separate addr in the background. Empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
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
	reg.MustRegister(HTTPRequests, HTTPLatency, FeedRequests, FeedLatency, CacheEvents,
		RankingLatency, RankedResults, IngestEvents, FeedBreakerState)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveFeed(endpoint string, status int, dur time.Duration) {
	FeedRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	FeedLatency.WithLabelValues(endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveRanking(sort string, results int, dur time.Duration) {
	RankingLatency.WithLabelValues(sort).Observe(dur.Seconds())
	RankedResults.Observe(float64(results))
}

func ObserveIngest(outcome string) { IngestEvents.WithLabelValues(outcome).Inc() }
