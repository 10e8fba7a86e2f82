package service

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handmatch_requests_total",
			Help: "Total number of analyze requests by outcome",
		},
		[]string{"outcome"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "handmatch_request_duration_seconds",
			Help:    "Time spent answering analyze requests",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"cached"},
	)

	BestMatchPercentage = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "handmatch_best_match_percentage",
			Help:    "Match percentage of the top template per request",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	CacheErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "handmatch_cache_errors_total",
			Help: "Response cache reads or writes that failed",
		},
	)
)

const (
	outcomeOK       = "ok"
	outcomeCached   = "cached"
	outcomeBadInput = "bad_input"
)

// ServeMetrics starts an HTTP server exposing /metrics on addr. It returns
// the server so the caller can shut it down.
func ServeMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("serving-metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Msg("metrics-server-failed")
		}
	}()
	return srv
}
