// Package runmetrics exposes Prometheus counters/histograms for a
// derivation run: per-step duration, pages processed, granulars seen, and
// worker-pool utilisation, mirroring the teacher's promauto-based
// internal/server/metrics.go. Optionally served over HTTP for long
// unattended batch runs via Serve.
package runmetrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	stepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "derivans_step_duration_seconds",
			Help:    "Duration of each derivation pipeline step",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)

	pagesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "derivans_pages_processed_total",
			Help: "Total number of pages processed by a step",
		},
		[]string{"step"},
	)

	granularsSeenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "derivans_granulars_seen_total",
			Help: "Total number of pages whose granular identifier was present for the footer band",
		},
	)

	workerPoolSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "derivans_worker_pool_size",
			Help: "Configured worker-pool size for the current step",
		},
		[]string{"step"},
	)

	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "derivans_runs_total",
			Help: "Total number of derivation runs, by outcome",
		},
		[]string{"outcome"}, // outcome: success, failure
	)
)

// ObserveStepDuration records how long a step took to process all of its
// pages.
func ObserveStepDuration(step string, seconds float64) {
	stepDuration.WithLabelValues(step).Observe(seconds)
}

// AddPagesProcessed increments the processed-page counter for step by n.
func AddPagesProcessed(step string, n int) {
	pagesProcessedTotal.WithLabelValues(step).Add(float64(n))
}

// IncGranularSeen increments the run-wide "granulars seen" counter (§4.2).
func IncGranularSeen() {
	granularsSeenTotal.Inc()
}

// SetWorkerPoolSize records the resolved pool size used for step.
func SetWorkerPoolSize(step string, size int) {
	workerPoolSize.WithLabelValues(step).Set(float64(size))
}

// ObserveRunOutcome records whether a complete run succeeded or failed.
func ObserveRunOutcome(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	runsTotal.WithLabelValues(outcome).Inc()
}

// Serve starts an HTTP server exposing /metrics on addr and blocks until
// ctx is cancelled (then shuts the server down) or the server fails.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
