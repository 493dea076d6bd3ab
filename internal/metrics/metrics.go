// Package metrics exposes run instrumentation as Prometheus collectors.
// Long-running deploys can serve them via [Serve] when --metrics-addr is
// set; short runs simply skip the endpoint.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds all stacklift collectors.
	Registry = prometheus.NewRegistry()

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacklift",
			Subsystem: "lifecycle",
			Name:      "runs_total",
			Help:      "Total number of orchestration runs by environment and classification",
		},
		[]string{"environment", "classification"},
	)

	stateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stacklift",
			Subsystem: "lifecycle",
			Name:      "state_duration_seconds",
			Help:      "Time spent in each orchestration state",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68min
		},
		[]string{"state"},
	)

	pollCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacklift",
			Subsystem: "poller",
			Name:      "cycles_total",
			Help:      "Total number of status poll cycles by stack",
		},
		[]string{"stack"},
	)

	checksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stacklift",
			Subsystem: "checks",
			Name:      "results_total",
			Help:      "Total check results by category and outcome",
		},
		[]string{"category", "outcome"},
	)
)

func init() {
	Registry.MustRegister(runsTotal, stateDuration, pollCycles, checksTotal)
}

// RecordRun counts a finished run.
func RecordRun(environment, classification string) {
	runsTotal.WithLabelValues(environment, classification).Inc()
}

// ObserveState records the time spent in one orchestration state.
func ObserveState(state string, d time.Duration) {
	stateDuration.WithLabelValues(state).Observe(d.Seconds())
}

// RecordPoll counts one poll cycle against a stack.
func RecordPoll(stack string) {
	pollCycles.WithLabelValues(stack).Inc()
}

// RecordCheck counts one check result.
func RecordCheck(category, outcome string) {
	checksTotal.WithLabelValues(category, outcome).Inc()
}

// Serve exposes the registry on addr until ctx is cancelled. Errors from
// the listener are returned on the channel so callers can log without
// blocking the run.
func Serve(ctx context.Context, addr string) <-chan error {
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh
}
