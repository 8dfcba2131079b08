// Package observability exposes Prometheus metrics for the recognition
// pipeline and its reducers.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/platewatch/platewatch-go/internal/logging"
)

// Metrics bundles the pipeline counters and gauges.
type Metrics struct {
	FramesProcessed   prometheus.Counter
	FramesDropped     prometheus.Counter
	InferenceDuration prometheus.Histogram
	RollingFPS        prometheus.Gauge
	Captures          prometheus.Counter
	Confirmations     prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers the pipeline metrics on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platewatch_frames_processed_total",
			Help: "Frames admitted and run through the recognition pipeline.",
		}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platewatch_frames_dropped_total",
			Help: "Frames dropped by the busy or rate gate.",
		}),
		InferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "platewatch_inference_duration_seconds",
			Help:    "End-to-end recognition pipeline duration per frame.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		RollingFPS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "platewatch_rolling_fps",
			Help: "Rolling frames-per-second over the last completions.",
		}),
		Captures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platewatch_captures_total",
			Help: "Stable-run capture events emitted by the tracker.",
		}),
		Confirmations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "platewatch_confirmations_total",
			Help: "Plate identities promoted to confirmed.",
		}),
		registry: registry,
	}
	registry.MustRegister(m.FramesProcessed, m.FramesDropped, m.InferenceDuration,
		m.RollingFPS, m.Captures, m.Confirmations)
	return m
}

// ObserveFrame records one completed frame.
func (m *Metrics) ObserveFrame(total time.Duration, fps float64) {
	m.FramesProcessed.Inc()
	m.InferenceDuration.Observe(total.Seconds())
	m.RollingFPS.Set(fps)
}

// Serve exposes the metrics endpoint on addr until the server fails. Meant
// to run on its own goroutine.
func (m *Metrics) Serve(addr string) {
	log := logging.ForService("observability")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	log.Info("telemetry endpoint listening", "addr", addr)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("telemetry endpoint failed", "error", err)
	}
}
