// Package metrics exposes keyloop's Prometheus instrumentation.
//
// A Metrics value owns its own registry. It implements macro.Observer so
// the recorder and player can report captured and fired events directly,
// and tracks the session state as a gauge.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/keyloop/internal/logging"
	"github.com/dshills/keyloop/internal/macro"
)

const namespace = "keyloop"

// Metrics holds the keyloop collectors.
type Metrics struct {
	registry *prometheus.Registry

	captured *prometheus.CounterVec
	fired    *prometheus.CounterVec
	loops    prometheus.Counter
	lateness prometheus.Histogram
	state    prometheus.Gauge
}

var _ macro.Observer = (*Metrics)(nil)

// New creates the collectors and registers them, together with the Go
// runtime collector, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		captured: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_captured_total",
			Help:      "Events appended to a recording, by kind.",
		}, []string{"kind"}),
		fired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_fired_total",
			Help:      "Events replayed through the output sink, by kind.",
		}, []string{"kind"}),
		loops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_loops_total",
			Help:      "Times playback restarted from the first event.",
		}),
		lateness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "playback_lateness_seconds",
			Help:      "How far past its due time each event fired.",
			Buckets:   []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_state",
			Help:      "Current session state: 0 idle, 1 recording, 2 playing.",
		}),
	}

	m.registry.MustRegister(
		m.captured,
		m.fired,
		m.loops,
		m.lateness,
		m.state,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Captured counts a recorded event.
func (m *Metrics) Captured(e macro.Event) {
	m.captured.WithLabelValues(e.Kind.String()).Inc()
}

// Fired counts a replayed event and observes its lateness.
func (m *Metrics) Fired(e macro.Event, lateness time.Duration) {
	m.fired.WithLabelValues(e.Kind.String()).Inc()
	m.lateness.Observe(lateness.Seconds())
}

// Restarted counts a playback loop.
func (m *Metrics) Restarted() {
	m.loops.Inc()
}

// SetState records the numeric session state.
func (m *Metrics) SetState(state int) {
	m.state.Set(float64(state))
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is canceled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *logging.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return m.serve(ctx, ln, logger)
}

func (m *Metrics) serve(ctx context.Context, ln net.Listener, logger *logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server forced to shutdown: %v", err)
		}
	}()

	logger.Info("Metrics listening on %s", ln.Addr())
	err := server.Serve(ln)
	<-done
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
