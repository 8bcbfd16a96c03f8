// Package metrics exports reactive runtime activity as Prometheus metrics.
//
// Observer implements reactive.Observer; attach it with reactive.WithObserver
// or combine it with other observers through reactive.Observers.
//
// Metrics collected (with the default namespace):
//   - reactive_fanouts_total: fan-outs by source kind and outcome
//   - reactive_fanout_width: histogram of dependents notified per fan-out
//   - reactive_runs_total: effect and invalidator runs by kind and outcome
//   - reactive_run_duration_seconds: histogram of run durations by kind
//   - reactive_recomputes_total: Computed recomputations
//   - reactive_reentrant_skips_total: re-entrant runs skipped, by kind
//   - reactive_run_depth: gauge of currently nested runs
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "reactive").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for run duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// WidthBuckets are the histogram buckets for fan-out width.
	// Default: 0, 1, 2, 4 ... 128
	WidthBuckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the run duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithWidthBuckets sets the fan-out width histogram buckets.
func WithWidthBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.WidthBuckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:    "reactive",
		Buckets:      prometheus.DefBuckets,
		WidthBuckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
		Registry:     prometheus.DefaultRegisterer,
	}
}

// Observer records runtime activity. It must only be called from the
// runtime's goroutine, like every reactive.Observer.
type Observer struct {
	fanOuts     *prometheus.CounterVec
	fanOutWidth *prometheus.HistogramVec
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	recomputes  prometheus.Counter
	reentrant   *prometheus.CounterVec
	depth       prometheus.Gauge

	// starts holds the start time of each open run, innermost last.
	starts []time.Time
}

var _ reactive.Observer = (*Observer)(nil)

// New registers the metrics and returns an Observer that records them.
// Registering twice against the same registry panics, as with promauto.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	rt := reactive.NewRuntime(reactive.WithObserver(metrics.New(metrics.WithRegistry(reg))))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Observer{
		fanOuts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "fanouts_total",
			Help:        "Total number of source fan-outs",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		fanOutWidth: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "fanout_width",
			Help:        "Number of dependents notified per fan-out",
			ConstLabels: config.ConstLabels,
			Buckets:     config.WidthBuckets,
		}, []string{"kind"}),

		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "runs_total",
			Help:        "Total number of effect and invalidator runs",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "run_duration_seconds",
			Help:        "Run duration in seconds, including nested fan-outs",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		recomputes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "recomputes_total",
			Help:        "Total number of Computed recomputations",
			ConstLabels: config.ConstLabels,
		}),

		reentrant: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reentrant_skips_total",
			Help:        "Total number of runs skipped because the dependent was already running",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		depth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "run_depth",
			Help:        "Number of currently nested runs",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// BeginFanOut implements reactive.Observer.
func (o *Observer) BeginFanOut(source reactive.NodeInfo, dependents int) {
	o.fanOutWidth.WithLabelValues(source.Kind.String()).Observe(float64(dependents))
}

// EndFanOut implements reactive.Observer.
func (o *Observer) EndFanOut(source reactive.NodeInfo, panicked bool) {
	o.fanOuts.WithLabelValues(source.Kind.String(), status(panicked)).Inc()
}

// BeginRun implements reactive.Observer.
func (o *Observer) BeginRun(dependent reactive.NodeInfo) {
	o.starts = append(o.starts, time.Now())
	o.depth.Inc()
}

// EndRun implements reactive.Observer.
func (o *Observer) EndRun(dependent reactive.NodeInfo, panicked bool) {
	kind := dependent.Kind.String()
	if n := len(o.starts); n > 0 {
		o.runDuration.WithLabelValues(kind).Observe(time.Since(o.starts[n-1]).Seconds())
		o.starts = o.starts[:n-1]
	}
	o.depth.Dec()
	o.runs.WithLabelValues(kind, status(panicked)).Inc()
}

// Recomputed implements reactive.Observer.
func (o *Observer) Recomputed(reactive.NodeInfo) {
	o.recomputes.Inc()
}

// Reentered implements reactive.Observer.
func (o *Observer) Reentered(dependent reactive.NodeInfo) {
	o.reentrant.WithLabelValues(dependent.Kind.String()).Inc()
}

func status(panicked bool) string {
	if panicked {
		return "panic"
	}
	return "ok"
}
