// Package instrument provides engine observers that export runs, triggers,
// and dependency tracking to Prometheus and OpenTelemetry.
package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// MetricsConfig configures the Prometheus metrics observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactive").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for run duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reactive",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics implements reactive.Observer by exporting engine activity as
// Prometheus metrics.
//
// Metrics collected:
//   - reactive_runs_total: Counter of runner runs by kind and status
//   - reactive_run_duration_seconds: Histogram of run duration by kind
//   - reactive_triggers_total: Counter of dispatched triggers by change kind
//   - reactive_tracks_total: Counter of new dependency links
//   - reactive_subjects, reactive_dep_sets, reactive_dep_links: Gauges of
//     live store size (per engine passed to ObserveEngineStats)
//
// Example:
//
//	m := instrument.NewMetrics(instrument.WithNamespace("myapp"))
//	e := reactive.NewEngine(reactive.WithObserver(m))
//	m.ObserveEngineStats(e)
//
//	http.Handle("/metrics", promhttp.Handler())
type Metrics struct {
	config      MetricsConfig
	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	triggers    *prometheus.CounterVec
	tracksTotal prometheus.Counter
}

// NewMetrics creates a Prometheus observer and registers its collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		config: config,

		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "runs_total",
			Help:        "Total number of runner runs",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "run_duration_seconds",
			Help:        "Runner run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		triggers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "triggers_total",
			Help:        "Total number of dispatched runner wake-ups by change kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		tracksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tracks_total",
			Help:        "Total number of new dependency links",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveEngineStats registers gauges that report the engine's live store
// size. Call at most once per engine.
func (m *Metrics) ObserveEngineStats(e *reactive.Engine) {
	factory := promauto.With(m.config.Registry)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   m.config.Namespace,
		Subsystem:   m.config.Subsystem,
		Name:        "subjects",
		Help:        "Number of subjects with live dependency records",
		ConstLabels: m.config.ConstLabels,
	}, func() float64 { return float64(e.Stats().Subjects) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   m.config.Namespace,
		Subsystem:   m.config.Subsystem,
		Name:        "dep_sets",
		Help:        "Number of live dependency sets",
		ConstLabels: m.config.ConstLabels,
	}, func() float64 { return float64(e.Stats().DepSets) })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   m.config.Namespace,
		Subsystem:   m.config.Subsystem,
		Name:        "dep_links",
		Help:        "Number of live runner-to-dependency links",
		ConstLabels: m.config.ConstLabels,
	}, func() float64 { return float64(e.Stats().Links) })
}

// ObserveTrack implements reactive.Observer.
func (m *Metrics) ObserveTrack(ev reactive.TrackEvent) {
	m.tracksTotal.Inc()
}

// ObserveTrigger implements reactive.Observer.
func (m *Metrics) ObserveTrigger(ev reactive.TriggerEvent) {
	m.triggers.WithLabelValues(ev.Kind.String()).Inc()
}

// ObserveRun implements reactive.Observer.
func (m *Metrics) ObserveRun(ev reactive.RunEvent) {
	kind := "plain"
	if ev.Runner.Derived() {
		kind = "derived"
	}
	status := "success"
	if ev.Err != nil {
		status = "error"
	}
	m.runsTotal.WithLabelValues(kind, status).Inc()
	m.runDuration.WithLabelValues(kind).Observe(ev.Duration.Seconds())
}
