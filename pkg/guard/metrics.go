package guard

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/navguard/internal/errors"
)

// Navigation outcomes used as metric labels and span attributes.
const (
	OutcomeContinue = "continue"
	OutcomeRedirect = "redirect"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
)

func outcomeOf(dec *Decision, err error) string {
	switch {
	case err != nil:
		return OutcomeError
	case dec.Result.Aborted():
		return OutcomeRedirect
	case len(dec.Views) == 0:
		return OutcomeEmpty
	default:
		return OutcomeContinue
	}
}

// MetricsConfig configures navigation metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "navguard").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for guard duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures navigation metrics.
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
		Namespace: "navguard",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors of a guard and its navigator.
//
// Metrics collected:
//   - navguard_navigations_total: guard runs by outcome
//   - navguard_guard_duration_seconds: BeforeEach duration by outcome
//   - navguard_middleware_aborts_total: short-circuits by middleware name
//   - navguard_errors_total: failed guard runs by error category
//   - navguard_navigations_abandoned_total: navigations superseded by a newer one
//   - navguard_redirects_total: redirects followed by the navigator
//
// A nil *Metrics records nothing.
type Metrics struct {
	navigations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	aborts      *prometheus.CounterVec
	errors      *prometheus.CounterVec
	abandoned   prometheus.Counter
	redirects   prometheus.Counter
}

// NewMetrics registers the navigation collectors. Registering twice with the
// same registry panics, so create one Metrics per registry.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	g := guard.New(guard.Config{
//	    Registry: registry,
//	    Metrics:  guard.NewMetrics(guard.WithRegistry(reg)),
//	})
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of guarded navigations by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "guard_duration_seconds",
			Help:        "Time spent in the before-navigation guard in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"outcome"}),

		aborts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "middleware_aborts_total",
			Help:        "Total number of navigations short-circuited, by middleware",
			ConstLabels: config.ConstLabels,
		}, []string{"middleware"}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total number of failed navigations by error category",
			ConstLabels: config.ConstLabels,
		}, []string{"category"}),

		abandoned: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_abandoned_total",
			Help:        "Total number of navigations superseded by a newer one",
			ConstLabels: config.ConstLabels,
		}),

		redirects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total number of middleware redirects followed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) observe(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.navigations.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) abortedBy(name string) {
	if m == nil {
		return
	}
	m.aborts.WithLabelValues(name).Inc()
}

func (m *Metrics) failed(err error) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(categorizeError(err)).Inc()
}

func (m *Metrics) abandon() {
	if m == nil {
		return
	}
	m.abandoned.Inc()
}

func (m *Metrics) redirect() {
	if m == nil {
		return
	}
	m.redirects.Inc()
}

// categorizeError maps err to a low-cardinality label.
func categorizeError(err error) string {
	switch {
	case stderrors.Is(err, context.Canceled):
		return "canceled"
	case stderrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	var ne *errors.NavError
	if stderrors.As(err, &ne) && ne.Category != "" {
		return string(ne.Category)
	}
	return "middleware"
}
