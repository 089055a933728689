package middleware

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/navcore/pkg/nav"
	"github.com/vango-dev/navcore/pkg/routepath"
)

// MetricsConfig configures the Prometheus navigation observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "navcore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus navigation observer.
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
		Namespace: "navcore",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a nav.Observer that records navigation metrics.
type Metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	cancellationsTotal *prometheus.CounterVec
	notFoundTotal      prometheus.Counter
	inFlight           prometheus.Gauge
	bridgeConnections  prometheus.Gauge
}

// Prometheus creates a navigation observer and registers its metrics.
// Register it once per registry.
//
// Metrics collected:
//   - navcore_navigations_total: navigations by outcome and trigger
//   - navcore_navigation_duration_seconds: request to terminal state, by outcome
//   - navcore_cancellations_total: cancelled navigations by reason
//   - navcore_not_found_total: navigations that committed the not-found view
//   - navcore_navigations_in_flight: navigations currently resolving
//   - navcore_bridge_connections: open history bridge connections
//
// Example:
//
//	ctrl, _ := nav.New(table, hist, nav.WithObserver(middleware.Prometheus()))
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by terminal outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome", "trigger"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Time from navigation request to terminal state in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"outcome"}),

		cancellationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cancellations_total",
			Help:        "Total number of cancelled navigations by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		notFoundTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "not_found_total",
			Help:        "Total number of navigations that showed the not-found view",
			ConstLabels: config.ConstLabels,
		}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_in_flight",
			Help:        "Number of navigations currently resolving",
			ConstLabels: config.ConstLabels,
		}),

		bridgeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bridge_connections",
			Help:        "Number of open history bridge connections",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// NavigationStart implements nav.Observer.
func (m *Metrics) NavigationStart(ctx context.Context, _ nav.Request) context.Context {
	m.inFlight.Inc()
	return ctx
}

// NavigationEnd implements nav.Observer.
func (m *Metrics) NavigationEnd(_ context.Context, t nav.Transition) {
	m.inFlight.Dec()

	outcome := t.Outcome.String()
	m.navigationsTotal.WithLabelValues(outcome, t.Request.Trigger.String()).Inc()
	m.navigationDuration.WithLabelValues(outcome).Observe(t.Duration.Seconds())

	switch t.Outcome {
	case nav.OutcomeFailed:
		m.notFoundTotal.Inc()
	case nav.OutcomeCancelled:
		m.cancellationsTotal.WithLabelValues(cancelReason(t.Err)).Inc()
	}
}

// BridgeConnected records an opened history bridge connection.
func (m *Metrics) BridgeConnected() {
	m.bridgeConnections.Inc()
}

// BridgeDisconnected records a closed history bridge connection.
func (m *Metrics) BridgeDisconnected() {
	m.bridgeConnections.Dec()
}

// cancelReason returns a low-cardinality label for a cancellation cause.
func cancelReason(err error) string {
	var rejection *nav.GuardRejection
	var redirect *nav.RedirectError
	switch {
	case errors.Is(err, nav.ErrSuperseded):
		return "superseded"
	case errors.As(err, &rejection):
		return "rejected"
	case errors.As(err, &redirect):
		return "redirected"
	case errors.Is(err, nav.ErrRedirectLimit):
		return "redirect_limit"
	case errors.Is(err, nav.ErrClosed):
		return "closed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "context"
	case errors.Is(err, routepath.ErrInvalidPath),
		errors.Is(err, routepath.ErrBackslashInPath),
		errors.Is(err, routepath.ErrNullByteInPath),
		errors.Is(err, routepath.ErrInvalidPercentEscape):
		return "invalid_path"
	default:
		return "guard_error"
	}
}
