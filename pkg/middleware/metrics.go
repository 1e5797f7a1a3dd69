package middleware

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/navguard-dev/navguard/pkg/guard"
	"github.com/navguard-dev/navguard/pkg/nav"
)

// MetricsConfig configures the Prometheus metrics observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "navguard").
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
		Namespace: "navguard",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metricsObserver implements nav.Observer over Prometheus collectors.
type metricsObserver struct {
	nav.Hooks

	navigationsTotal *prometheus.CounterVec
	rejectionsTotal  *prometheus.CounterVec
	redirectsTotal   *prometheus.CounterVec
	errorsTotal      prometheus.Counter
	duration         *prometheus.HistogramVec

	mu    sync.Mutex
	start time.Time
}

// Prometheus creates a navigation observer that records Prometheus
// metrics.
//
// Metrics collected:
//   - navguard_navigations_total: counter of recorded transitions by type
//   - navguard_guard_rejections_total: counter of guard rejections by path
//   - navguard_guard_redirects_total: counter of guard redirects by path
//   - navguard_navigation_errors_total: counter of hard navigation errors
//   - navguard_navigation_duration_seconds: histogram of time from
//     BeforeNavigate to the recorded transition, by type
//
// Example:
//
//	m := nav.New("/", nav.WithObserver(
//	    middleware.Prometheus(middleware.WithNamespace("myapp")),
//	))
func Prometheus(opts ...MetricsOption) nav.Observer {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &metricsObserver{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of recorded navigation transitions",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		rejectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "guard_rejections_total",
			Help:        "Total number of navigations blocked by a guard",
			ConstLabels: config.ConstLabels,
		}, []string{"path"}),

		redirectsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "guard_redirects_total",
			Help:        "Total number of navigations diverted by a guard",
			ConstLabels: config.ConstLabels,
		}, []string{"path"}),

		errorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_errors_total",
			Help:        "Total number of hard navigation errors",
			ConstLabels: config.ConstLabels,
		}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation processing duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"type"}),
	}
}

func (m *metricsObserver) BeforeNavigate(op nav.EventType, from, to string) {
	m.mu.Lock()
	m.start = time.Now()
	m.mu.Unlock()
}

func (m *metricsObserver) AfterNavigate(e nav.Event) {
	m.navigationsTotal.WithLabelValues(string(e.Type)).Inc()

	m.mu.Lock()
	start := m.start
	m.start = time.Time{}
	m.mu.Unlock()
	if !start.IsZero() {
		m.duration.WithLabelValues(string(e.Type)).Observe(time.Since(start).Seconds())
	}
}

func (m *metricsObserver) OnGuardReject(requested string, r guard.Reject) {
	m.rejectionsTotal.WithLabelValues(requested).Inc()
}

func (m *metricsObserver) OnGuardRedirect(requested string, r guard.Redirect) {
	m.redirectsTotal.WithLabelValues(requested).Inc()
}

func (m *metricsObserver) OnNavigationError(requested string, err error) {
	m.errorsTotal.Inc()
}
