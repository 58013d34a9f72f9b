// Package metrics provides Prometheus metrics for parameter validation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	acceptparams "github.com/nateware/accept-params"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "accept_params"

// Collector holds all Prometheus metrics for validation. It implements
// acceptparams.Observer.
type Collector struct {
	ValidationsTotal   *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec

	ConfigReloads prometheus.Counter
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer, DefaultNamespace)
}

// NewWithRegistry creates a collector registered with reg.
func NewWithRegistry(reg prometheus.Registerer, namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)
	return &Collector{
		ValidationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of params validations by result code",
			},
			[]string{"code"},
		),
		ValidationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_duration_seconds",
				Help:      "Time spent declaring and validating params",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
			[]string{"outcome"},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of applied configuration reloads",
			},
		),
	}
}

// Observe records one validation. An empty code is a success.
func (c *Collector) Observe(code acceptparams.Code, elapsed time.Duration) {
	label, outcome := string(code), "rejected"
	if code == "" {
		label, outcome = "ok", "accepted"
	}
	c.ValidationsTotal.WithLabelValues(label).Inc()
	c.ValidationDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
