// Package metrics provides Prometheus metrics collection for the engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/artpar/rpcgate/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the resolver engine.
// Labels use the procedure name rather than the raw path, so cardinality
// stays bounded by the size of the procedure table.
type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return newWith(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return newWith(promauto.With(reg))
}

func newWith(factory promauto.Factory) *Collector {
	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rpcgate",
				Name:      "requests_total",
				Help:      "Total number of resolved requests",
			},
			[]string{"procedure", "method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "rpcgate",
				Name:      "request_duration_seconds",
				Help:      "Request resolution duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"procedure", "method"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rpcgate",
				Name:      "errors_total",
				Help:      "Total number of error responses by status class",
			},
			[]string{"procedure", "class"},
		),
	}
}

// ObserveRequest records one resolved request.
func (c *Collector) ObserveRequest(proc, method string, status int, latency time.Duration) {
	if proc == "" {
		proc = "_unmatched"
	}
	c.RequestsTotal.WithLabelValues(proc, method, strconv.Itoa(status)).Inc()
	c.RequestDuration.WithLabelValues(proc, method).Observe(latency.Seconds())
	if status >= 400 {
		class := "4xx"
		if status >= 500 {
			class = "5xx"
		}
		c.ErrorsTotal.WithLabelValues(proc, class).Inc()
	}
}

// Ensure interface compliance.
var _ ports.Metrics = (*Collector)(nil)
