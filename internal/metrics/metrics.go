// Package metrics exposes engine activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/flowgrid/internal/flow"
)

// Collector counts node computations and invalidations by node type, and
// records document loads. It implements flow.Observer.
type Collector struct {
	registry *prometheus.Registry

	computes      *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	diagnostics   *prometheus.CounterVec
	evaluation    prometheus.Histogram
	loads         prometheus.Counter
}

var _ flow.Observer = (*Collector)(nil)

// New creates a Collector backed by its own registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		computes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flowgrid_node_computes_total",
			Help: "Node compute bodies run, by node type.",
		}, []string{"type"}),
		invalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flowgrid_node_invalidations_total",
			Help: "Clean to dirty transitions, by node type.",
		}, []string{"type"}),
		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flowgrid_document_diagnostics_total",
			Help: "Diagnostics raised while loading documents, by severity.",
		}, []string{"severity"}),
		evaluation: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowgrid_evaluation_duration_seconds",
			Help:    "Time to evaluate a loaded graph.",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}),
		loads: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowgrid_document_loads_total",
			Help: "Documents loaded, reloads included.",
		}),
	}
}

func (c *Collector) NodeComputed(n *flow.Node) {
	c.computes.WithLabelValues(n.TypeTag()).Inc()
}

func (c *Collector) NodeInvalidated(n *flow.Node) {
	c.invalidations.WithLabelValues(n.TypeTag()).Inc()
}

// DocumentLoaded records one load and its diagnostics.
func (c *Collector) DocumentLoaded(diags hcl.Diagnostics) {
	c.loads.Inc()
	for _, d := range diags {
		c.diagnostics.WithLabelValues(severity(d.Severity)).Inc()
	}
}

// Evaluated records how long an evaluation pass took.
func (c *Collector) Evaluated(d time.Duration) {
	c.evaluation.Observe(d.Seconds())
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func severity(s hcl.DiagnosticSeverity) string {
	switch s {
	case hcl.DiagError:
		return "error"
	case hcl.DiagWarning:
		return "warning"
	default:
		return "invalid"
	}
}
