// Package metric provides Prometheus metrics for cohortdb-go.
//
// It exposes metrics in Prometheus format for monitoring topology
// refresh outcomes, retry and failover activity, and the client's
// view of cluster health.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cohortdb"

// Registry holds the client's Prometheus metrics and satisfies
// cluster.Metrics structurally, without either package importing the
// other.
type Registry struct {
	registry *prometheus.Registry

	refreshesTotal *prometheus.CounterVec
	retriesTotal   prometheus.Counter
	failoversTotal prometheus.Counter
	leaderKnown    prometheus.Gauge
	nodesKnown     prometheus.Gauge
}

// NewRegistry creates a metrics registry and registers all cohortdb
// collectors along with the standard Go runtime and process
// collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		refreshesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "topology_refreshes_total",
			Help:      "Topology refresh rounds by outcome.",
		}, []string{"outcome"}),
		retriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_retries_total",
			Help:      "Operation retries consumed due to real failures.",
		}),
		failoversTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failovers_total",
			Help:      "Operations that succeeded only after walking the failover list.",
		}),
		leaderKnown: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "leader_known",
			Help:      "1 if the client currently holds a known cluster leader, 0 otherwise.",
		}),
		nodesKnown: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes_known",
			Help:      "Number of nodes in the client's current topology snapshot.",
		}),
	}

	reg.MustRegister(
		r.refreshesTotal,
		r.retriesTotal,
		r.failoversTotal,
		r.leaderKnown,
		r.nodesKnown,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return r
}

// ObserveRefresh records the outcome of a topology refresh round, e.g.
// "leader-found", "no-topology", "promoted-primary".
func (r *Registry) ObserveRefresh(outcome string) {
	r.refreshesTotal.WithLabelValues(outcome).Inc()
}

// ObserveRetry records a retry consumed after a real operation failure.
func (r *Registry) ObserveRetry() {
	r.retriesTotal.Inc()
}

// ObserveFailover records an operation that only succeeded by walking
// the failover candidate list.
func (r *Registry) ObserveFailover() {
	r.failoversTotal.Inc()
}

// SetLeaderKnown reports whether the client currently holds a known
// leader.
func (r *Registry) SetLeaderKnown(known bool) {
	if known {
		r.leaderKnown.Set(1)
		return
	}
	r.leaderKnown.Set(0)
}

// SetNodesKnown reports the size of the client's current topology
// snapshot.
func (r *Registry) SetNodesKnown(n int) {
	r.nodesKnown.Set(float64(n))
}

// Register adds an additional prometheus.Collector to the registry,
// e.g. a ClusterStateCollector polling a live Executor.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// Handler returns an HTTP handler serving /metrics in Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
