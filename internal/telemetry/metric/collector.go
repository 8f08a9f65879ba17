package metric

import "github.com/prometheus/client_golang/prometheus"

var (
	clusterNodesKnownDesc = prometheus.NewDesc(
		namespace+"_cluster_nodes_known",
		"Number of nodes in the live topology snapshot, sampled on scrape.",
		nil, nil,
	)
	clusterLeaderKnownDesc = prometheus.NewDesc(
		namespace+"_cluster_leader_known",
		"1 if a leader is known at scrape time, 0 otherwise.",
		nil, nil,
	)
)

// ClusterStateCollector is a pull-based prometheus.Collector that
// samples live executor state on every scrape instead of requiring
// callers to push updates through Registry.SetNodesKnown /
// SetLeaderKnown. Plug it in with Registry.Register when the executor
// instance is available at startup.
type ClusterStateCollector struct {
	nodesKnown  func() int
	leaderKnown func() bool
}

// NewClusterStateCollector builds a collector around the given
// accessors. Either may be nil, in which case the corresponding metric
// is omitted from a scrape.
func NewClusterStateCollector(nodesKnown func() int, leaderKnown func() bool) *ClusterStateCollector {
	return &ClusterStateCollector{nodesKnown: nodesKnown, leaderKnown: leaderKnown}
}

// Describe implements prometheus.Collector.
func (c *ClusterStateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- clusterNodesKnownDesc
	ch <- clusterLeaderKnownDesc
}

// Collect implements prometheus.Collector.
func (c *ClusterStateCollector) Collect(ch chan<- prometheus.Metric) {
	if c.nodesKnown != nil {
		ch <- prometheus.MustNewConstMetric(clusterNodesKnownDesc, prometheus.GaugeValue, float64(c.nodesKnown()))
	}
	if c.leaderKnown != nil {
		v := 0.0
		if c.leaderKnown() {
			v = 1.0
		}
		ch <- prometheus.MustNewConstMetric(clusterLeaderKnownDesc, prometheus.GaugeValue, v)
	}
}
