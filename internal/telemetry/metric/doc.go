// Package metric provides Prometheus metrics for cohortdb-go.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Registry, a push-based Prometheus registry
//     satisfying the cluster package's Metrics interface structurally
//   - collector.go: ClusterStateCollector, a pull-based collector for
//     live executor state
//
// Metrics include:
//
//   - Topology refresh outcomes
//   - Retry and failover counts
//   - Leader-known and nodes-known gauges
//
// Metrics are exposed via Registry.Handler in Prometheus exposition
// format.
package metric
