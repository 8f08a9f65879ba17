// Package cluster implements the cluster-aware request executor: topology
// discovery, leader tracking, failover routing, and retry/failover
// dispatch for a replicated cluster client.
//
// The package is organized around six collaborating pieces:
//
//   - FailureCounters: per-url failure bookkeeping (failurecounters.go)
//   - TopologyCache: best-effort durable topology snapshot (collaborators.go)
//   - LeaderCell: atomic leader holder with a one-shot latch (leadercell.go)
//   - TopologyRefresher: single-flight background topology probe (refresher.go)
//   - Router: per-dispatch node selection (router.go)
//   - Executor: the public entry point (executor.go)
//
// None of these types touch the network directly; they are driven by small
// collaborator interfaces (collaborators.go) so the transport, persistence,
// logging, and metrics concerns live in internal/infra and
// internal/telemetry and are injected at
// construction time.
package cluster
