// Package domain defines the core domain models for the cluster-aware
// request executor.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - NodeDescriptor: an addressable cluster member
//   - TopologyDocument: the topology a node reports when probed
//   - ClusterError: the error kinds the executor surfaces to callers
package domain
