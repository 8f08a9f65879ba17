// Package topologystore provides a durable cache for cluster topology.
//
// This package implements cluster.TopologyCache on top of Badger, so a
// client that has previously discovered a cluster's topology can skip
// straight to dispatch on the next startup instead of blocking on a
// fresh discovery round:
//
//   - badger.go: BadgerCache, a Badger-backed TopologyCache
//
// Cached state is keyed by cluster.ServerHash(primaryURL) and holds
// only URLs and leader bits; per-node credentials are never persisted,
// so nodes loaded from the cache carry no credentials.
package topologystore
