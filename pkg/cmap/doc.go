// Package cmap provides a generic concurrent map.
//
// This package implements a sharded concurrent map optimized for
// high-throughput per-node bookkeeping (failure counts, in-flight
// refreshes) with the following features:
//
//   - Sharding: Configurable shard count for parallelism
//   - Fine-grained Locking: Per-shard RWMutex for minimal contention
//   - Iteration: Safe iteration while holding read locks
//
// Usage:
//
//	m := cmap.New[string, int]()
//	m.Set("http://node-a", 0)
//	val, ok := m.Get("http://node-a")
//
// Thread Safety:
//
// All operations are thread-safe. Read operations (Get, Has) use RLock,
// write operations (Set, Delete) use Lock.
package cmap
