package cluster

import (
	"fmt"

	"github.com/spaolacci/murmur3"
)

// ServerHash derives the durable cache key for a cluster's topology from its
// primary (bootstrap) node URL. Two clients pointed at the same primary node
// converge on the same cache key, so a restarted process can rehydrate its
// NodeList before the first topology probe completes.
func ServerHash(primaryURL string) string {
	sum := murmur3.Sum64([]byte(primaryURL))
	return fmt.Sprintf("%016x", sum)
}
