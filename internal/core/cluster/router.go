package cluster

import (
	"sync"
	"sync/atomic"

	"github.com/cohortdb/cohortdb-go/internal/core/domain"
)

// Router picks which node a given dispatch should target, given the
// client's FailoverBehavior, the current leader, the known NodeList, and
// each node's recent failure record. It never performs I/O; the executor
// calls it once per dispatch attempt and handles the result.
type Router struct {
	stripingBase atomic.Int64
	forceMu      sync.Mutex
}

// NewRouter returns a Router with its read-striping counter at 0.
func NewRouter() *Router {
	return &Router{}
}

// GetReadStripingBase returns the current striping counter. When increment
// is true it first atomically advances the counter and returns the advanced
// value (pre-increment semantics), so concurrent GET dispatches fan out
// round-robin across NodeList.
func (r *Router) GetReadStripingBase(increment bool) int64 {
	if increment {
		return r.stripingBase.Add(1)
	}
	return r.stripingBase.Load()
}

// ForceReadFromMaster scopes a block of dispatch to always target the
// leader, by setting the striping base to -1 for the duration. Callers must
// invoke the returned release func, typically via defer.
func (r *Router) ForceReadFromMaster() func() {
	r.forceMu.Lock()
	prev := r.stripingBase.Swap(-1)
	return func() {
		r.stripingBase.Store(prev)
		r.forceMu.Unlock()
	}
}

// Select picks a node for one dispatch attempt. It returns needsFailover
// true when the policy tolerates a nil leader and the caller should enter
// the failover walk instead of dispatching directly; it returns a non-nil
// err when the policy does not tolerate a nil leader and none is known.
func (r *Router) Select(
	behavior domain.FailoverBehavior,
	method Method,
	leader *domain.NodeDescriptor,
	nodes domain.NodeList,
	counters *FailureCounters,
) (node *domain.NodeDescriptor, needsFailover bool, err error) {
	switch behavior {
	case domain.ReadFromAllWriteToLeader, domain.ReadFromAllWriteToLeaderWithFailovers:
		node = r.selectStriped(method, leader, nodes, counters)
		if node == nil {
			if behavior.Tolerant() {
				needsFailover = true
			} else {
				err = domain.NewClusterError(domain.KindClusterUnreachable, "cluster is not in a stable state")
			}
		}
	case domain.ReadFromLeaderWriteToLeaderWithFailovers:
		node = leader
		if node == nil {
			needsFailover = true
		}
	default: // domain.FailoverBehaviorDefault: strict, always the leader
		node = leader
		if node == nil {
			err = domain.NewClusterError(domain.KindClusterUnreachable, "cluster is not in a stable state")
		}
	}
	return node, needsFailover, err
}

// selectStriped implements the read-striping rule shared by both
// ReadFromAll* behaviors: writes always go to the leader; GETs stripe
// across NodeList unless striping is force-disabled (-1) or the striped
// candidate has failed too recently, in which case they fall back to the
// leader.
func (r *Router) selectStriped(method Method, leader *domain.NodeDescriptor, nodes domain.NodeList, counters *FailureCounters) *domain.NodeDescriptor {
	if method != MethodGet {
		return leader
	}
	if r.stripingBase.Load() == -1 {
		// Forced to the leader for the duration of a ForceReadFromMaster
		// scope; must not advance the counter here, or the next Select in
		// the same scope would read the post-increment value instead of -1.
		return leader
	}
	base := r.GetReadStripingBase(true)
	if base == -1 || len(nodes) == 0 {
		return leader
	}
	idx := int(((base % int64(len(nodes))) + int64(len(nodes))) % int64(len(nodes)))
	candidate := nodes[idx]
	if candidate != nil && counters.Eligible(candidate.URL) {
		return candidate
	}
	return leader
}

// FailoverCandidates returns the ordered set of nodes a failover walk
// should try: every known node except the one that just failed, leader
// first when known.
func FailoverCandidates(nodes domain.NodeList, leader *domain.NodeDescriptor, exclude string) domain.NodeList {
	seen := make(map[string]bool, len(nodes)+1)
	out := make(domain.NodeList, 0, len(nodes)+1)
	add := func(n *domain.NodeDescriptor) {
		if n == nil || n.URL == exclude || seen[n.URL] {
			return
		}
		seen[n.URL] = true
		out = append(out, n)
	}
	add(leader)
	for _, n := range nodes {
		add(n)
	}
	return out
}
