package domain

// ClusterInfo carries the cluster-role hints a node reports about itself.
type ClusterInfo struct {
	// IsLeader is true when the reporting node believes it is the leader.
	IsLeader bool

	// WithClusterFailoverHeader is a per-descriptor hint, set by the
	// executor on a copy (WithFailoverHeader) before dispatch, that causes
	// the outgoing request to carry
	// the Raven-Cluster-Failover-Behavior header.
	WithClusterFailoverHeader bool
}

// NodeDescriptor is an addressable cluster member. Equality is by URL.
type NodeDescriptor struct {
	// URL is the canonical key identifying this node.
	URL string

	// Credentials is an opaque handle passed through to the transport
	// collaborator unchanged; the executor never inspects it.
	Credentials any

	// ClusterInfo is optional role information reported by the node.
	ClusterInfo *ClusterInfo
}

// Equal reports whether two descriptors refer to the same node, by URL.
func (n *NodeDescriptor) Equal(other *NodeDescriptor) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.URL == other.URL
}

// IsLeader reports whether the descriptor's cluster info marks it leader.
func (n *NodeDescriptor) IsLeader() bool {
	return n != nil && n.ClusterInfo != nil && n.ClusterInfo.IsLeader
}

// WithFailoverHeader returns a shallow copy of n with the per-descriptor
// failover header hint set. The original descriptor is left untouched.
func (n *NodeDescriptor) WithFailoverHeader(enabled bool) *NodeDescriptor {
	clone := *n
	ci := ClusterInfo{}
	if n.ClusterInfo != nil {
		ci = *n.ClusterInfo
	}
	ci.WithClusterFailoverHeader = enabled
	clone.ClusterInfo = &ci
	return &clone
}

// Clone returns a deep-enough copy of n suitable for installing as a new
// leader candidate (used when a redirect target has no matching descriptor
// in the known NodeList).
func (n *NodeDescriptor) Clone(url string) *NodeDescriptor {
	clone := &NodeDescriptor{
		URL:         url,
		Credentials: n.Credentials,
	}
	if n.ClusterInfo != nil {
		ci := *n.ClusterInfo
		clone.ClusterInfo = &ci
	}
	return clone
}

// NodeList is an ordered, immutable-once-built list of known cluster
// members. It is replaced wholesale on topology refresh (pointer swap),
// never mutated in place, so readers never observe a torn list.
type NodeList []*NodeDescriptor

// Find returns the descriptor matching url, or nil.
func (l NodeList) Find(url string) *NodeDescriptor {
	for _, n := range l {
		if n.URL == url {
			return n
		}
	}
	return nil
}

// Equal reports whether two NodeLists have the same URLs, in order, with
// the same leader bits. Used by persistence round-trip tests.
func (l NodeList) Equal(other NodeList) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i].URL != other[i].URL || l[i].IsLeader() != other[i].IsLeader() {
			return false
		}
	}
	return true
}
