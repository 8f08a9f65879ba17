package domain

// ReplicationDestination is one replica target as reported inside a
// TopologyDocument.
type ReplicationDestination struct {
	URL              string
	ClientVisibleURL string
	Database         string
	CanBeFailover    bool
	Credentials      any
	ClusterInfo      *ClusterInfo
}

// EffectiveURL picks ClientVisibleURL when set, else URL.
func (d *ReplicationDestination) EffectiveURL() string {
	if d.ClientVisibleURL != "" {
		return d.ClientVisibleURL
	}
	return d.URL
}

// ClientConfiguration is a server-pushed override of client-side failover
// behavior, carried inline on a TopologyDocument.
type ClientConfiguration struct {
	// FailoverBehavior, when non-empty, overrides the client's configured
	// FailoverBehavior.
	FailoverBehavior FailoverBehavior

	// WaitForLeaderTimeoutSeconds, when non-zero, overrides
	// Conventions.WaitForLeaderTimeout.
	WaitForLeaderTimeoutSeconds int
}

// IsZero reports whether the override carries no values.
func (c *ClientConfiguration) IsZero() bool {
	return c == nil || (c.FailoverBehavior == "" && c.WaitForLeaderTimeoutSeconds == 0)
}

// TopologyDocument is what a node returns when asked "what is the cluster
// topology?". Freshness is compared lexicographically by
// (Term, ClusterCommitIndex + isLeader?1:0), descending.
type TopologyDocument struct {
	Term               int64
	ClusterCommitIndex int64
	ClusterInfo        ClusterInfo
	Destinations       []ReplicationDestination
	ClientConfiguration *ClientConfiguration
}

// freshnessKey returns the comparison key used by winner selection (§4.4e).
func (d *TopologyDocument) freshnessKey() (int64, int64) {
	bonus := int64(0)
	if d.ClusterInfo.IsLeader {
		bonus = 1
	}
	return d.Term, d.ClusterCommitIndex + bonus
}

// Fresher reports whether d is strictly fresher than other by the
// (term, commitIndex+leaderBonus) key.
func (d *TopologyDocument) Fresher(other *TopologyDocument) bool {
	if other == nil {
		return true
	}
	dt, dc := d.freshnessKey()
	ot, oc := other.freshnessKey()
	if dt != ot {
		return dt > ot
	}
	return dc > oc
}
