// Package confloader provides configuration loading mechanism.
package confloader

import "time"

// ClusterConfig is the subset of the configuration surface that drives
// cluster.Conventions: dispatch timeouts, the failover policy, and the
// fallback servers probed when the primary node is unreachable.
//
// Keys (YAML or COHORTDB_ env var):
//
//	cluster.failover_behavior
//	cluster.wait_for_leader_timeout
//	cluster.replication_destinations_topology_timeout
//	cluster.failover_servers
type ClusterConfig struct {
	FailoverBehavior                       string
	WaitForLeaderTimeout                   time.Duration
	ReplicationDestinationsTopologyTimeout time.Duration
	FailoverServers                        []string
}

// LoadClusterConfig reads the cluster.* keys already loaded into l (via
// LoadFile and/or LoadEnv) into a ClusterConfig. Missing keys come back as
// zero values; callers apply only the non-zero fields over their defaults.
func (l *Loader) LoadClusterConfig() ClusterConfig {
	return ClusterConfig{
		FailoverBehavior:                       l.GetString("cluster.failover_behavior"),
		WaitForLeaderTimeout:                   l.GetDuration("cluster.wait_for_leader_timeout"),
		ReplicationDestinationsTopologyTimeout: l.GetDuration("cluster.replication_destinations_topology_timeout"),
		FailoverServers:                        l.GetStrings("cluster.failover_servers"),
	}
}
