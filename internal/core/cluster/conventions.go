package cluster

import (
	"sync"
	"time"

	"github.com/cohortdb/cohortdb-go/internal/core/domain"
)

// ConventionsSnapshot is an immutable read of Conventions taken under lock,
// safe to pass around and read without further synchronization.
type ConventionsSnapshot struct {
	FailoverBehavior                     domain.FailoverBehavior
	WaitForLeaderTimeout                 time.Duration
	ReplicationDestinationsTopologyTimeout time.Duration
	FailoverServers                      []string
	PromoteWhenNoTopology                bool
}

// Conventions holds the client-side dispatch policy: how the router should
// behave, how long to wait for a leader, and what servers to fall back to
// when the primary node's topology probe fails outright. A server-pushed
// domain.ClientConfiguration can override FailoverBehavior and
// WaitForLeaderTimeout for the lifetime of the instance via UpdateFrom.
type Conventions struct {
	mu sync.RWMutex

	failoverBehavior                     domain.FailoverBehavior
	waitForLeaderTimeout                 time.Duration
	replicationDestinationsTopologyTimeout time.Duration
	failoverServers                      []string
	promoteWhenNoTopology                bool
}

// ConventionsOption configures a Conventions at construction time.
type ConventionsOption func(*Conventions)

// WithFailoverBehavior sets the initial dispatch policy.
func WithFailoverBehavior(b domain.FailoverBehavior) ConventionsOption {
	return func(c *Conventions) { c.failoverBehavior = b }
}

// WithWaitForLeaderTimeout sets how long strict-policy dispatch awaits a
// known leader before failing with KindNoStableLeader.
func WithWaitForLeaderTimeout(d time.Duration) ConventionsOption {
	return func(c *Conventions) { c.waitForLeaderTimeout = d }
}

// WithReplicationDestinationsTopologyTimeout bounds each topology probe
// fan-out round.
func WithReplicationDestinationsTopologyTimeout(d time.Duration) ConventionsOption {
	return func(c *Conventions) { c.replicationDestinationsTopologyTimeout = d }
}

// WithFailoverServers sets the fallback probe set used when the primary
// node's topology document cannot be fetched from any known node.
func WithFailoverServers(urls ...string) ConventionsOption {
	return func(c *Conventions) { c.failoverServers = append([]string(nil), urls...) }
}

// WithPromoteWhenNoTopology controls whether the refresher installs the
// primary node as a provisional leader when no node answers a topology
// probe and no failover servers are configured or reachable either. Default
// true (see DESIGN.md Open Question decision).
func WithPromoteWhenNoTopology(promote bool) ConventionsOption {
	return func(c *Conventions) { c.promoteWhenNoTopology = promote }
}

// NewConventions builds a Conventions with sane defaults, overridden by opts.
func NewConventions(opts ...ConventionsOption) *Conventions {
	c := &Conventions{
		failoverBehavior:                      domain.FailoverBehaviorDefault,
		waitForLeaderTimeout:                  5 * time.Second,
		replicationDestinationsTopologyTimeout: 2 * time.Second,
		promoteWhenNoTopology:                  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a consistent read of all fields.
func (c *Conventions) Snapshot() ConventionsSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ConventionsSnapshot{
		FailoverBehavior:                      c.failoverBehavior,
		WaitForLeaderTimeout:                  c.waitForLeaderTimeout,
		ReplicationDestinationsTopologyTimeout: c.replicationDestinationsTopologyTimeout,
		FailoverServers:                        append([]string(nil), c.failoverServers...),
		PromoteWhenNoTopology:                   c.promoteWhenNoTopology,
	}
}

// SetFailoverBehavior replaces the dispatch policy in place, for a config
// watcher hot-reloading a running Conventions.
func (c *Conventions) SetFailoverBehavior(b domain.FailoverBehavior) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failoverBehavior = b
}

// SetFailoverServers replaces the fallback probe set in place, for a config
// watcher hot-reloading a running Conventions.
func (c *Conventions) SetFailoverServers(urls []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failoverServers = append([]string(nil), urls...)
}

// UpdateFrom applies a server-pushed ClientConfiguration override. A zero
// cfg is a no-op.
func (c *Conventions) UpdateFrom(cfg *domain.ClientConfiguration) {
	if cfg.IsZero() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg.FailoverBehavior != "" {
		c.failoverBehavior = cfg.FailoverBehavior
	}
	if cfg.WaitForLeaderTimeoutSeconds != 0 {
		c.waitForLeaderTimeout = time.Duration(cfg.WaitForLeaderTimeoutSeconds) * time.Second
	}
}
