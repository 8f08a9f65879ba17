package cluster

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cohortdb/cohortdb-go/internal/core/domain"
)

// LeaderCell holds the currently known leader, if any, plus a one-shot
// latch goroutines can block on until a leader is installed. Get is a
// single atomic load and never blocks; every mutation goes through a small
// mutex so the node pointer and latch channel change together.
type LeaderCell struct {
	mu    sync.Mutex
	node  atomic.Pointer[domain.NodeDescriptor]
	latch atomic.Pointer[chan struct{}]
}

// NewLeaderCell returns a cell with no known leader.
func NewLeaderCell() *LeaderCell {
	c := &LeaderCell{}
	ch := make(chan struct{})
	c.latch.Store(&ch)
	return c
}

// Get returns the current leader, or nil. Lock-free.
func (c *LeaderCell) Get() *domain.NodeDescriptor {
	return c.node.Load()
}

// SetKnownLeader installs n unconditionally and raises the latch.
func (c *LeaderCell) SetKnownLeader(n *domain.NodeDescriptor) {
	if n == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.node.Store(n)
	c.raiseLatchLocked()
}

// SetIfNil installs n only if no leader is currently known. Returns true if
// it performed the install. When raiseLatch is true the latch is also
// raised, for callers that want awaiters to unblock even though this is a
// provisional (not server-confirmed) leader.
func (c *LeaderCell) SetIfNil(n *domain.NodeDescriptor, raiseLatch bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.node.Load() != nil {
		return false
	}
	c.node.Store(n)
	if raiseLatch {
		c.raiseLatchLocked()
	}
	return true
}

// CompareAndClear atomically clears the leader iff the current value equals
// prev. Returns true when the cell ends up nil, whether because this call
// cleared it or because it was already nil (idempotent).
func (c *LeaderCell) CompareAndClear(prev *domain.NodeDescriptor) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.node.Load()
	if cur == nil {
		return true
	}
	if !cur.Equal(prev) {
		return false
	}
	c.node.Store(nil)
	c.resetLatchLocked()
	return true
}

// ForceClear unconditionally clears the leader and resets the latch.
func (c *LeaderCell) ForceClear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.node.Store(nil)
	c.resetLatchLocked()
}

// AwaitLeader blocks until a leader is known, timeout elapses, or ctx is
// canceled, whichever comes first. Returns true iff a leader became known.
func (c *LeaderCell) AwaitLeader(ctx context.Context, timeout time.Duration) bool {
	ch := *c.latch.Load()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

func (c *LeaderCell) raiseLatchLocked() {
	old := c.latch.Load()
	select {
	case <-*old:
	default:
		close(*old)
	}
}

func (c *LeaderCell) resetLatchLocked() {
	old := c.latch.Load()
	select {
	case <-*old:
		ch := make(chan struct{})
		c.latch.Store(&ch)
	default:
	}
}
