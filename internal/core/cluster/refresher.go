package cluster

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cohortdb/cohortdb-go/internal/core/domain"
)

// refreshBackoff is how long the refresher sleeps between rounds when a
// winning (non-leader) document was found but no leader could yet be
// confirmed, per the algorithm in spec §4.4h.
const refreshBackoff = 500 * time.Millisecond

// refreshHandle lets callers wait for an in-flight refresh to finish
// without joining it as a participant.
type refreshHandle struct {
	done chan struct{}
}

// Wait blocks until the refresh this handle represents completes or ctx is
// canceled.
func (h *refreshHandle) Wait(ctx context.Context) {
	select {
	case <-h.done:
	case <-ctx.Done():
	}
}

// TopologyRefresher owns the single background refresh task for one
// cluster instance: it fans a topology probe out to known nodes, picks the
// freshest response, updates the LeaderCell and NodeList, and persists the
// result to a TopologyCache. Concurrent RequestRefresh calls join the same
// in-flight round instead of starting their own (single-flight).
type TopologyRefresher struct {
	instanceCtx context.Context
	cancel      context.CancelFunc

	conv      *Conventions
	leader    *LeaderCell
	counters  *FailureCounters
	cache     TopologyCache
	logger    Logger
	metrics   Metrics
	clock     Clock
	serverHash string

	mu           sync.Mutex
	inFlight     *refreshHandle
	bootstrapped bool

	nodes      atomic.Pointer[domain.NodeList]
	lastUpdate atomic.Int64
}

// NewTopologyRefresher wires a refresher. instanceCtx should live for the
// lifetime of the owning Executor; Close cancels it.
func NewTopologyRefresher(
	instanceCtx context.Context,
	primaryURL string,
	conv *Conventions,
	leader *LeaderCell,
	counters *FailureCounters,
	cache TopologyCache,
	logger Logger,
	metrics Metrics,
	clock Clock,
) *TopologyRefresher {
	ctx, cancel := context.WithCancel(instanceCtx)
	r := &TopologyRefresher{
		instanceCtx: ctx,
		cancel:      cancel,
		conv:        conv,
		leader:      leader,
		counters:    counters,
		cache:       cache,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
		serverHash:  ServerHash(primaryURL),
	}
	empty := domain.NodeList{}
	r.nodes.Store(&empty)
	return r
}

// Close cancels any in-flight or future background refresh work.
func (r *TopologyRefresher) Close() {
	r.cancel()
}

// Nodes returns the current NodeList snapshot.
func (r *TopologyRefresher) Nodes() domain.NodeList {
	return *r.nodes.Load()
}

// LastUpdate returns the time of the last completed refresh round, zero if
// none has completed yet.
func (r *TopologyRefresher) LastUpdate() time.Time {
	ns := r.lastUpdate.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// RequestRefresh triggers a refresh round targeting primaryNode, or joins
// one already running. The returned handle's Wait respects the caller's
// ctx, but the refresh itself runs against the instance's own lifetime, so
// one caller giving up does not abort the round for everyone else.
func (r *TopologyRefresher) RequestRefresh(primaryNode *domain.NodeDescriptor, fetch TopologyFetchFunc) *refreshHandle {
	r.mu.Lock()
	if r.inFlight != nil {
		h := r.inFlight
		r.mu.Unlock()
		return h
	}
	first := !r.bootstrapped
	r.bootstrapped = true
	handle := &refreshHandle{done: make(chan struct{})}
	r.inFlight = handle
	r.mu.Unlock()

	if first {
		r.bootstrapFromCache(primaryNode)
	}

	go r.run(primaryNode, fetch, handle)
	return handle
}

func (r *TopologyRefresher) bootstrapFromCache(primaryNode *domain.NodeDescriptor) {
	cached, err := r.cache.Load(r.serverHash)
	if err != nil {
		r.logger.Warn("topology cache load failed", "error", err)
		return
	}
	if len(cached) == 0 {
		return
	}
	r.nodes.Store(&cached)
	if leader := findLeader(cached); leader != nil {
		r.leader.SetIfNil(leader, true)
	}
}

func (r *TopologyRefresher) run(primaryNode *domain.NodeDescriptor, fetch TopologyFetchFunc, handle *refreshHandle) {
	defer func() {
		r.mu.Lock()
		r.inFlight = nil
		r.mu.Unlock()
		r.lastUpdate.Store(time.Now().UnixNano())
		close(handle.done)
	}()

	failoverTried := false
	for {
		select {
		case <-r.instanceCtx.Done():
			return
		default:
		}

		probeSet := r.buildProbeSet(primaryNode, failoverTried)
		prevLeader := r.leader.Get()
		docs := r.probe(probeSet, fetch)

		winnerIdx, winnerDoc := pickWinner(docs)
		if winnerDoc == nil {
			if !failoverTried && len(r.conv.Snapshot().FailoverServers) > 0 {
				failoverTried = true
				continue
			}
			r.metrics.ObserveRefresh("no_topology")
			if r.conv.Snapshot().PromoteWhenNoTopology {
				if r.leader.SetIfNil(primaryNode, true) {
					cur := r.nodes.Load()
					if cur == nil || len(*cur) == 0 {
						list := domain.NodeList{primaryNode}
						r.nodes.Store(&list)
					}
					r.metrics.SetLeaderKnown(true)
				}
			}
			return
		}

		winnerNode := probeSet[winnerIdx]
		newList := r.mergeDestinations(winnerDoc, winnerNode)
		if saveErr := r.cache.Save(r.serverHash, newList); saveErr != nil {
			r.logger.Warn("topology cache save failed", "error", saveErr)
		}
		r.nodes.Store(&newList)

		if cfg := winnerDoc.ClientConfiguration; cfg != nil {
			r.conv.UpdateFrom(cfg)
		}

		if winnerDoc.ClusterInfo.IsLeader {
			installed := newList.Find(winnerNode.URL)
			if installed == nil {
				installed = winnerNode
			}
			r.leader.SetKnownLeader(installed)
			r.metrics.ObserveRefresh("leader_found")
			r.metrics.SetLeaderKnown(true)
			return
		}

		if !r.leader.CompareAndClear(prevLeader) {
			r.metrics.ObserveRefresh("leader_installed_elsewhere")
			return
		}
		r.metrics.ObserveRefresh("retry")
		r.clock.Sleep(refreshBackoff)
	}
}

// buildProbeSet returns the nodes to fan a topology probe out to: the known
// NodeList (or just the primary, if empty) on the first attempt of a round,
// and the primary plus the configured failover servers once that attempt
// has come up empty.
func (r *TopologyRefresher) buildProbeSet(primaryNode *domain.NodeDescriptor, useFailoverServers bool) domain.NodeList {
	if useFailoverServers {
		snap := r.conv.Snapshot()
		out := domain.NodeList{primaryNode}
		for _, url := range snap.FailoverServers {
			out = append(out, primaryNode.Clone(url))
		}
		return out
	}
	cur := r.Nodes()
	if len(cur) == 0 {
		return domain.NodeList{primaryNode}
	}
	return cur
}

// probe fans fetch out to every node in set, bounded by the configured
// topology timeout, and returns one *domain.TopologyDocument per set index
// (nil for nodes that errored or timed out).
func (r *TopologyRefresher) probe(set domain.NodeList, fetch TopologyFetchFunc) []*domain.TopologyDocument {
	timeout := r.conv.Snapshot().ReplicationDestinationsTopologyTimeout
	ctx, cancel := context.WithTimeout(r.instanceCtx, timeout)
	defer cancel()

	results := make([]*domain.TopologyDocument, len(set))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range set {
		i, n := i, n
		g.Go(func() error {
			doc, err := fetch(gctx, n)
			if err != nil {
				r.logger.Debug("topology probe failed", "node", n.URL, "error", err)
				return nil
			}
			r.counters.Reset(n.URL)
			results[i] = doc
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func pickWinner(docs []*domain.TopologyDocument) (int, *domain.TopologyDocument) {
	winnerIdx := -1
	var winner *domain.TopologyDocument
	for i, doc := range docs {
		if doc == nil {
			continue
		}
		if winner == nil || doc.Fresher(winner) {
			winner = doc
			winnerIdx = i
		}
	}
	return winnerIdx, winner
}

// mergeDestinations converts a winning TopologyDocument's destinations into
// a NodeList, appending the responding node itself annotated with the
// ClusterInfo it reported.
func (r *TopologyRefresher) mergeDestinations(doc *domain.TopologyDocument, winnerNode *domain.NodeDescriptor) domain.NodeList {
	out := make(domain.NodeList, 0, len(doc.Destinations)+1)
	for _, dest := range doc.Destinations {
		url := dest.EffectiveURL()
		if url == "" || !dest.CanBeFailover {
			continue
		}
		if dest.Database != "" {
			url = forDatabase(rootDatabaseURL(url), dest.Database)
		}
		n := &domain.NodeDescriptor{
			URL:         url,
			Credentials: dest.Credentials,
			ClusterInfo: dest.ClusterInfo,
		}
		out = append(out, n)
	}

	self := winnerNode.Clone(winnerNode.URL)
	ci := doc.ClusterInfo
	self.ClusterInfo = &ci
	if existing := findByURL(out, self.URL); existing != nil {
		existing.ClusterInfo = self.ClusterInfo
	} else {
		out = append(out, self)
	}
	return out
}

func findByURL(list domain.NodeList, url string) *domain.NodeDescriptor {
	for _, n := range list {
		if n.URL == url {
			return n
		}
	}
	return nil
}

func findLeader(list domain.NodeList) *domain.NodeDescriptor {
	for _, n := range list {
		if n.IsLeader() {
			return n
		}
	}
	return nil
}

func rootDatabaseURL(u string) string {
	if idx := strings.Index(u, "/databases/"); idx >= 0 {
		return u[:idx]
	}
	return strings.TrimRight(u, "/")
}

func forDatabase(root, db string) string {
	return root + "/databases/" + db
}
