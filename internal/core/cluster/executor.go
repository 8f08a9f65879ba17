package cluster

import (
	"context"
	"errors"

	"github.com/cohortdb/cohortdb-go/internal/core/domain"
)

// DefaultRetries is the dispatch attempt budget Execute starts with. Leader
// churn detected mid-retry (a concurrent CompareAndClear race) does not
// consume this budget; only genuine operation failures against a stable
// leader do.
const DefaultRetries = 3

// Executor is the public entry point: it owns the leader cell, the
// failure counters, the background topology refresher, and the router, and
// exposes Execute as the single call site user code dispatches operations
// through.
type Executor struct {
	instanceCtx context.Context
	cancel      context.CancelFunc

	primaryNode *domain.NodeDescriptor
	conv        *Conventions
	router      *Router
	leader      *LeaderCell
	counters    *FailureCounters
	refresher   *TopologyRefresher

	fetchTopology TopologyFetchFunc
	logger        Logger
	metrics       Metrics
	clock         Clock
}

// NewExecutor wires an Executor against primaryNode as the bootstrap
// contact point. Any nil collaborator is replaced with a no-op default.
func NewExecutor(
	primaryNode *domain.NodeDescriptor,
	conv *Conventions,
	cache TopologyCache,
	fetchTopology TopologyFetchFunc,
	logger Logger,
	metrics Metrics,
	clock Clock,
) *Executor {
	if conv == nil {
		conv = NewConventions()
	}
	if cache == nil {
		cache = NewInMemoryTopologyCache()
	}
	if logger == nil {
		logger = NewNoopLogger()
	}
	if metrics == nil {
		metrics = NewNoopMetrics()
	}
	if clock == nil {
		clock = NewSystemClock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	leader := NewLeaderCell()
	counters := NewFailureCounters()
	refresher := NewTopologyRefresher(ctx, primaryNode.URL, conv, leader, counters, cache, logger, metrics, clock)

	return &Executor{
		instanceCtx:   ctx,
		cancel:        cancel,
		primaryNode:   primaryNode,
		conv:          conv,
		router:        NewRouter(),
		leader:        leader,
		counters:      counters,
		refresher:     refresher,
		fetchTopology: fetchTopology,
		logger:        logger,
		metrics:       metrics,
		clock:         clock,
	}
}

// Close cooperatively cancels any in-flight or future background refresh.
// It does not affect in-flight Execute calls, which run against the
// caller's own context.
func (e *Executor) Close() {
	e.refresher.Close()
	e.cancel()
}

// Leader returns the currently known leader, or nil.
func (e *Executor) Leader() *domain.NodeDescriptor { return e.leader.Get() }

// Nodes returns the current NodeList snapshot.
func (e *Executor) Nodes() domain.NodeList { return e.refresher.Nodes() }

// Conventions returns the instance's mutable dispatch policy.
func (e *Executor) Conventions() *Conventions { return e.conv }

// FailureCount returns the consecutive-failure count tracked for url, for
// callers (e.g. a status display) that want to surface dispatch health
// without reaching into the router's internals.
func (e *Executor) FailureCount(url string) int { return e.counters.Get(url) }

// ForceReadFromMaster scopes dispatch to always target the leader until the
// returned release func is called.
func (e *Executor) ForceReadFromMaster() func() { return e.router.ForceReadFromMaster() }

// Execute dispatches operation via method, handling leader discovery,
// routing, retries, and failover per the configured FailoverBehavior.
func (e *Executor) Execute(ctx context.Context, method Method, operation OperationFunc) (any, error) {
	return e.execute(ctx, method, operation, DefaultRetries, false)
}

func (e *Executor) execute(ctx context.Context, method Method, operation OperationFunc, retries int, failoverHeader bool) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewClusterError(domain.KindCancelled, "context canceled").WithCause(err)
	}

	behavior := e.conv.Snapshot().FailoverBehavior
	node := e.leader.Get()

	if node == nil {
		e.refresher.RequestRefresh(e.primaryNode, e.fetchTopology)

		known := e.leader.AwaitLeader(ctx, e.conv.Snapshot().WaitForLeaderTimeout)
		if err := ctx.Err(); err != nil {
			return nil, domain.NewClusterError(domain.KindCancelled, "context canceled").WithCause(err)
		}
		if !known && !behavior.Tolerant() {
			return nil, domain.NewClusterError(domain.KindNoStableLeader, "timed out waiting for a stable leader")
		}
		node = e.leader.Get()
	}

	nodes := e.refresher.Nodes()
	selected, needsFailover, selectErr := e.router.Select(behavior, method, node, nodes, e.counters)
	if selectErr != nil {
		return nil, selectErr
	}
	if needsFailover {
		return e.failoverWalk(ctx, nodes, node, operation)
	}

	dispatchTarget := selected
	if failoverHeader {
		dispatchTarget = selected.WithFailoverHeader(true)
	}

	result, callErr := e.tryCall(ctx, dispatchTarget, operation, false)
	if callErr != nil {
		return nil, callErr
	}
	if result.success {
		return result.result, nil
	}

	if !e.leader.CompareAndClear(selected) {
		// Leader rotated concurrently; this is not a real failure against a
		// stable leader, so the retry budget is untouched.
		return e.execute(ctx, method, operation, retries, failoverHeader)
	}

	e.counters.Increment(selected.URL)
	e.metrics.ObserveRetry()

	nextFailoverHeader := failoverHeader ||
		behavior == domain.ReadFromAllWriteToLeaderWithFailovers ||
		behavior == domain.ReadFromLeaderWriteToLeaderWithFailovers

	retries--
	if retries <= 0 {
		return nil, domain.NewClusterError(domain.KindClusterUnreachable, "cluster is not reachable: out of retries").WithCause(result.err)
	}
	return e.execute(ctx, method, operation, retries, nextFailoverHeader)
}

// failoverWalk implements §4.5's failover walk: try every currently
// eligible node in order, marking each with the per-descriptor failover
// header hint, until one succeeds or all are exhausted.
func (e *Executor) failoverWalk(ctx context.Context, nodes domain.NodeList, leader *domain.NodeDescriptor, operation OperationFunc) (any, error) {
	candidates := FailoverCandidates(nodes, leader, "")
	eligible := make(domain.NodeList, 0, len(candidates))
	for _, n := range candidates {
		if e.counters.Eligible(n.URL) {
			eligible = append(eligible, n)
		}
	}
	if len(eligible) == 0 {
		return nil, domain.NewClusterError(domain.KindClusterUnreachable, "cluster is not reachable")
	}

	for i, n := range eligible {
		if err := ctx.Err(); err != nil {
			return nil, domain.NewClusterError(domain.KindCancelled, "context canceled").WithCause(err)
		}

		hinted := n.WithFailoverHeader(true)
		avoidThrowing := i < len(eligible)-1

		result, callErr := e.tryCall(ctx, hinted, operation, avoidThrowing)
		if callErr != nil {
			return nil, callErr
		}
		if result.success {
			e.metrics.ObserveFailover()
			return result.result, nil
		}
		e.counters.Increment(n.URL)
	}
	return nil, domain.NewClusterError(domain.KindClusterUnreachable, "cluster is not reachable")
}

// callResult is TryCall's structured outcome for retryable failures; it is
// never returned alongside a non-nil error.
type callResult struct {
	success    bool
	result     any
	err        error
	wasTimeout bool
}

// tryCall runs operation against node and classifies any failure per
// §4.6.1. When the failure is not retryable and avoidThrowing is false, the
// classified error is returned directly (Go's equivalent of "propagate the
// original error"); otherwise a structured, non-throwing result is
// returned so the caller can decide whether to retry or fail over.
func (e *Executor) tryCall(ctx context.Context, node *domain.NodeDescriptor, operation OperationFunc, avoidThrowing bool) (callResult, error) {
	value, opErr := operation(ctx, node)
	if opErr == nil {
		e.counters.Reset(node.URL)
		return callResult{success: true, result: value}, nil
	}

	var te *domain.TransportError
	if errors.As(opErr, &te) {
		switch te.Kind {
		case domain.FailureServerDown:
			return callResult{wasTimeout: te.Timeout, err: opErr}, nil
		case domain.FailureExpectationFailed:
			return callResult{err: opErr}, nil
		case domain.FailureRedirect:
			if !te.RedirectHeaderOK {
				bad := domain.NewClusterError(domain.KindBadRedirect, "redirect without a valid leader-redirect header").WithCause(opErr)
				return callResult{}, bad
			}
			target := e.refresher.Nodes().Find(te.Location)
			if target == nil {
				target = node.Clone(te.Location)
			}
			e.leader.SetKnownLeader(target)
			e.counters.Reset(node.URL)
			return e.tryCall(ctx, target, operation, avoidThrowing)
		default:
			wrapped := domain.NewClusterError(domain.KindOperationError, "operation failed").WithCause(opErr)
			if avoidThrowing {
				return callResult{err: wrapped}, nil
			}
			return callResult{}, wrapped
		}
	}

	wrapped := domain.NewClusterError(domain.KindOperationError, "operation failed").WithCause(opErr)
	if avoidThrowing {
		return callResult{err: wrapped}, nil
	}
	return callResult{}, wrapped
}
