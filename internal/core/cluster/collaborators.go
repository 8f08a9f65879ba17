package cluster

import (
	"context"
	"time"

	"github.com/cohortdb/cohortdb-go/internal/core/domain"
)

// Method distinguishes read dispatch (subject to striping) from write
// dispatch (always routed to the leader) in the router.
type Method string

// MethodGet is the only striping-eligible method; every other value is
// treated as a write.
const MethodGet Method = "GET"

// OperationFunc performs one request against a concrete node. Transport
// collaborators (internal/infra/httptransport) return a *domain.TransportError
// on failure so the executor can classify it without knowing about HTTP.
type OperationFunc func(ctx context.Context, node *domain.NodeDescriptor) (any, error)

// TopologyFetchFunc asks a single node for its view of the cluster topology.
type TopologyFetchFunc func(ctx context.Context, node *domain.NodeDescriptor) (*domain.TopologyDocument, error)

// TopologyCache is the durable best-effort cache a refresher bootstraps from
// and writes back to on every successful refresh. Implementations must not
// block the caller on persistence errors; Save failures are logged and
// swallowed by the refresher.
type TopologyCache interface {
	Load(serverHash string) (domain.NodeList, error)
	Save(serverHash string, nodes domain.NodeList) error
}

// Logger is the narrow structured-logging surface the cluster package
// depends on. internal/telemetry/logger.Logger satisfies this through the
// adapter in internal/cli/command/logadapter.go.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Metrics is the narrow metrics surface the cluster package depends on.
// internal/telemetry/metric.Registry satisfies this.
type Metrics interface {
	ObserveRefresh(outcome string)
	ObserveRetry()
	ObserveFailover()
	SetLeaderKnown(known bool)
}

// Clock abstracts time so refresh back-off and await-leader timeouts are
// deterministic in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

// NewSystemClock returns the real wall-clock Clock.
func NewSystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time       { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

type noopLogger struct{}

// NewNoopLogger returns a Logger that discards everything, for tests and for
// callers that don't want cluster-internal logging.
func NewNoopLogger() Logger { return noopLogger{} }

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (n noopLogger) With(...any) Logger { return n }

type noopMetrics struct{}

// NewNoopMetrics returns a Metrics that discards everything.
func NewNoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) ObserveRefresh(string)    {}
func (noopMetrics) ObserveRetry()            {}
func (noopMetrics) ObserveFailover()         {}
func (noopMetrics) SetLeaderKnown(bool)      {}

// InMemoryTopologyCache is a TopologyCache backed by a plain map, used in
// tests and as the zero-value fallback when no durable cache is configured.
type InMemoryTopologyCache struct {
	data map[string]domain.NodeList
}

// NewInMemoryTopologyCache returns an empty in-memory cache.
func NewInMemoryTopologyCache() *InMemoryTopologyCache {
	return &InMemoryTopologyCache{data: make(map[string]domain.NodeList)}
}

func (c *InMemoryTopologyCache) Load(serverHash string) (domain.NodeList, error) {
	nodes, ok := c.data[serverHash]
	if !ok {
		return nil, nil
	}
	return nodes, nil
}

func (c *InMemoryTopologyCache) Save(serverHash string, nodes domain.NodeList) error {
	c.data[serverHash] = nodes
	return nil
}
