package httptransport

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/cohortdb/cohortdb-go/internal/core/cluster"
	"github.com/cohortdb/cohortdb-go/internal/core/domain"
	"github.com/cohortdb/cohortdb-go/pkg/cmap"
)

const (
	headerClusterAware     = "Raven-Cluster-Aware"
	headerReadBehavior     = "Raven-Cluster-Read-Behavior"
	headerFailoverBehavior = "Raven-Cluster-Failover-Behavior"
	headerLeaderRedirect   = "Raven-Leader-Redirect"
	headerRequestID        = "X-Request-Id"

	topologyPath = "/cluster/topology"
)

// newRequestID generates a correlation ID for one outgoing request. A fresh
// entropy source per call keeps this safe under the concurrent dispatch
// Client.do sees from Executor's failover walk.
func newRequestID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return ""
	}
	return id.String()
}

// Credentials is the API-key-style credential pair a NodeDescriptor's
// Credentials field may hold. Client treats any other (or nil) value as
// "no authentication".
type Credentials struct {
	KeyID string
	Key   string
}

// Config configures a Client.
type Config struct {
	// RequestTimeout bounds each individual HTTP round-trip. Defaults to
	// 30 seconds.
	RequestTimeout time.Duration

	// RateLimit caps outbound requests per node URL, so a flapping node
	// being retried repeatedly cannot be hammered. Defaults to 50 req/s.
	RateLimit rate.Limit

	// RateBurst is the token bucket burst size. Defaults to 10.
	RateBurst int

	// UserAgent is sent on every request.
	UserAgent string
}

func (c Config) withDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 50
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 10
	}
	if c.UserAgent == "" {
		c.UserAgent = "cohortdb-go/1.0"
	}
	return c
}

// Client implements the cluster package's transport collaborators
// (cluster.OperationFunc, cluster.TopologyFetchFunc) over net/http.
type Client struct {
	httpClient *http.Client
	cfg        Config
	limiters   *cmap.Map[string, *rate.Limiter]
}

// NewClient builds a Client.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:        cfg,
		limiters:   cmap.New[string, *rate.Limiter](),
	}
}

// Request describes one outgoing request, independent of which node it
// ends up dispatched to.
type Request struct {
	Method cluster.Method
	Path   string
	Body   io.Reader
}

// Operation builds a cluster.OperationFunc for req. behavior is the
// FailoverBehavior in effect at dispatch time, used only to decide
// whether the Raven-Cluster-Read-Behavior header is set; the
// per-descriptor failover header hint travels on the node itself.
func (c *Client) Operation(req Request, behavior domain.FailoverBehavior) cluster.OperationFunc {
	return func(ctx context.Context, node *domain.NodeDescriptor) (any, error) {
		return c.do(ctx, node, req, behavior)
	}
}

// FetchTopology implements cluster.TopologyFetchFunc.
func (c *Client) FetchTopology(ctx context.Context, node *domain.NodeDescriptor) (*domain.TopologyDocument, error) {
	result, err := c.do(ctx, node, Request{Method: cluster.MethodGet, Path: topologyPath}, domain.FailoverBehaviorDefault)
	if err != nil {
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, &domain.TransportError{Kind: domain.FailureOther, Cause: fmt.Errorf("httptransport: unexpected result type %T", result)}
	}

	var wire topologyWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &domain.TransportError{Kind: domain.FailureOther, Cause: fmt.Errorf("httptransport: decode topology: %w", err)}
	}
	return wire.toDomain(), nil
}

func (c *Client) do(ctx context.Context, node *domain.NodeDescriptor, req Request, behavior domain.FailoverBehavior) (any, error) {
	if err := c.limiterFor(node.URL).Wait(ctx); err != nil {
		return nil, &domain.TransportError{Kind: domain.FailureServerDown, Timeout: true, Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), strings.TrimRight(node.URL, "/")+req.Path, req.Body)
	if err != nil {
		return nil, &domain.TransportError{Kind: domain.FailureOther, Cause: err}
	}
	c.setHeaders(httpReq, node, behavior)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.TransportError{Kind: domain.FailureServerDown, Timeout: isTimeout(err), Cause: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusFound:
		return nil, &domain.TransportError{
			Kind:             domain.FailureRedirect,
			StatusCode:       resp.StatusCode,
			Location:         resp.Header.Get("Location"),
			RedirectHeaderOK: resp.Header.Get(headerLeaderRedirect) == "true",
		}
	case http.StatusExpectationFailed:
		return nil, &domain.TransportError{Kind: domain.FailureExpectationFailed, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Kind: domain.FailureOther, StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &domain.TransportError{
			Kind:       domain.FailureOther,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("httptransport: unexpected status %d", resp.StatusCode),
		}
	}

	return body, nil
}

func (c *Client) setHeaders(req *http.Request, node *domain.NodeDescriptor, behavior domain.FailoverBehavior) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set(headerClusterAware, "true")
	if id := newRequestID(); id != "" {
		req.Header.Set(headerRequestID, id)
	}

	if behavior == domain.ReadFromAllWriteToLeader {
		req.Header.Set(headerReadBehavior, "All")
	}
	if node.ClusterInfo != nil && node.ClusterInfo.WithClusterFailoverHeader {
		req.Header.Set(headerFailoverBehavior, "true")
	}

	if creds, ok := node.Credentials.(Credentials); ok {
		req.Header.Set("X-API-Key-ID", creds.KeyID)
		req.Header.Set("X-API-Key", creds.Key)
	}
}

func (c *Client) limiterFor(url string) *rate.Limiter {
	limiter, _ := c.limiters.GetOrSet(url, rate.NewLimiter(c.cfg.RateLimit, c.cfg.RateBurst))
	return limiter
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
