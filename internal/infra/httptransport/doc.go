// Package httptransport implements the cluster package's transport
// collaborators over net/http.
//
// This package owns the only place in the module that knows about HTTP
// status codes, headers, and wire formats:
//
//   - client.go: Client, providing FetchTopology (cluster.TopologyFetchFunc)
//     and Operation (building a cluster.OperationFunc per request)
//   - wire.go: the private JSON shape of a topology-document response
//
// Every response is classified into a *domain.TransportError before it
// reaches the cluster package, which never imports net/http.
//
// Every outgoing request also carries a fresh ULID in X-Request-Id, so a
// node's access log can be correlated back to a specific client dispatch.
package httptransport
