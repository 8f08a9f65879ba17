package httptransport

import "github.com/cohortdb/cohortdb-go/internal/core/domain"

// topologyWire is the JSON shape a node returns from its topology
// endpoint. It exists so domain.TopologyDocument stays free of
// serialization tags.
type topologyWire struct {
	Term                int64                   `json:"term"`
	ClusterCommitIndex  int64                   `json:"clusterCommitIndex"`
	ClusterInfo         clusterInfoWire         `json:"clusterInfo"`
	Destinations        []destinationWire       `json:"destinations"`
	ClientConfiguration *clientConfigurationWire `json:"clientConfiguration,omitempty"`
}

type clusterInfoWire struct {
	IsLeader bool `json:"isLeader"`
}

type destinationWire struct {
	URL              string          `json:"url"`
	ClientVisibleURL string          `json:"clientVisibleUrl,omitempty"`
	Database         string          `json:"database,omitempty"`
	CanBeFailover    bool            `json:"canBeFailover"`
	ClusterInfo      clusterInfoWire `json:"clusterInfo"`
}

type clientConfigurationWire struct {
	FailoverBehavior            string `json:"failoverBehavior,omitempty"`
	WaitForLeaderTimeoutSeconds int    `json:"waitForLeaderTimeoutSeconds,omitempty"`
}

func (w *topologyWire) toDomain() *domain.TopologyDocument {
	doc := &domain.TopologyDocument{
		Term:               w.Term,
		ClusterCommitIndex: w.ClusterCommitIndex,
		ClusterInfo:        domain.ClusterInfo{IsLeader: w.ClusterInfo.IsLeader},
	}
	for _, d := range w.Destinations {
		doc.Destinations = append(doc.Destinations, domain.ReplicationDestination{
			URL:              d.URL,
			ClientVisibleURL: d.ClientVisibleURL,
			Database:         d.Database,
			CanBeFailover:    d.CanBeFailover,
			ClusterInfo:      &domain.ClusterInfo{IsLeader: d.ClusterInfo.IsLeader},
		})
	}
	if w.ClientConfiguration != nil {
		doc.ClientConfiguration = &domain.ClientConfiguration{
			FailoverBehavior:            domain.FailoverBehavior(w.ClientConfiguration.FailoverBehavior),
			WaitForLeaderTimeoutSeconds: w.ClientConfiguration.WaitForLeaderTimeoutSeconds,
		}
	}
	return doc
}
