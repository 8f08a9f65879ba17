package domain

import "testing"

func TestTopologyDocumentFresher(t *testing.T) {
	x := &TopologyDocument{Term: 3, ClusterCommitIndex: 10, ClusterInfo: ClusterInfo{IsLeader: false}}
	y := &TopologyDocument{Term: 3, ClusterCommitIndex: 10, ClusterInfo: ClusterInfo{IsLeader: true}}
	z := &TopologyDocument{Term: 4, ClusterCommitIndex: 1, ClusterInfo: ClusterInfo{IsLeader: false}}

	if !y.Fresher(x) {
		t.Fatalf("y should be fresher than x: same term/commit, y is leader")
	}
	if !z.Fresher(y) {
		t.Fatalf("z should be fresher than y: higher term wins regardless of commit/leader")
	}
	if !x.Fresher(nil) {
		t.Fatalf("anything is fresher than nothing")
	}
}

func TestReplicationDestinationEffectiveURL(t *testing.T) {
	d := ReplicationDestination{URL: "http://internal", ClientVisibleURL: "http://public"}
	if d.EffectiveURL() != "http://public" {
		t.Fatalf("expected client-visible url to take priority")
	}
	d2 := ReplicationDestination{URL: "http://internal"}
	if d2.EffectiveURL() != "http://internal" {
		t.Fatalf("expected fallback to url")
	}
}

func TestClientConfigurationIsZero(t *testing.T) {
	var nilCfg *ClientConfiguration
	if !nilCfg.IsZero() {
		t.Fatalf("nil config should be zero")
	}
	if (&ClientConfiguration{}).IsZero() == false {
		t.Fatalf("empty config should be zero")
	}
	if (&ClientConfiguration{FailoverBehavior: "x"}).IsZero() {
		t.Fatalf("non-empty config should not be zero")
	}
}
