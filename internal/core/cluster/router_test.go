package cluster

import (
	"testing"

	"github.com/cohortdb/cohortdb-go/internal/core/domain"
)

func nodes(urls ...string) domain.NodeList {
	out := make(domain.NodeList, len(urls))
	for i, u := range urls {
		out[i] = &domain.NodeDescriptor{URL: u}
	}
	return out
}

func TestRouterStrictWritesAndReadsGoToLeader(t *testing.T) {
	r := NewRouter()
	leader := &domain.NodeDescriptor{URL: "http://leader"}
	node, needsFailover, err := r.Select(domain.FailoverBehaviorDefault, MethodGet, leader, nodes("http://a", "http://b"), NewFailureCounters())
	if err != nil || needsFailover {
		t.Fatalf("unexpected failover/err: %v %v", needsFailover, err)
	}
	if !node.Equal(leader) {
		t.Fatalf("expected strict policy to always pick the leader")
	}
}

func TestRouterStrictNilLeaderIsFatal(t *testing.T) {
	r := NewRouter()
	_, needsFailover, err := r.Select(domain.FailoverBehaviorDefault, MethodGet, nil, nodes("http://a"), NewFailureCounters())
	if needsFailover {
		t.Fatalf("strict policy must not tolerate nil leader")
	}
	if !domain.IsKind(err, domain.KindClusterUnreachable) {
		t.Fatalf("expected cluster unreachable, got %v", err)
	}
}

func TestRouterReadFromAllStripesGets(t *testing.T) {
	r := NewRouter()
	leader := &domain.NodeDescriptor{URL: "http://leader"}
	ns := nodes("http://a", "http://b")
	counters := NewFailureCounters()

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		node, _, err := r.Select(domain.ReadFromAllWriteToLeader, MethodGet, leader, ns, counters)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen[node.URL] = true
	}
	if !seen["http://a"] || !seen["http://b"] {
		t.Fatalf("expected striping to visit both nodes, saw %v", seen)
	}
}

func TestRouterReadFromAllWritesGoToLeader(t *testing.T) {
	r := NewRouter()
	leader := &domain.NodeDescriptor{URL: "http://leader"}
	node, _, err := r.Select(domain.ReadFromAllWriteToLeader, "POST", leader, nodes("http://a"), NewFailureCounters())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !node.Equal(leader) {
		t.Fatalf("expected write to target the leader")
	}
}

func TestRouterIneligibleNodeFallsBackToLeader(t *testing.T) {
	r := NewRouter()
	leader := &domain.NodeDescriptor{URL: "http://leader"}
	ns := nodes("http://a")
	counters := NewFailureCounters()
	counters.Increment("http://a")
	counters.Increment("http://a")

	node, _, err := r.Select(domain.ReadFromAllWriteToLeader, MethodGet, leader, ns, counters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !node.Equal(leader) {
		t.Fatalf("expected fallback to leader for ineligible candidate")
	}
}

func TestRouterForceReadFromMasterScopesToLeader(t *testing.T) {
	r := NewRouter()
	leader := &domain.NodeDescriptor{URL: "http://leader"}
	ns := nodes("http://a", "http://b")
	counters := NewFailureCounters()

	release := r.ForceReadFromMaster()
	for i := 0; i < 3; i++ {
		node, _, err := r.Select(domain.ReadFromAllWriteToLeader, MethodGet, leader, ns, counters)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !node.Equal(leader) {
			t.Fatalf("call %d: expected forced read to target leader, got %v", i, node)
		}
	}
	release()

	// Striping resumes after release.
	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		node, _, _ := r.Select(domain.ReadFromAllWriteToLeader, MethodGet, leader, ns, counters)
		seen[node.URL] = true
	}
	if !seen["http://a"] || !seen["http://b"] {
		t.Fatalf("expected striping restored after release, saw %v", seen)
	}
}

func TestRouterTolerantPoliciesRequestFailoverOnNilLeader(t *testing.T) {
	r := NewRouter()
	_, needsFailover, err := r.Select(domain.ReadFromAllWriteToLeaderWithFailovers, MethodGet, nil, nil, NewFailureCounters())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !needsFailover {
		t.Fatalf("expected tolerant policy to request failover walk")
	}

	_, needsFailover2, err2 := r.Select(domain.ReadFromLeaderWriteToLeaderWithFailovers, "POST", nil, nil, NewFailureCounters())
	if err2 != nil {
		t.Fatalf("unexpected error: %v", err2)
	}
	if !needsFailover2 {
		t.Fatalf("expected tolerant policy to request failover walk")
	}
}

func TestFailoverCandidatesOrderAndDedup(t *testing.T) {
	leader := &domain.NodeDescriptor{URL: "http://leader"}
	ns := nodes("http://leader", "http://a", "http://b")
	candidates := FailoverCandidates(ns, leader, "http://a")

	if len(candidates) != 2 {
		t.Fatalf("expected leader + b, got %v", candidates)
	}
	if candidates[0].URL != "http://leader" {
		t.Fatalf("expected leader first, got %v", candidates)
	}
}
