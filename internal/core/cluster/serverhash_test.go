package cluster

import "testing"

func TestServerHashIsDeterministic(t *testing.T) {
	a := ServerHash("http://node-a:8080")
	b := ServerHash("http://node-a:8080")
	if a != b {
		t.Fatalf("expected deterministic hash, got %q vs %q", a, b)
	}
}

func TestServerHashDiffersByURL(t *testing.T) {
	a := ServerHash("http://node-a:8080")
	b := ServerHash("http://node-b:8080")
	if a == b {
		t.Fatalf("expected different urls to hash differently")
	}
}
