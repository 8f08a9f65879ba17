package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/cohortdb/cohortdb-go/internal/core/domain"
)

func TestLeaderCellSetAndGet(t *testing.T) {
	c := NewLeaderCell()
	if c.Get() != nil {
		t.Fatalf("expected no leader initially")
	}
	n := &domain.NodeDescriptor{URL: "http://a"}
	c.SetKnownLeader(n)
	if got := c.Get(); !got.Equal(n) {
		t.Fatalf("expected leader to be set")
	}
}

func TestLeaderCellAwaitLeaderUnblocksOnSet(t *testing.T) {
	c := NewLeaderCell()
	n := &domain.NodeDescriptor{URL: "http://a"}

	done := make(chan bool, 1)
	go func() {
		done <- c.AwaitLeader(context.Background(), time.Second)
	}()

	time.Sleep(10 * time.Millisecond)
	c.SetKnownLeader(n)

	select {
	case ok := <-done:
		if !ok {
			t.Fatalf("expected AwaitLeader to report success")
		}
	case <-time.After(time.Second):
		t.Fatalf("AwaitLeader did not unblock")
	}
}

func TestLeaderCellAwaitLeaderTimesOut(t *testing.T) {
	c := NewLeaderCell()
	if c.AwaitLeader(context.Background(), 10*time.Millisecond) {
		t.Fatalf("expected timeout with no leader set")
	}
}

func TestLeaderCellAwaitLeaderRespectsCancellation(t *testing.T) {
	c := NewLeaderCell()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if c.AwaitLeader(ctx, time.Second) {
		t.Fatalf("expected cancellation to short-circuit the wait")
	}
}

func TestLeaderCellCompareAndClear(t *testing.T) {
	c := NewLeaderCell()
	a := &domain.NodeDescriptor{URL: "http://a"}
	b := &domain.NodeDescriptor{URL: "http://b"}

	c.SetKnownLeader(a)
	if c.CompareAndClear(b) {
		t.Fatalf("expected mismatch to fail")
	}
	if !c.CompareAndClear(a) {
		t.Fatalf("expected matching clear to succeed")
	}
	if c.Get() != nil {
		t.Fatalf("expected leader cleared")
	}
	if !c.CompareAndClear(a) {
		t.Fatalf("expected idempotent clear on already-nil cell")
	}
}

func TestLeaderCellSetIfNil(t *testing.T) {
	c := NewLeaderCell()
	a := &domain.NodeDescriptor{URL: "http://a"}
	b := &domain.NodeDescriptor{URL: "http://b"}

	if !c.SetIfNil(a, true) {
		t.Fatalf("expected first SetIfNil to succeed")
	}
	if c.SetIfNil(b, true) {
		t.Fatalf("expected second SetIfNil to fail, leader already set")
	}
	if !c.Get().Equal(a) {
		t.Fatalf("expected leader to remain a")
	}
}

func TestLeaderCellResetLatchAfterClear(t *testing.T) {
	c := NewLeaderCell()
	a := &domain.NodeDescriptor{URL: "http://a"}
	c.SetKnownLeader(a)
	c.ForceClear()

	if c.AwaitLeader(context.Background(), 10*time.Millisecond) {
		t.Fatalf("expected latch to be reset after clear")
	}
}
