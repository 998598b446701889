package syncx_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	syncx "github.com/quizdesk/quizdesk/internal/sync"
)

func TestNotifierEmitsOnOfflineToOnlineEdge(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var online atomic.Bool
	n := &syncx.Notifier{
		Probe:    func(context.Context) bool { return online.Load() },
		Interval: 5 * time.Millisecond,
	}
	triggers := n.Watch(ctx)

	// still offline: no trigger
	select {
	case <-triggers:
		t.Fatalf("trigger while offline")
	case <-time.After(30 * time.Millisecond):
	}

	online.Store(true)
	select {
	case <-triggers:
	case <-time.After(time.Second):
		t.Fatalf("no trigger after going online")
	}

	// staying online: no further trigger
	select {
	case <-triggers:
		t.Fatalf("trigger without a new offline→online edge")
	case <-time.After(30 * time.Millisecond):
	}

	// a second edge fires again
	online.Store(false)
	time.Sleep(20 * time.Millisecond)
	online.Store(true)
	select {
	case <-triggers:
	case <-time.After(time.Second):
		t.Fatalf("no trigger after second online edge")
	}
}

func TestNotifierClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	n := &syncx.Notifier{
		Probe:    func(context.Context) bool { return false },
		Interval: 5 * time.Millisecond,
	}
	triggers := n.Watch(ctx)
	cancel()
	select {
	case _, ok := <-triggers:
		if ok {
			t.Fatalf("unexpected trigger")
		}
	case <-time.After(time.Second):
		t.Fatalf("channel not closed after cancel")
	}
}
