package liveness

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeRegistry tracks one session's connected state.
type fakeRegistry struct {
	mu        sync.Mutex
	connected map[string]bool
	pingErr   error
	pings     int
}

func newFakeRegistry(ids ...string) *fakeRegistry {
	connected := make(map[string]bool, len(ids))
	for _, id := range ids {
		connected[id] = true
	}
	return &fakeRegistry{connected: connected}
}

func (f *fakeRegistry) IsConnected(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected[id]
}

func (f *fakeRegistry) Ping(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return f.pingErr
}

func (f *fakeRegistry) Disconnect(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.connected, id)
}

func (f *fakeRegistry) pingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestMonitorPingsOnInterval(t *testing.T) {
	reg := newFakeRegistry("s1")
	m := New(reg, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx, "s1")

	waitFor(t, func() bool { return reg.pingCount() >= 3 })
	if !reg.IsConnected("s1") {
		t.Fatal("healthy session was disconnected")
	}
}

func TestMonitorDisconnectsOnPingFailure(t *testing.T) {
	reg := newFakeRegistry("s1")
	reg.pingErr = errors.New("write: broken pipe")
	m := New(reg, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx, "s1")

	waitFor(t, func() bool { return !reg.IsConnected("s1") })

	// A single failure stops the heartbeat for good.
	count := reg.pingCount()
	time.Sleep(50 * time.Millisecond)
	if reg.pingCount() != count {
		t.Fatal("monitor kept pinging after failure")
	}
}

func TestMonitorStopsWhenContextCancelled(t *testing.T) {
	reg := newFakeRegistry("s1")
	m := New(reg, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx, "s1")
	waitFor(t, func() bool { return reg.pingCount() >= 1 })
	cancel()

	time.Sleep(30 * time.Millisecond)
	count := reg.pingCount()
	time.Sleep(50 * time.Millisecond)
	if reg.pingCount() != count {
		t.Fatal("monitor kept pinging after context cancellation")
	}
	if !reg.IsConnected("s1") {
		t.Fatal("cancellation should not disconnect the session itself")
	}
}

func TestMonitorStopsWhenSessionGone(t *testing.T) {
	reg := newFakeRegistry("s1")
	m := New(reg, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx, "s1")
	waitFor(t, func() bool { return reg.pingCount() >= 1 })

	reg.Disconnect("s1")
	time.Sleep(30 * time.Millisecond)
	count := reg.pingCount()
	time.Sleep(50 * time.Millisecond)
	if reg.pingCount() != count {
		t.Fatal("monitor kept pinging an unregistered session")
	}
}

func TestDefaultInterval(t *testing.T) {
	m := New(newFakeRegistry(), 0)
	if m.Interval() != 30*time.Second {
		t.Fatalf("Interval = %v, want 30s default", m.Interval())
	}
}
