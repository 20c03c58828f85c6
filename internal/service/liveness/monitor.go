package liveness

import (
	"context"
	"log"
	"time"
)

// Registry is the slice of session-registry behavior the monitor needs.
type Registry interface {
	IsConnected(sessionID string) bool
	Ping(sessionID string) error
	Disconnect(sessionID string)
}

// Monitor proves session transports are still alive by pinging them on a
// fixed interval. One monitor instance serves all sessions; each Start call
// launches one goroutine owned by that session's lifecycle.
type Monitor struct {
	reg      Registry
	interval time.Duration
}

// New builds a Monitor pinging every interval (default 30s).
func New(reg Registry, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{reg: reg, interval: interval}
}

// Start launches the heartbeat goroutine for a session. The goroutine exits
// when ctx is cancelled (the registry cancels it on disconnect), when the
// session is no longer registered, or when a ping write fails — in which case
// it disconnects the session itself. A stopped monitor is never resurrected;
// a new session requires a new Start call.
func (m *Monitor) Start(ctx context.Context, sessionID string) {
	go m.run(ctx, sessionID)
}

func (m *Monitor) run(ctx context.Context, sessionID string) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.reg.IsConnected(sessionID) {
				return
			}
			if err := m.reg.Ping(sessionID); err != nil {
				log.Printf("[liveness] heartbeat failed for session %s: %v", sessionID, err)
				m.reg.Disconnect(sessionID)
				return
			}
		}
	}
}

// Interval exposes the configured heartbeat interval.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}
