// Package heartbeat lets an external process supervisor keep the gateway
// alive. The supervisor polls the registered endpoint; if no beat arrives
// within the timeout, the monitor fires its shutdown callback.
package heartbeat

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// defaultCheckInterval is how often the watchdog re-evaluates the last beat.
const defaultCheckInterval = 30 * time.Second

// Status is the response body for a heartbeat poll.
type Status struct {
	Timestamp int64  `json:"timestamp"`
	Status    string `json:"status"`
	Uptime    int64  `json:"uptime"`
}

// Monitor tracks the last received beat and shuts the process down when the
// supervisor goes quiet. The gateway only exposes the endpoint; the timing
// policy lives here.
type Monitor struct {
	mu       sync.RWMutex
	lastBeat time.Time
	started  time.Time

	timeout       time.Duration
	checkInterval time.Duration
	onExpire      func()
	stop          chan struct{}
	stopOnce      sync.Once
}

// NewMonitor creates a monitor. onExpire runs once if no beat arrives within
// timeout; it is never called before Start.
func NewMonitor(timeout time.Duration, onExpire func()) *Monitor {
	now := time.Now()
	return &Monitor{
		lastBeat:      now,
		started:       now,
		timeout:       timeout,
		checkInterval: defaultCheckInterval,
		onExpire:      onExpire,
		stop:          make(chan struct{}),
	}
}

// Start launches the watchdog goroutine.
func (m *Monitor) Start() {
	go func() {
		ticker := time.NewTicker(m.checkInterval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.mu.RLock()
				lastSeen := m.lastBeat
				m.mu.RUnlock()
				if time.Since(lastSeen) > m.timeout {
					slog.Warn("no heartbeat received, triggering shutdown", "timeout", m.timeout)
					m.onExpire()
					return
				}
			}
		}
	}()
	slog.Info("heartbeat monitor started", "timeout", m.timeout)
}

// Stop halts the watchdog. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Handler records a beat and reports the monitor status. Register it on the
// gateway's heartbeat route.
func (m *Monitor) Handler(w http.ResponseWriter, _ *http.Request) {
	now := time.Now()
	m.mu.Lock()
	m.lastBeat = now
	m.mu.Unlock()

	status := Status{
		Timestamp: now.Unix(),
		Status:    "ok",
		Uptime:    now.Sub(m.started).Milliseconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status) //nolint:errcheck
}

// LastBeat returns the time of the most recent beat.
func (m *Monitor) LastBeat() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastBeat
}
