package extension

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// State is the monitor's tri-state view of a tenant's capture agent.
type State int

const (
	// StateDisconnected means probes are failing or no agent is linked.
	StateDisconnected State = iota
	// StateConnected means the last probe succeeded.
	StateConnected
	// StateError means a probe failed in an unexpected way.
	StateError
)

// String implements fmt.Stringer for log fields.
func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "disconnected"
	}
}

// Link is the slice of LinkManager the monitor needs.
type Link interface {
	Probe(ctx context.Context, tenantID string) error
	SendReset(ctx context.Context, tenantID string) error
}

// Resetter is the slice of the recording coordinator the monitor needs: the
// set of tenants with live recordings, and the forced-reset recovery path.
type Resetter interface {
	ActiveTenants() []string
	ForceReset(ctx context.Context, tenantID string)
}

// TransitionFunc is called on every state change, after any forced reset has
// completed. Subscribers cancel their timers here.
type TransitionFunc func(tenantID string, from, to State)

type tenantProbe struct {
	state    State
	failures int
	lastErr  error
}

// Monitor periodically probes capture-agent liveness for every tenant with a
// live recording. A transition away from connected forces a coordinator
// reset: a recording must never continue once its only source of actions is
// known to be gone. A single dropped probe is debounced and does not flap
// the state.
type Monitor struct {
	link             Link
	coord            Resetter
	interval         time.Duration
	failureThreshold int
	logger           *slog.Logger

	mu          sync.Mutex
	tenants     map[string]*tenantProbe
	subscribers []TransitionFunc
}

// NewMonitor creates a connection monitor. failureThreshold is the number of
// consecutive probe failures before the agent is declared disconnected.
func NewMonitor(link Link, coord Resetter, interval time.Duration, failureThreshold int, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &Monitor{
		link:             link,
		coord:            coord,
		interval:         interval,
		failureThreshold: failureThreshold,
		logger:           logger,
		tenants:          make(map[string]*tenantProbe),
	}
}

// Subscribe registers a transition callback. Must be called before Run.
func (m *Monitor) Subscribe(fn TransitionFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// StateFor returns the monitor's current view of a tenant and the last probe
// error, if any.
func (m *Monitor) StateFor(tenantID string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	probe, ok := m.tenants[tenantID]
	if !ok {
		return StateDisconnected, nil
	}
	return probe.state, probe.lastErr
}

// Run probes until the context is cancelled. Probe failures never terminate
// the loop.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("connection monitor started",
		"interval", m.interval, "failure_threshold", m.failureThreshold)

	for {
		select {
		case <-ticker.C:
			m.tick(ctx)
		case <-ctx.Done():
			m.logger.Info("connection monitor shutting down", "reason", ctx.Err())
			return
		}
	}
}

// Tick runs one probe round. Exposed for tests; Run calls it on the interval.
func (m *Monitor) Tick(ctx context.Context) {
	m.tick(ctx)
}

func (m *Monitor) tick(ctx context.Context) {
	active := m.coord.ActiveTenants()
	activeSet := make(map[string]bool, len(active))
	for _, tenantID := range active {
		activeSet[tenantID] = true
		m.probeTenant(ctx, tenantID)
	}

	// Drop tracking for tenants that no longer record; their next recording
	// starts from a clean disconnected slate.
	m.mu.Lock()
	for tenantID := range m.tenants {
		if !activeSet[tenantID] {
			delete(m.tenants, tenantID)
		}
	}
	m.mu.Unlock()
}

func (m *Monitor) probeTenant(ctx context.Context, tenantID string) {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	err := m.link.Probe(probeCtx, tenantID)
	cancel()

	m.mu.Lock()
	probe, ok := m.tenants[tenantID]
	if !ok {
		// First observation for this recording. Start from the probe result
		// rather than assuming connected.
		probe = &tenantProbe{state: StateDisconnected}
		m.tenants[tenantID] = probe
	}
	from := probe.state

	var to State
	switch {
	case err == nil:
		probe.failures = 0
		probe.lastErr = nil
		to = StateConnected
	case errors.Is(err, ErrNoAgent) || errors.Is(err, context.DeadlineExceeded):
		probe.failures++
		probe.lastErr = err
		if from == StateConnected && probe.failures < m.failureThreshold {
			// Debounce: one dropped probe does not end the recording.
			m.mu.Unlock()
			m.logger.Warn("capture agent probe failed",
				"tenant_id", tenantID, "failures", probe.failures, "error", err)
			return
		}
		to = StateDisconnected
	default:
		probe.failures++
		probe.lastErr = err
		to = StateError
	}

	if to == from {
		m.mu.Unlock()
		return
	}
	probe.state = to
	subscribers := make([]TransitionFunc, len(m.subscribers))
	copy(subscribers, m.subscribers)
	m.mu.Unlock()

	m.logger.Info("capture agent state transition",
		"tenant_id", tenantID, "from", from.String(), "to", to.String())

	if from == StateConnected && to != StateConnected {
		m.coord.ForceReset(ctx, tenantID)
		if err := m.link.SendReset(ctx, tenantID); err != nil {
			m.logger.Warn("failed to send reset to capture agent",
				"tenant_id", tenantID, "error", err)
		}
	}

	for _, fn := range subscribers {
		fn(tenantID, from, to)
	}
}
