// Package reconcile merges authoritative remote recording state into a
// client's displayed view. The dashboard embeds this loop; tests drive it
// directly against the coordinator.
package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mymcpme/recorder/internal/domain"
	"github.com/mymcpme/recorder/internal/recorder"
)

// StatusClient fetches remote truth about the tenant's recording.
type StatusClient interface {
	// Status returns the cheap recording snapshot.
	Status(ctx context.Context) (recorder.Status, error)
	// Session returns the full session record including the action log.
	Session(ctx context.Context, sessionID string) (*domain.RecordingSession, error)
}

// View is the locally displayed recording state.
type View struct {
	Recording   bool
	SessionID   string
	SessionName string
	ActionCount int
	Actions     []domain.RecordedAction
	Status      domain.SessionStatus
	StartTime   time.Time
	Elapsed     time.Duration
}

// Loop polls the coordinator and reconciles the local view with remote
// truth. Each tick is best-effort: a failed request is swallowed and retried
// next tick, never terminating the loop.
type Loop struct {
	client   StatusClient
	interval time.Duration
	logger   *slog.Logger
	onUpdate func(View)

	mu         sync.Mutex
	view       View
	issuedSeq  uint64
	appliedSeq uint64
	cancel     context.CancelFunc
	durStop    chan struct{}
}

// NewLoop creates a reconciliation loop. onUpdate, when non-nil, fires after
// every applied change with a copy of the view.
func NewLoop(client StatusClient, interval time.Duration, onUpdate func(View), logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		client:   client,
		interval: interval,
		logger:   logger,
		onUpdate: onUpdate,
	}
}

// Run polls until the context is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.cancel != nil {
		l.mu.Unlock()
		cancel()
		return
	}
	l.cancel = cancel
	l.mu.Unlock()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.tick(ctx)
		case <-ctx.Done():
			l.stopDurationTimer()
			return
		}
	}
}

// Stop cancels the polling and duration timers. Idempotent: calling it twice
// neither double-stops nor leaks a timer handle.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.stopDurationTimer()
}

// CurrentView returns a copy of the displayed state.
func (l *Loop) CurrentView() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	view := l.view
	view.Actions = append([]domain.RecordedAction(nil), l.view.Actions...)
	return view
}

// Tick runs one reconciliation pass synchronously. Run calls the same logic
// on the interval; tests call it directly.
func (l *Loop) Tick(ctx context.Context) {
	l.tick(ctx)
}

func (l *Loop) tick(ctx context.Context) {
	l.mu.Lock()
	l.issuedSeq++
	seq := l.issuedSeq
	lastCount := l.view.ActionCount
	localRecording := l.view.Recording
	localSessionID := l.view.SessionID
	l.mu.Unlock()

	// Bound every network call so a hung request cannot span more than one
	// extra tick; timeout is a transient failure like any other.
	fetchCtx, cancel := context.WithTimeout(ctx, 2*l.interval)
	defer cancel()

	status, err := l.client.Status(fetchCtx)
	if err != nil {
		l.logger.Debug("status poll failed, will retry next tick", "error", err)
		return
	}

	switch {
	case status.IsRecording && localRecording && status.SessionID == localSessionID:
		if status.ActionCount == lastCount {
			// Nothing changed remotely; skip the detail fetch entirely.
			l.apply(seq, func(v *View) {
				v.Elapsed = time.Since(v.StartTime)
			})
			return
		}
		l.fetchAndAdopt(fetchCtx, seq, status)

	case status.IsRecording:
		// Remote is recording but we are idle or tracking another session:
		// adopt it (page reload, second tab).
		l.fetchAndAdopt(fetchCtx, seq, status)

	case !status.IsRecording && localRecording:
		// The recording ended elsewhere. Stop timers and adopt the terminal
		// state; the final fetch is best-effort.
		session, err := l.client.Session(fetchCtx, localSessionID)
		if err != nil {
			l.logger.Debug("final session fetch failed", "error", err, "session_id", localSessionID)
			session = nil
		}
		applied := l.apply(seq, func(v *View) {
			v.Recording = false
			v.Elapsed = 0
			if session != nil {
				v.Status = session.Status
				v.ActionCount = len(session.Actions)
				v.Actions = session.Actions
			}
		})
		if applied {
			l.stopDurationTimer()
		}

	default:
		// Both sides idle.
	}
}

func (l *Loop) fetchAndAdopt(ctx context.Context, seq uint64, status recorder.Status) {
	session, err := l.client.Session(ctx, status.SessionID)
	if err != nil {
		l.logger.Debug("session detail fetch failed, will retry next tick",
			"error", err, "session_id", status.SessionID)
		return
	}

	applied := l.apply(seq, func(v *View) {
		sameSession := v.Recording && v.SessionID == session.ID
		v.Recording = true
		v.SessionID = session.ID
		v.SessionName = session.Name
		v.Status = session.Status
		v.StartTime = session.StartTime
		v.Elapsed = time.Since(session.StartTime)
		// Never let a stale fetch shrink the displayed log of the session
		// being tracked; the log is append-only while recording.
		if !sameSession || len(session.Actions) >= v.ActionCount {
			v.ActionCount = len(session.Actions)
			v.Actions = session.Actions
		}
	})
	if applied {
		l.startDurationTimer()
	}
}

// apply mutates the view under the lock, unless a later tick's result has
// already been applied: a slow response from an earlier tick can never
// overwrite a newer one.
func (l *Loop) apply(seq uint64, mutate func(*View)) bool {
	l.mu.Lock()
	if seq <= l.appliedSeq {
		l.mu.Unlock()
		return false
	}
	l.appliedSeq = seq
	mutate(&l.view)
	var snapshot View
	if l.onUpdate != nil {
		snapshot = l.view
		snapshot.Actions = append([]domain.RecordedAction(nil), l.view.Actions...)
	}
	onUpdate := l.onUpdate
	l.mu.Unlock()

	if onUpdate != nil {
		onUpdate(snapshot)
	}
	return true
}

// startDurationTimer begins the 1s display timer if not already running.
func (l *Loop) startDurationTimer() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.durStop != nil {
		return
	}
	stop := make(chan struct{})
	l.durStop = stop

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.mu.Lock()
				if l.view.Recording {
					l.view.Elapsed = time.Since(l.view.StartTime)
				}
				l.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

// stopDurationTimer halts the display timer. Idempotent.
func (l *Loop) stopDurationTimer() {
	l.mu.Lock()
	stop := l.durStop
	l.durStop = nil
	l.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}
