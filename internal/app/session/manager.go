package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/curio-cabinet/curio/internal/app/progression"
	"github.com/curio-cabinet/curio/internal/domain"
	"github.com/curio-cabinet/curio/internal/infra/logger"
)

// ─── Session Manager ────────────────────────────────────────────────────────
// The HTTP API has no view lifecycle, so trackers are held here by ID:
// opening a session mounts the view, deleting it unmounts. Sessions left
// idle past the TTL are swept.

// DefaultTTL is how long an untouched session survives.
const DefaultTTL = 2 * time.Hour

// Observer receives session lifecycle events for metrics.
type Observer interface {
	SessionOpened(moduleID string)
	SessionClosed(reason string)
}

type nopObserver struct{}

func (nopObserver) SessionOpened(string) {}
func (nopObserver) SessionClosed(string) {}

// Info describes an open session.
type Info struct {
	ID        string    `json:"session_id"`
	ModuleID  string    `json:"module"`
	StartedAt time.Time `json:"started_at"`
	HintsUsed int       `json:"hints_used"`
}

type entry struct {
	tracker  *Tracker
	lastSeen time.Time
}

// Manager holds open trackers.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry

	progress Progress
	exists   func(moduleID string) bool
	ttl      time.Duration
	now      func() time.Time
	log      *logger.Logger
	obs      Observer
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTTL sets the idle timeout.
func WithTTL(d time.Duration) ManagerOption { return func(m *Manager) { m.ttl = d } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ManagerOption { return func(m *Manager) { m.now = now } }

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) ManagerOption { return func(m *Manager) { m.log = l } }

// WithObserver sets the metrics observer.
func WithObserver(o Observer) ManagerOption { return func(m *Manager) { m.obs = o } }

// NewManager creates a Manager. exists reports whether a module ID may be
// opened; nil accepts any ID.
func NewManager(p Progress, exists func(string) bool, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*entry),
		progress: p,
		exists:   exists,
		ttl:      DefaultTTL,
		now:      time.Now,
		log:      logger.Nop(),
		obs:      nopObserver{},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) info(id string, e *entry) Info {
	return Info{
		ID:        id,
		ModuleID:  e.tracker.ModuleID(),
		StartedAt: e.tracker.StartTime(),
		HintsUsed: e.tracker.HintsUsed(),
	}
}

// Open starts a tracker for moduleID.
func (m *Manager) Open(ctx context.Context, moduleID string) (Info, error) {
	if m.exists != nil && !m.exists(moduleID) {
		return Info{}, fmt.Errorf("open session %q: %w", moduleID, domain.ErrModuleNotFound)
	}
	t, err := NewTracker(ctx, m.progress, moduleID, m.now)
	if err != nil {
		return Info{}, fmt.Errorf("open session %q: %w", moduleID, err)
	}
	id := uuid.NewString()
	e := &entry{tracker: t, lastSeen: m.now()}

	m.mu.Lock()
	m.sessions[id] = e
	m.mu.Unlock()

	m.obs.SessionOpened(moduleID)
	m.log.Debug("session opened", "session", id, "module", moduleID)
	return m.info(id, e), nil
}

func (m *Manager) touch(id string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	e.lastSeen = m.now()
	return e, nil
}

// Get returns an open session.
func (m *Manager) Get(id string) (Info, error) {
	e, err := m.touch(id)
	if err != nil {
		return Info{}, err
	}
	return m.info(id, e), nil
}

// Hint records a hint reveal.
func (m *Manager) Hint(id string) (Info, error) {
	e, err := m.touch(id)
	if err != nil {
		return Info{}, err
	}
	e.tracker.TrackHintUsed()
	return m.info(id, e), nil
}

// Complete marks the session's module complete. The session stays open so
// the learner may solve the puzzle again.
func (m *Manager) Complete(ctx context.Context, id string) (progression.CompletionOutcome, error) {
	e, err := m.touch(id)
	if err != nil {
		return progression.CompletionOutcome{}, err
	}
	return e.tracker.MarkComplete(ctx)
}

// Close discards a session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	m.obs.SessionClosed("closed")
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle longer than the TTL and returns how many.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	n := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	m.mu.Unlock()

	for i := 0; i < n; i++ {
		m.obs.SessionClosed("expired")
	}
	if n > 0 {
		m.log.Info("expired idle sessions", "count", n)
	}
	return n
}

// MinSweepInterval is the shortest interval Run sweeps at.
const MinSweepInterval = time.Second

// Run sweeps every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = m.ttl / 4
	}
	if interval < MinSweepInterval {
		interval = MinSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep()
		}
	}
}
