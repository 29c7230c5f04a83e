package progression

import (
	"context"
	"fmt"
	"sync"

	"github.com/curio-cabinet/curio/internal/domain"
)

// MemoryStore keeps the progress document and XP ledger in memory.
// Used by tests and the "memory" storage backend.
type MemoryStore struct {
	mu     sync.Mutex
	state  *domain.PersistedState
	events []domain.XPEvent
	saves  int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// LoadState implements domain.StateStore.
func (m *MemoryStore) LoadState(context.Context) (*domain.PersistedState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	st := cloneState(*m.state)
	return &st, nil
}

// SaveState implements domain.StateStore.
func (m *MemoryStore) SaveState(_ context.Context, st domain.PersistedState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stored int64
	if m.state != nil {
		stored = m.state.Revision
	}
	if stored != st.Revision {
		return fmt.Errorf("save at revision %d, stored %d: %w", st.Revision, stored, domain.ErrStateConflict)
	}
	c := cloneState(st)
	c.Revision++
	m.state = &c
	m.saves++
	return nil
}

// Saves returns how many times SaveState has been called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// AppendXPEvent implements domain.XPJournal.
func (m *MemoryStore) AppendXPEvent(_ context.Context, ev domain.XPEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev.ID = int64(len(m.events) + 1)
	m.events = append(m.events, ev)
	return nil
}

// ListXPEvents implements domain.XPJournal. Newest first; limit <= 0 means all.
func (m *MemoryStore) ListXPEvents(_ context.Context, limit int) ([]domain.XPEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.events)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.XPEvent, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

// ResetXPEvents implements domain.XPJournal.
func (m *MemoryStore) ResetXPEvents(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	return nil
}
