package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// StateStore persists the progression document.
type StateStore interface {
	// LoadState returns (nil, nil) when nothing has been stored yet.
	LoadState(ctx context.Context) (*PersistedState, error)

	// SaveState replaces the stored document when the stored revision still
	// equals st.Revision, writing it with Revision st.Revision+1. Revision 0
	// means nothing has been stored. A mismatch returns ErrStateConflict.
	SaveState(ctx context.Context, st PersistedState) error
}

// XPJournal is implemented by stores that keep an XP ledger.
type XPJournal interface {
	AppendXPEvent(ctx context.Context, ev XPEvent) error
	ListXPEvents(ctx context.Context, limit int) ([]XPEvent, error)
	ResetXPEvents(ctx context.Context) error
}

// Notifier receives achievement unlocks after they are committed
// (toast notifications, live feeds).
type Notifier interface {
	AchievementUnlocked(a Achievement)
}
