package observability

import (
	"sync"
	"time"

	"github.com/curio-cabinet/curio/internal/domain"
)

// ═══════════════════════════════════════════════════════════════════════════
// Toast Feed — ring buffer of recent achievement unlocks
// ═══════════════════════════════════════════════════════════════════════════

// Toast is one unlock notification, numbered so clients can poll with
// "everything after seq N".
type Toast struct {
	Seq         int64         `json:"seq"`
	Achievement string        `json:"achievement"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Rarity      domain.Rarity `json:"rarity"`
	XPReward    int64         `json:"xp_reward"`
	At          time.Time     `json:"at"`
}

// DefaultFeedSize is the ring buffer capacity used when size <= 0.
const DefaultFeedSize = 64

// Feed implements domain.Notifier.
type Feed struct {
	mu     sync.Mutex
	toasts []Toast
	max    int
	seq    int64
	now    func() time.Time
}

// NewFeed creates a feed holding at most size toasts.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{
		toasts: make([]Toast, 0, size),
		max:    size,
		now:    time.Now,
	}
}

// AchievementUnlocked implements domain.Notifier.
func (f *Feed) AchievementUnlocked(a domain.Achievement) {
	f.mu.Lock()
	defer f.mu.Unlock()

	at := f.now()
	if a.UnlockedAt != nil {
		at = *a.UnlockedAt
	}
	f.seq++
	t := Toast{
		Seq:         f.seq,
		Achievement: a.ID,
		Title:       a.Title,
		Description: a.Description,
		Icon:        a.Icon,
		Rarity:      a.Rarity,
		XPReward:    a.XPReward,
		At:          at,
	}

	// Ring buffer: drop oldest at capacity
	if len(f.toasts) >= f.max {
		f.toasts = f.toasts[1:]
	}
	f.toasts = append(f.toasts, t)
}

// Since returns toasts with Seq > seq, oldest first.
func (f *Feed) Since(seq int64) []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []Toast{}
	for _, t := range f.toasts {
		if t.Seq > seq {
			out = append(out, t)
		}
	}
	return out
}

// Recent returns the newest limit toasts, oldest first. limit <= 0 means all.
func (f *Feed) Recent(limit int) []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()

	if limit <= 0 || limit > len(f.toasts) {
		limit = len(f.toasts)
	}
	out := make([]Toast, limit)
	copy(out, f.toasts[len(f.toasts)-limit:])
	return out
}

// Len returns the number of buffered toasts.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.toasts)
}

// Reset clears the buffer; sequence numbers keep increasing.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = f.toasts[:0]
}
