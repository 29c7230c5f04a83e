// Package session times a learner's visit to one module and forwards the
// result to the progression engine when the puzzle is solved.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/curio-cabinet/curio/internal/app/progression"
)

// Progress is the part of the progression engine a tracker drives.
type Progress interface {
	StartModule(ctx context.Context, moduleID string) error
	CompleteModule(ctx context.Context, moduleID string, hintsUsed int, timeSpent int64) (progression.CompletionOutcome, error)
}

// Tracker is the completion-tracking session of one module view. Every
// tracker owns a fresh timer.
type Tracker struct {
	mu        sync.Mutex
	progress  Progress
	now       func() time.Time
	moduleID  string
	startTime time.Time
	hintsUsed int
}

// NewTracker starts a session for moduleID and marks the module started.
func NewTracker(ctx context.Context, p Progress, moduleID string, now func() time.Time) (*Tracker, error) {
	if now == nil {
		now = time.Now
	}
	if err := p.StartModule(ctx, moduleID); err != nil {
		return nil, err
	}
	return &Tracker{
		progress:  p,
		now:       now,
		moduleID:  moduleID,
		startTime: now(),
	}, nil
}

// ModuleID returns the tracked module.
func (t *Tracker) ModuleID() string { return t.moduleID }

// StartTime returns when the session began.
func (t *Tracker) StartTime() time.Time { return t.startTime }

// HintsUsed returns how many hints have been revealed.
func (t *Tracker) HintsUsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hintsUsed
}

// TrackHintUsed records one hint reveal and returns the new count.
func (t *Tracker) TrackHintUsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hintsUsed++
	return t.hintsUsed
}

// Elapsed returns whole seconds since the session began.
func (t *Tracker) Elapsed() int64 {
	d := t.now().Sub(t.startTime)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

// MarkComplete forwards the hint count and elapsed seconds to the engine.
func (t *Tracker) MarkComplete(ctx context.Context) (progression.CompletionOutcome, error) {
	return t.progress.CompleteModule(ctx, t.moduleID, t.HintsUsed(), t.Elapsed())
}
