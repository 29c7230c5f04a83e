// Package progression owns the learner's XP, level, daily streak,
// per-module progress and achievement state.
//
// Every mutation of an Engine runs under one lock, is persisted before the
// call returns, and is followed by a synchronous achievement evaluation whose
// unlocks are returned to the caller and published to the configured
// Notifier. Saves are conditional on the stored revision, so several engines
// (a server and one-shot CLI commands) may share one store: a mutation that
// loses the race is re-applied on top of the newer document.
package progression

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/curio-cabinet/curio/internal/domain"
	"github.com/curio-cabinet/curio/internal/infra/logger"
)

// ─── XP Rules ───────────────────────────────────────────────────────────────

const (
	BaseCompletionXP  int64 = 100
	PerfectBonusXP    int64 = 50
	SpeedBonusXP      int64 = 25
	SpeedBonusSeconds int64 = 600
)

// CompletionXP is the XP value of a single completion attempt.
func CompletionXP(hintsUsed int, timeSpent int64) int64 {
	xp := BaseCompletionXP
	if hintsUsed == 0 {
		xp += PerfectBonusXP
	}
	if timeSpent < SpeedBonusSeconds {
		xp += SpeedBonusXP
	}
	return xp
}

// ─── Engine ─────────────────────────────────────────────────────────────────

// Observer receives progression events for metrics.
type Observer interface {
	ModuleCompleted(moduleID string, firstTime bool)
	XPAwarded(source domain.XPSource, amount int64)
	AchievementUnlocked(id string, rarity domain.Rarity)
	StreakUpdated(current int)
	LevelChanged(level int)
}

type nopObserver struct{}

func (nopObserver) ModuleCompleted(string, bool)              {}
func (nopObserver) XPAwarded(domain.XPSource, int64)          {}
func (nopObserver) AchievementUnlocked(string, domain.Rarity) {}
func (nopObserver) StreakUpdated(int)                         {}
func (nopObserver) LevelChanged(int)                          {}

// Engine is the progression state machine.
type Engine struct {
	mu sync.Mutex

	store    domain.StateStore
	journal  domain.XPJournal // nil when the store keeps no ledger
	log      *logger.Logger
	obs      Observer
	notifier domain.Notifier
	now      func() time.Time
	loc      *time.Location

	totalModules int
	defs         []domain.AchievementDef
	defIndex     map[string]int

	state    domain.PersistedState
	unlocked map[string]bool
	pending  []domain.XPEvent // awards not yet saved
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore sets the persistence backend. Defaults to a MemoryStore.
func WithStore(s domain.StateStore) Option { return func(e *Engine) { e.store = s } }

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option { return func(e *Engine) { e.log = l } }

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option { return func(e *Engine) { e.obs = o } }

// WithNotifier sets the receiver of achievement unlocks.
func WithNotifier(n domain.Notifier) Option { return func(e *Engine) { e.notifier = n } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithLocation sets the time zone whose calendar days streaks count.
func WithLocation(loc *time.Location) Option { return func(e *Engine) { e.loc = loc } }

// WithTotalModules sets the number of modules the all-modules achievement
// requires.
func WithTotalModules(n int) Option { return func(e *Engine) { e.totalModules = n } }

// New constructs an Engine and loads persisted state. Missing state starts
// from defaults.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	e := &Engine{
		obs: nopObserver{},
		now: time.Now,
		loc: time.Local,
	}
	for _, o := range opts {
		o(e)
	}
	if e.store == nil {
		e.store = NewMemoryStore()
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	if j, ok := e.store.(domain.XPJournal); ok {
		e.journal = j
	}

	e.defs = Catalog()
	e.defIndex = make(map[string]int, len(e.defs))
	for i, d := range e.defs {
		e.defIndex[d.ID] = i
	}

	st, err := e.store.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if st == nil {
		e.resetLocked()
		e.log.Info("progress initialised", "reason", "no stored state")
		return e, nil
	}
	if st.Version != domain.StateVersion {
		return nil, fmt.Errorf("load progress: version %d: %w", st.Version, domain.ErrUnsupportedStateVersion)
	}
	e.restoreLocked(*st)
	e.log.Info("progress loaded",
		"total_xp", e.state.Stats.TotalXP,
		"level", e.state.Stats.Level,
		"modules_completed", e.state.Stats.ModulesCompleted,
		"achievements", len(e.state.UnlockedAchievements),
	)
	return e, nil
}

// ─── State Helpers (caller holds e.mu) ──────────────────────────────────────

func (e *Engine) catalogState() []domain.Achievement {
	out := make([]domain.Achievement, len(e.defs))
	for i, d := range e.defs {
		out[i] = d.Achievement
	}
	return out
}

// resetLocked restores defaults. The revision is kept so the reset can be
// saved over the stored document.
func (e *Engine) resetLocked() {
	rev := e.state.Revision
	e.state = domain.PersistedState{
		Version:              domain.StateVersion,
		Revision:             rev,
		ModuleProgress:       make(map[string]domain.ModuleProgress),
		Achievements:         e.catalogState(),
		UnlockedAchievements: []string{},
	}
	e.unlocked = make(map[string]bool)
}

// restoreLocked adopts a stored document, re-deriving every value that has
// a single source of truth.
func (e *Engine) restoreLocked(st domain.PersistedState) {
	e.resetLocked()
	e.state.Revision = st.Revision
	e.state.Stats = st.Stats
	e.state.Streak = st.Streak
	for id, p := range st.ModuleProgress {
		p.ModuleID = id
		e.state.ModuleProgress[id] = p
	}

	stamps := make(map[string]*time.Time, len(st.Achievements))
	for _, a := range st.Achievements {
		if a.UnlockedAt != nil {
			stamps[a.ID] = a.UnlockedAt
		}
	}
	ids := append([]string(nil), st.UnlockedAchievements...)
	for id := range stamps {
		ids = append(ids, id)
	}
	for _, id := range ids {
		i, known := e.defIndex[id]
		if !known || e.unlocked[id] {
			continue
		}
		at := stamps[id]
		if at == nil {
			t := e.now()
			at = &t
		}
		e.state.Achievements[i].UnlockedAt = cloneTime(at)
		e.state.UnlockedAchievements = append(e.state.UnlockedAchievements, id)
		e.unlocked[id] = true
	}

	e.state.Stats.Level = domain.LevelForXP(e.state.Stats.TotalXP)
	e.state.Stats.AchievementsUnlocked = len(e.state.UnlockedAchievements)
	if e.state.Streak.LongestStreak < e.state.Streak.CurrentStreak {
		e.state.Streak.LongestStreak = e.state.Streak.CurrentStreak
	}
}

// reloadLocked replaces the in-memory state with the stored document.
func (e *Engine) reloadLocked(ctx context.Context) error {
	st, err := e.store.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("reload progress: %w", err)
	}
	if st == nil {
		e.state.Revision = 0
		e.resetLocked()
		return nil
	}
	if st.Version != domain.StateVersion {
		return fmt.Errorf("reload progress: version %d: %w", st.Version, domain.ErrUnsupportedStateVersion)
	}
	e.restoreLocked(*st)
	return nil
}

// maxCommitAttempts bounds how often a mutation is re-applied after other
// writers saved first.
const maxCommitAttempts = 5

// commitLocked applies fn to the state and saves the result. fn reports
// whether it changed anything and must derive everything from e.state, since
// on ErrStateConflict the stored document is reloaded and fn runs again on
// top of it. Any other save failure leaves the change committed in memory;
// its ledger entries are written with the next successful save.
func (e *Engine) commitLocked(ctx context.Context, op string, fn func() bool) error {
	for attempt := 1; ; attempt++ {
		if !fn() {
			return nil
		}
		err := e.store.SaveState(ctx, cloneState(e.state))
		if err == nil {
			e.state.Revision++
			e.flushLedgerLocked(ctx)
			return nil
		}
		if !errors.Is(err, domain.ErrStateConflict) {
			e.log.Error("persist progress failed", "op", op, "error", err)
			return fmt.Errorf("%s: persist: %w", op, err)
		}

		e.pending = nil
		if rerr := e.reloadLocked(ctx); rerr != nil {
			e.log.Error("reload after conflict failed", "op", op, "error", rerr)
			return fmt.Errorf("%s: %w", op, rerr)
		}
		if attempt == maxCommitAttempts {
			e.log.Error("persist progress failed", "op", op, "attempts", attempt, "error", err)
			return fmt.Errorf("%s: persist: %w", op, err)
		}
		e.log.Debug("progress saved elsewhere, re-applying", "op", op, "revision", e.state.Revision)
	}
}

// awardXPLocked adds amount to the total, keeps the level derived and queues
// the award for the ledger.
func (e *Engine) awardXPLocked(source domain.XPSource, ref string, amount int64) {
	if amount <= 0 {
		return
	}
	e.state.Stats.TotalXP += amount
	e.state.Stats.Level = domain.LevelForXP(e.state.Stats.TotalXP)
	e.pending = append(e.pending, domain.XPEvent{
		Source:     source,
		Ref:        ref,
		Amount:     amount,
		TotalAfter: e.state.Stats.TotalXP,
		At:         e.now(),
	})
}

// flushLedgerLocked reports saved awards and appends them to the ledger.
func (e *Engine) flushLedgerLocked(ctx context.Context) {
	for _, ev := range e.pending {
		e.obs.XPAwarded(ev.Source, ev.Amount)
		if level := domain.LevelForXP(ev.TotalAfter); level != domain.LevelForXP(ev.TotalAfter-ev.Amount) {
			e.obs.LevelChanged(level)
			e.log.Info("level up", "level", level, "total_xp", ev.TotalAfter)
		}
		if e.journal == nil {
			continue
		}
		if err := e.journal.AppendXPEvent(ctx, ev); err != nil {
			e.log.Warn("append xp event failed", "source", ev.Source, "ref", ev.Ref, "error", err)
		}
	}
	e.pending = nil
}

func (e *Engine) snapshotLocked() domain.ProgressSnapshot {
	return domain.ProgressSnapshot{
		Stats:        e.state.Stats,
		Streak:       e.state.Streak,
		TotalModules: e.totalModules,
	}
}

// unlockLocked stamps and rewards one achievement. It reports false when
// the achievement was already unlocked.
func (e *Engine) unlockLocked(id string) (domain.Achievement, bool, error) {
	i, ok := e.defIndex[id]
	if !ok {
		return domain.Achievement{}, false, fmt.Errorf("unlock %q: %w", id, domain.ErrUnknownAchievement)
	}
	if e.unlocked[id] {
		return cloneAchievement(e.state.Achievements[i]), false, nil
	}
	now := e.now()
	e.state.Achievements[i].UnlockedAt = &now
	e.state.UnlockedAchievements = append(e.state.UnlockedAchievements, id)
	e.unlocked[id] = true
	e.state.Stats.AchievementsUnlocked++

	a := e.state.Achievements[i]
	e.awardXPLocked(domain.XPAchievement, id, a.XPReward)
	return cloneAchievement(a), true, nil
}

// evaluateLocked unlocks every achievement whose predicate now holds. It
// repeats until nothing changes, since rewards can lift the level past a
// level achievement's threshold.
func (e *Engine) evaluateLocked() []domain.Achievement {
	var out []domain.Achievement
	for {
		progressed := false
		for _, d := range e.defs {
			if e.unlocked[d.ID] || d.Predicate == nil || !d.Predicate(e.snapshotLocked()) {
				continue
			}
			a, fresh, err := e.unlockLocked(d.ID)
			if err != nil || !fresh {
				continue
			}
			out = append(out, a)
			progressed = true
		}
		if !progressed {
			return out
		}
	}
}

// afterCommitLocked is the post-commit hook every mutation runs: it commits
// mutate, then evaluates achievements and commits any unlocks. extra lists
// achievements the mutation itself earned.
func (e *Engine) afterCommitLocked(ctx context.Context, op string, mutate func() bool, extra ...string) ([]domain.Achievement, error) {
	firstErr := e.commitLocked(ctx, op, mutate)

	var unlocked []domain.Achievement
	err := e.commitLocked(ctx, op+": achievements", func() bool {
		unlocked = nil
		for _, id := range extra {
			if a, fresh, err := e.unlockLocked(id); err == nil && fresh {
				unlocked = append(unlocked, a)
			}
		}
		unlocked = append(unlocked, e.evaluateLocked()...)
		return len(unlocked) > 0
	})
	if err != nil {
		if errors.Is(err, domain.ErrStateConflict) {
			unlocked = nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return unlocked, firstErr
}

// notify reports committed unlocks to metrics, the log and the Notifier.
func (e *Engine) notify(unlocked []domain.Achievement) {
	for _, a := range unlocked {
		e.obs.AchievementUnlocked(a.ID, a.Rarity)
		e.log.Info("achievement unlocked", "id", a.ID, "rarity", a.Rarity, "xp_reward", a.XPReward)
		if e.notifier != nil {
			e.notifier.AchievementUnlocked(a)
		}
	}
}
