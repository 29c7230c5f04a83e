package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/curio-cabinet/curio/internal/app/progression"
	"github.com/curio-cabinet/curio/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Open / Migrate ─────────────────────────────────────────────────────────

func TestOpen_CreatesDirectoryAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if db.Path() != filepath.Join(dir, FileName) {
		t.Errorf("Path() = %q", db.Path())
	}
	if _, err := os.Stat(db.Path()); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	db := newTestDB(t)

	var mode string
	if err := db.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
	var timeout int
	if err := db.db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		db, err := Open(dir)
		if err != nil {
			t.Fatalf("Open() #%d error: %v", i+1, err)
		}
		db.Close()
	}
}

// ─── Progress Document ──────────────────────────────────────────────────────

func TestLoadState_FirstRun(t *testing.T) {
	db := newTestDB(t)

	st, err := db.LoadState(context.Background())
	if err != nil {
		t.Fatalf("LoadState() error: %v", err)
	}
	if st != nil {
		t.Errorf("LoadState() = %+v, want nil on first run", st)
	}
}

func TestSaveState_RoundTripAndOverwrite(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	done := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	first := domain.PersistedState{
		Version: domain.StateVersion,
		Stats:   domain.UserStats{TotalXP: 175, Level: 1, ModulesCompleted: 1, PerfectScores: 1},
		Streak:  domain.DailyStreak{CurrentStreak: 2, LongestStreak: 4, LastVisit: done, TotalDaysActive: 6},
		ModuleProgress: map[string]domain.ModuleProgress{
			"knights-tour": {ModuleID: "knights-tour", Completed: true, CompletedAt: &done, Attempts: 1, XPEarned: 175},
		},
		UnlockedAchievements: []string{"first-step"},
	}
	if err := db.SaveState(ctx, first); err != nil {
		t.Fatalf("SaveState() error: %v", err)
	}

	got, err := db.LoadState(ctx)
	if err != nil || got == nil {
		t.Fatalf("LoadState() = %v, %v", got, err)
	}
	if got.Stats.TotalXP != 175 || got.Streak.LongestStreak != 4 {
		t.Errorf("stats/streak = %+v / %+v", got.Stats, got.Streak)
	}
	mp := got.ModuleProgress["knights-tour"]
	if !mp.Completed || mp.CompletedAt == nil || !mp.CompletedAt.Equal(done) {
		t.Errorf("module progress = %+v", mp)
	}
	if !got.Streak.LastVisit.Equal(done) {
		t.Errorf("LastVisit = %v, want %v", got.Streak.LastVisit, done)
	}
	if got.Revision != 1 {
		t.Errorf("Revision = %d, want 1", got.Revision)
	}

	second := first
	second.Revision = 1
	second.Stats.TotalXP = 500
	if err := db.SaveState(ctx, second); err != nil {
		t.Fatalf("SaveState() overwrite error: %v", err)
	}
	got, _ = db.LoadState(ctx)
	if got.Stats.TotalXP != 500 || got.Revision != 2 {
		t.Errorf("after overwrite TotalXP = %d, Revision = %d; want 500, 2", got.Stats.TotalXP, got.Revision)
	}

	var rows int
	db.db.QueryRow(`SELECT COUNT(*) FROM progress_state`).Scan(&rows)
	if rows != 1 {
		t.Errorf("progress_state rows = %d, want 1", rows)
	}
}

func TestSaveState_StaleRevisionConflicts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	st := domain.PersistedState{Version: domain.StateVersion}

	if err := db.SaveState(ctx, st); err != nil {
		t.Fatalf("first SaveState() error: %v", err)
	}
	// a second writer that also started from an empty store
	if err := db.SaveState(ctx, st); !errors.Is(err, domain.ErrStateConflict) {
		t.Errorf("insert over existing row: err = %v, want ErrStateConflict", err)
	}

	st.Revision = 1
	st.Stats.TotalXP = 100
	if err := db.SaveState(ctx, st); err != nil {
		t.Fatalf("SaveState() at revision 1 error: %v", err)
	}
	st.Stats.TotalXP = 999
	if err := db.SaveState(ctx, st); !errors.Is(err, domain.ErrStateConflict) {
		t.Errorf("stale update: err = %v, want ErrStateConflict", err)
	}

	got, _ := db.LoadState(ctx)
	if got.Stats.TotalXP != 100 || got.Revision != 2 {
		t.Errorf("stored TotalXP = %d, Revision = %d; want 100, 2", got.Stats.TotalXP, got.Revision)
	}
}

func TestLoadState_CorruptDocument(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.db.Exec(`INSERT INTO progress_state (id, version, document) VALUES (1, 1, '{not json')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.LoadState(context.Background()); err == nil {
		t.Error("LoadState() on corrupt row should fail")
	}
}

// ─── XP Ledger ──────────────────────────────────────────────────────────────

func TestXPLedger_NewestFirstWithLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 9, 30, 0, 123, time.UTC)

	events := []domain.XPEvent{
		{Source: domain.XPModuleCompletion, Ref: "mobius", Amount: 175, TotalAfter: 175, At: at},
		{Source: domain.XPAchievement, Ref: "first-step", Amount: 50, TotalAfter: 225, At: at.Add(time.Second)},
		{Source: domain.XPBonus, Ref: "welcome", Amount: 10, TotalAfter: 235, At: at.Add(2 * time.Second)},
	}
	for _, ev := range events {
		if err := db.AppendXPEvent(ctx, ev); err != nil {
			t.Fatalf("AppendXPEvent() error: %v", err)
		}
	}

	all, err := db.ListXPEvents(ctx, 0)
	if err != nil {
		t.Fatalf("ListXPEvents() error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Ref != "welcome" || all[2].Ref != "mobius" {
		t.Errorf("order = %s, %s, %s; want newest first", all[0].Ref, all[1].Ref, all[2].Ref)
	}
	if all[2].Source != domain.XPModuleCompletion || !all[2].At.Equal(at) {
		t.Errorf("oldest event = %+v", all[2])
	}
	if all[0].ID <= all[1].ID {
		t.Errorf("ids not descending: %d, %d", all[0].ID, all[1].ID)
	}

	two, _ := db.ListXPEvents(ctx, 2)
	if len(two) != 2 || two[1].Ref != "first-step" {
		t.Errorf("ListXPEvents(2) = %+v", two)
	}

	total, err := db.XPTotal(ctx)
	if err != nil || total != 235 {
		t.Errorf("XPTotal() = %d, %v; want 235", total, err)
	}
}

func TestXPLedger_Reset(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	db.AppendXPEvent(ctx, domain.XPEvent{Source: domain.XPBonus, Amount: 5, TotalAfter: 5, At: time.Now()})
	if err := db.ResetXPEvents(ctx); err != nil {
		t.Fatalf("ResetXPEvents() error: %v", err)
	}
	evs, _ := db.ListXPEvents(ctx, 0)
	if len(evs) != 0 {
		t.Errorf("events after reset = %d, want 0", len(evs))
	}
	total, _ := db.XPTotal(ctx)
	if total != 0 {
		t.Errorf("XPTotal() after reset = %d, want 0", total)
	}
}

// ─── Engine Integration ─────────────────────────────────────────────────────

func TestEngine_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	db, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	eng, err := progression.New(ctx,
		progression.WithStore(db),
		progression.WithClock(clock),
		progression.WithTotalModules(6),
	)
	if err != nil {
		t.Fatalf("progression.New() error: %v", err)
	}
	if _, err := eng.CompleteModule(ctx, "knights-tour", 0, 900); err != nil {
		t.Fatalf("CompleteModule() error: %v", err)
	}
	want := eng.Stats()
	db.Close()

	db2, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer db2.Close()
	eng2, err := progression.New(ctx, progression.WithStore(db2), progression.WithClock(clock))
	if err != nil {
		t.Fatalf("progression.New() after reopen error: %v", err)
	}

	got := eng2.Stats()
	if got != want {
		t.Errorf("stats after reopen = %+v, want %+v", got, want)
	}
	if !eng2.IsModuleCompleted("knights-tour") {
		t.Error("knights-tour should still be completed")
	}

	hist, err := eng2.XPHistory(ctx, 0)
	if err != nil {
		t.Fatalf("XPHistory() error: %v", err)
	}
	// module completion + first-step
	if len(hist) != 2 {
		t.Fatalf("history len = %d, want 2", len(hist))
	}
	if hist[1].Source != domain.XPModuleCompletion || hist[1].Amount != 150 {
		t.Errorf("oldest event = %+v, want module_completion 150", hist[1])
	}
}

// A server and a one-shot CLI command each hold an engine on the same file.
func TestEngine_TwoWritersShareOneFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	open := func() (*DB, *progression.Engine) {
		t.Helper()
		db, err := Open(dir)
		if err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		eng, err := progression.New(ctx,
			progression.WithStore(db),
			progression.WithClock(clock),
			progression.WithTotalModules(6),
		)
		if err != nil {
			t.Fatalf("progression.New() error: %v", err)
		}
		return db, eng
	}
	serveDB, serve := open()
	_, cli := open()

	// 175 completion + speed-demon 200 + first-step 50
	if _, err := cli.CompleteModule(ctx, "knights-tour", 0, 0); err != nil {
		t.Fatalf("cli CompleteModule() error: %v", err)
	}

	out, err := serve.CompleteModule(ctx, "knights-tour", 0, 0)
	if err != nil {
		t.Fatalf("serve CompleteModule() error: %v", err)
	}
	if out.FirstCompletion || out.XPAwarded != 0 {
		t.Errorf("repeat completion from stale engine = %+v, want no credit", out)
	}
	if len(out.Unlocked) != 0 {
		t.Errorf("stale engine re-unlocked %d achievements", len(out.Unlocked))
	}
	if _, err := serve.CompleteModule(ctx, "alien-encounter", 0, 0); err != nil {
		t.Fatalf("serve CompleteModule(alien) error: %v", err)
	}

	st, err := serveDB.LoadState(ctx)
	if err != nil || st == nil {
		t.Fatalf("LoadState() = %v, %v", st, err)
	}
	if st.Stats.TotalXP != 600 || st.Stats.ModulesCompleted != 2 || st.Stats.Level != 2 {
		t.Errorf("stored stats = %+v, want 600 xp, 2 modules, level 2", st.Stats)
	}
	if got := st.ModuleProgress["knights-tour"].Attempts; got != 2 {
		t.Errorf("knights-tour attempts = %d, want 2", got)
	}
	if st.Stats.AchievementsUnlocked != 2 {
		t.Errorf("achievements unlocked = %d, want 2", st.Stats.AchievementsUnlocked)
	}

	total, err := serveDB.XPTotal(ctx)
	if err != nil {
		t.Fatalf("XPTotal() error: %v", err)
	}
	if total != st.Stats.TotalXP {
		t.Errorf("ledger sum %d != document total %d", total, st.Stats.TotalXP)
	}
	if serve.Stats() != st.Stats {
		t.Errorf("serve engine stats = %+v, want stored %+v", serve.Stats(), st.Stats)
	}
}
