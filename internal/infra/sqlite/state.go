package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Progress Schema ────────────────────────────────────────────────────────

// ProgressMigrations returns the schema statements for the progress
// document and the XP ledger. Each string is a single SQL statement.
func ProgressMigrations() []string {
	return []string{
		// Single-row progression document
		`CREATE TABLE IF NOT EXISTS progress_state (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			version    INTEGER NOT NULL,
			revision   INTEGER NOT NULL DEFAULT 0,
			document   TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		// Append-only XP ledger
		`CREATE TABLE IF NOT EXISTS xp_ledger (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			source      TEXT NOT NULL,
			ref         TEXT NOT NULL DEFAULT '',
			amount      INTEGER NOT NULL,
			total_after INTEGER NOT NULL,
			at          TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_xp_ledger_at ON xp_ledger(at)`,
	}
}

// ─── Progress Document Operations ───────────────────────────────────────────

// LoadState implements domain.StateStore. Returns (nil, nil) on first run.
func (db *DB) LoadState(ctx context.Context) (*domain.PersistedState, error) {
	var (
		doc string
		rev int64
	)
	err := db.db.QueryRowContext(ctx,
		`SELECT document, revision FROM progress_state WHERE id = 1`,
	).Scan(&doc, &rev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress state: %w", err)
	}

	var st domain.PersistedState
	if err := json.Unmarshal([]byte(doc), &st); err != nil {
		return nil, fmt.Errorf("decode progress state: %w", err)
	}
	st.Revision = rev
	return &st, nil
}

// SaveState implements domain.StateStore. The row is only written when its
// revision still matches st.Revision; another process holding the same file
// may have saved in between.
func (db *DB) SaveState(ctx context.Context, st domain.PersistedState) error {
	next := st
	next.Revision = st.Revision + 1
	doc, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode progress state: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	var res sql.Result
	if st.Revision == 0 {
		res, err = db.db.ExecContext(ctx, `
			INSERT INTO progress_state (id, version, revision, document, updated_at)
			VALUES (1, ?, 1, ?, datetime('now'))
			ON CONFLICT(id) DO NOTHING
		`, st.Version, string(doc))
	} else {
		res, err = db.db.ExecContext(ctx, `
			UPDATE progress_state SET
				version    = ?,
				revision   = revision + 1,
				document   = ?,
				updated_at = datetime('now')
			WHERE id = 1 AND revision = ?
		`, st.Version, string(doc), st.Revision)
	}
	if err != nil {
		return fmt.Errorf("save progress state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save progress state: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("save progress state at revision %d: %w", st.Revision, domain.ErrStateConflict)
	}
	return nil
}

// ─── XP Ledger Operations ───────────────────────────────────────────────────

// AppendXPEvent implements domain.XPJournal.
func (db *DB) AppendXPEvent(ctx context.Context, ev domain.XPEvent) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO xp_ledger (source, ref, amount, total_after, at)
		VALUES (?, ?, ?, ?, ?)
	`, string(ev.Source), ev.Ref, ev.Amount, ev.TotalAfter, ev.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append xp event: %w", err)
	}
	return nil
}

// ListXPEvents implements domain.XPJournal. Newest first; limit <= 0 means all.
func (db *DB) ListXPEvents(ctx context.Context, limit int) ([]domain.XPEvent, error) {
	query := `SELECT id, source, ref, amount, total_after, at FROM xp_ledger ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list xp events: %w", err)
	}
	defer rows.Close()

	var out []domain.XPEvent
	for rows.Next() {
		var (
			ev     domain.XPEvent
			source string
			at     string
		)
		if err := rows.Scan(&ev.ID, &source, &ev.Ref, &ev.Amount, &ev.TotalAfter, &at); err != nil {
			return nil, err
		}
		ev.Source = domain.XPSource(source)
		ev.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("xp event %d: bad timestamp %q: %w", ev.ID, at, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ResetXPEvents implements domain.XPJournal.
func (db *DB) ResetXPEvents(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, err := db.db.ExecContext(ctx, `DELETE FROM xp_ledger`); err != nil {
		return fmt.Errorf("reset xp ledger: %w", err)
	}
	return nil
}

// XPTotal sums the ledger. Used by `curio progress` to cross-check the
// document's running total.
func (db *DB) XPTotal(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := db.db.QueryRowContext(ctx, `SELECT SUM(amount) FROM xp_ledger`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum xp ledger: %w", err)
	}
	return total.Int64, nil
}

var (
	_ domain.StateStore = (*DB)(nil)
	_ domain.XPJournal  = (*DB)(nil)
)
