// Package sqlite persists the progression document and the XP ledger in a
// single local SQLite file.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the data directory.
const FileName = "curio.db"

// DB wraps the SQLite handle used by the stores in this package.
type DB struct {
	db   *sql.DB
	path string
	mu   sync.Mutex // serializes writers to avoid SQLITE_BUSY
}

// Open creates dir when missing, opens dir/curio.db in WAL mode and applies
// all migrations.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return OpenPath(filepath.Join(dir, FileName))
}

// OpenPath opens the database file at path.
func OpenPath(path string) (*DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{db: sqlDB, path: path}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Path returns the database file location.
func (db *DB) Path() string { return db.path }

// Close releases the underlying handle.
func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) migrate() error {
	for _, stmt := range ProgressMigrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
