package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Registry errors
	ErrModuleNotFound  = errors.New("module not found")
	ErrDuplicateModule = errors.New("module slug already registered")
	ErrNoChecker       = errors.New("module has no automated checker")
	ErrInvalidState    = errors.New("puzzle state could not be decoded")

	// Progression errors
	ErrUnknownAchievement      = errors.New("unknown achievement")
	ErrUnsupportedStateVersion = errors.New("unsupported persisted state version")
	ErrXPHistoryUnsupported    = errors.New("storage backend keeps no xp history")
	ErrStateConflict           = errors.New("progress state changed by another writer")

	// Session errors
	ErrSessionNotFound = errors.New("completion session not found")

	// Glossary errors
	ErrTermNotFound = errors.New("glossary term not found")
)
