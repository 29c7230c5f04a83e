package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Progression API ────────────────────────────────────────────────────────
//
// POST /api/progress/visit                   — record today's visit (streak)
// GET  /api/progress/stats                   — stats + level progress
// GET  /api/progress/streak                  — daily streak
// GET  /api/progress/modules                 — per-module progress
// POST /api/progress/modules/{slug}/attempts — count a failed attempt
// GET  /api/progress/achievements            — catalog with unlock stamps
// POST /api/progress/achievements/check      — re-evaluate unlock conditions
// POST /api/progress/xp                      — grant bonus XP
// GET  /api/progress/xp-history              — XP ledger, newest first
// GET  /api/progress/summary                 — dashboard snapshot
// GET  /api/progress/notifications           — unlock toasts (?since=seq)
// POST /api/progress/reset                   — wipe all progress

const defaultHistoryLimit = 50

// handleVisit updates the daily streak.
// POST /api/progress/visit
func (s *Server) handleVisit(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.CheckAndUpdateStreak(r.Context())
	if err != nil {
		s.log.Warn("streak not persisted", "error", err)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleStats returns stats and level progress.
// GET /api/progress/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.engine.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":          stats,
		"level":          stats.Level,
		"next_level_xp":  s.engine.XPForNextLevel(),
		"level_progress": s.engine.ProgressPercentage(),
	})
}

// handleStreak returns the daily streak.
// GET /api/progress/streak
func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Streak())
}

// handleModuleProgress returns progress for every started module.
// GET /api/progress/modules
func (s *Server) handleModuleProgress(w http.ResponseWriter, r *http.Request) {
	progress := s.engine.AllModuleProgress()
	completed := 0
	for _, p := range progress {
		if p.Completed {
			completed++
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"modules":   progress,
		"completed": completed,
		"total":     s.modules.Len(),
	})
}

// handleRecordAttempt counts an attempt without completing the module.
// POST /api/progress/modules/{slug}/attempts
func (s *Server) handleRecordAttempt(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if _, ok := s.modules.Get(slug); !ok {
		writeError(w, http.StatusNotFound, domain.ErrModuleNotFound.Error())
		return
	}
	if err := s.engine.RecordAttempt(r.Context(), slug); err != nil {
		s.writeDomainError(w, err)
		return
	}
	p, _ := s.engine.ModuleProgress(slug)
	writeJSON(w, http.StatusOK, p)
}

// handleAchievements returns the catalog with unlock stamps.
// GET /api/progress/achievements
func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	all := s.engine.Achievements()
	unlocked := 0
	for _, a := range all {
		if a.Unlocked() {
			unlocked++
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": all,
		"unlocked":     unlocked,
		"total":        len(all),
	})
}

// handleCheckAchievements re-evaluates every unlock condition.
// POST /api/progress/achievements/check
func (s *Server) handleCheckAchievements(w http.ResponseWriter, r *http.Request) {
	unlocked, err := s.engine.CheckAchievements(r.Context())
	if err != nil {
		s.log.Warn("achievements not persisted", "error", err)
	}
	if unlocked == nil {
		unlocked = []domain.Achievement{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"unlocked": unlocked,
	})
}

type addXPRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// handleAddXP grants bonus XP.
// POST /api/progress/xp
func (s *Server) handleAddXP(w http.ResponseWriter, r *http.Request) {
	var req addXPRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStateBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	stats, err := s.engine.AddXP(r.Context(), req.Amount, strings.TrimSpace(req.Reason))
	if err != nil {
		s.log.Warn("bonus xp not persisted", "error", err)
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleXPHistory returns the XP ledger.
// GET /api/progress/xp-history?limit=N
func (s *Server) handleXPHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	events, err := s.engine.XPHistory(r.Context(), limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if events == nil {
		events = []domain.XPEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
	})
}

// handleSummary returns the dashboard snapshot.
// GET /api/progress/summary
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Summary())
}

// handleNotifications returns achievement toasts newer than ?since.
// GET /api/progress/notifications
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		writeError(w, http.StatusServiceUnavailable, "notifications not enabled")
		return
	}
	var since int64
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be an integer")
			return
		}
		since = n
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": s.feed.Since(since),
	})
}

// handleReset wipes all progress.
// POST /api/progress/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.ResetProgress(r.Context()); err != nil {
		s.writeDomainError(w, err)
		return
	}
	if s.feed != nil {
		s.feed.Reset()
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "reset",
	})
}
