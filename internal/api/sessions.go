package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ─── Completion Session API ─────────────────────────────────────────────────
//
// POST   /api/sessions                — {module} → session info
// GET    /api/sessions/{id}           — session info
// POST   /api/sessions/{id}/hints     — record a hint reveal
// POST   /api/sessions/{id}/complete  — complete the module
// DELETE /api/sessions/{id}           — discard the session

type openSessionRequest struct {
	Module string `json:"module"`
}

// handleOpenSession starts tracking a module view.
// POST /api/sessions
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStateBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Module = strings.TrimSpace(req.Module)
	if req.Module == "" {
		writeError(w, http.StatusBadRequest, "module is required")
		return
	}

	info, err := s.sessions.Open(r.Context(), req.Module)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// handleGetSession returns an open session.
// GET /api/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleSessionHint records a hint reveal.
// POST /api/sessions/{id}/hints
func (s *Server) handleSessionHint(w http.ResponseWriter, r *http.Request) {
	info, err := s.sessions.Hint(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleCompleteSession completes the session's module.
// POST /api/sessions/{id}/complete
func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	out, err := s.sessions.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if out.ModuleID == "" {
			s.writeDomainError(w, err)
			return
		}
		// State is committed in memory; only persistence failed.
		s.log.Warn("completion not persisted", "module", out.ModuleID, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"outcome":    out,
		"leveled_up": out.LeveledUp(),
	})
}

// handleCloseSession discards a session.
// DELETE /api/sessions/{id}
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(chi.URLParam(r, "id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
