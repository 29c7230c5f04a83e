package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curio-cabinet/curio/internal/app/registry"
	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Module Catalog API ─────────────────────────────────────────────────────
//
// GET  /api/modules                 — catalog in registration order
//                                     (?difficulty=&topic= filters)
// GET  /api/modules/{slug}          — full definition with content
// POST /api/modules/{slug}/check    — grade widget state

// moduleSummary is the catalog card for one module.
type moduleSummary struct {
	domain.ModuleMetadata
	Kind      domain.PuzzleKind   `json:"kind"`
	Checkable bool                `json:"checkable"`
	Status    domain.ModuleStatus `json:"status"`
}

type moduleDetail struct {
	registry.ModuleDefinition
	Checkable bool                   `json:"checkable"`
	Status    domain.ModuleStatus    `json:"status"`
	Progress  *domain.ModuleProgress `json:"progress,omitempty"`
}

// handleListModules returns the catalog.
// GET /api/modules
func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	difficulty := domain.Difficulty(r.URL.Query().Get("difficulty"))
	if difficulty != "" && !difficulty.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown difficulty %q", difficulty))
		return
	}
	topic := r.URL.Query().Get("topic")

	defs := s.modules.Filter(difficulty, topic)
	out := make([]moduleSummary, 0, len(defs))
	for _, d := range defs {
		out = append(out, moduleSummary{
			ModuleMetadata: d.Metadata,
			Kind:           d.Kind,
			Checkable:      d.Checkable(),
			Status:         s.engine.ModuleStatus(d.Metadata.Slug),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"modules": out,
		"total":   len(out),
	})
}

// handleGetModule returns one module definition.
// GET /api/modules/{slug}
func (s *Server) handleGetModule(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	def, ok := s.modules.Get(slug)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrModuleNotFound.Error())
		return
	}

	resp := moduleDetail{
		ModuleDefinition: def,
		Checkable:        def.Checkable(),
		Status:           s.engine.ModuleStatus(slug),
	}
	if p, ok := s.engine.ModuleProgress(slug); ok {
		resp.Progress = &p
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCheck grades the posted widget state.
// POST /api/modules/{slug}/check
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxStateBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "puzzle state too large")
		return
	}

	result, err := s.modules.Check(slug, raw)
	if err != nil {
		if s.metrics != nil && errors.Is(err, domain.ErrInvalidState) {
			s.metrics.ObserveInvalidCheck(slug)
		}
		s.writeDomainError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.ObserveCheck(slug, result)
	}
	s.log.Debug("puzzle checked", "module", slug, "outcome", result.Outcome(), "score", result.ScoreValue())
	writeJSON(w, http.StatusOK, result)
}
