package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/curio-cabinet/curio/internal/app/glossary"
	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Glossary API ───────────────────────────────────────────────────────────
//
// GET /api/glossary?q=&category=  — search the dictionary
// GET /api/glossary/{term}        — exact, case-insensitive lookup

// handleGlossarySearch lists matching entries.
// GET /api/glossary
func (s *Server) handleGlossarySearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries := s.glossary.Search(q.Get("q"))

	if c := glossary.Category(q.Get("category")); c != "" {
		if !c.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", c))
			return
		}
		filtered := entries[:0:0]
		for _, e := range entries {
			if e.Category == c {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if entries == nil {
		entries = []glossary.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"terms": entries,
		"total": len(entries),
	})
}

// handleGlossaryTerm returns one definition.
// GET /api/glossary/{term}
func (s *Server) handleGlossaryTerm(w http.ResponseWriter, r *http.Request) {
	term := chi.URLParam(r, "term")
	e, ok := s.glossary.Lookup(term)
	if !ok {
		s.writeDomainError(w, fmt.Errorf("%q: %w", term, domain.ErrTermNotFound))
		return
	}
	writeJSON(w, http.StatusOK, e)
}
