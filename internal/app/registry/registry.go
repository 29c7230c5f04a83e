// Package registry holds the catalog of curiosity modules and dispatches
// widget state to each module's checker.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/curio-cabinet/curio/internal/domain"
)

// CheckFunc decodes a widget state payload and grades it.
type CheckFunc func(raw json.RawMessage) (domain.CheckResult, error)

// ModuleDefinition bundles a module's metadata, static content and checker.
// Checker is nil for exploration-only modules.
type ModuleDefinition struct {
	Metadata domain.ModuleMetadata `json:"metadata"`
	Content  domain.ModuleContent  `json:"content"`
	Kind     domain.PuzzleKind     `json:"kind"`
	Checker  CheckFunc             `json:"-"`
}

// Checkable reports whether the module has an automated checker.
func (d ModuleDefinition) Checkable() bool { return d.Checker != nil }

// Check grades raw widget state with the module's checker.
func (d ModuleDefinition) Check(raw json.RawMessage) (domain.CheckResult, error) {
	if d.Checker == nil {
		return domain.CheckResult{}, fmt.Errorf("%s: %w", d.Metadata.Slug, domain.ErrNoChecker)
	}
	return d.Checker(raw)
}

// Registry is an ordered, slug-keyed set of modules. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	modules map[string]ModuleDefinition
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{modules: make(map[string]ModuleDefinition)}
}

// Register adds def under its slug. Slugs are unique.
func (r *Registry) Register(def ModuleDefinition) error {
	slug := def.Metadata.Slug
	if slug == "" {
		return errors.New("register module: empty slug")
	}
	if !def.Metadata.Difficulty.Valid() {
		return fmt.Errorf("register module %s: unknown difficulty %q", slug, def.Metadata.Difficulty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modules[slug]; exists {
		return fmt.Errorf("register module %s: %w", slug, domain.ErrDuplicateModule)
	}
	r.modules[slug] = def
	r.order = append(r.order, slug)
	return nil
}

// MustRegister is Register for static catalogs; it panics on error.
func (r *Registry) MustRegister(defs ...ModuleDefinition) {
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Get returns the module registered under slug. A missing slug is reported
// through the boolean, never as an error.
func (r *Registry) Get(slug string) (ModuleDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.modules[slug]
	return def, ok
}

// All returns every module in registration order.
func (r *Registry) All() []ModuleDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ModuleDefinition, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.modules[slug])
	}
	return out
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Filter returns modules matching difficulty and topic in registration
// order. Empty arguments match everything.
func (r *Registry) Filter(difficulty domain.Difficulty, topic string) []ModuleDefinition {
	var out []ModuleDefinition
	for _, d := range r.All() {
		if difficulty != "" && d.Metadata.Difficulty != difficulty {
			continue
		}
		if topic != "" && !d.Metadata.HasTopic(topic) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Check looks up slug and grades raw with its checker.
func (r *Registry) Check(slug string, raw json.RawMessage) (domain.CheckResult, error) {
	def, ok := r.Get(slug)
	if !ok {
		return domain.CheckResult{}, fmt.Errorf("%s: %w", slug, domain.ErrModuleNotFound)
	}
	return def.Check(raw)
}

// decodeState unmarshals raw into T. An empty payload yields the zero value,
// which every checker grades as a fresh attempt.
func decodeState[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 || string(raw) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", domain.ErrInvalidState, err)
	}
	return v, nil
}

// checkWith adapts a pure checker to a CheckFunc.
func checkWith[T any](check func(T) domain.CheckResult) CheckFunc {
	return func(raw json.RawMessage) (domain.CheckResult, error) {
		state, err := decodeState[T](raw)
		if err != nil {
			return domain.CheckResult{}, err
		}
		return check(state), nil
	}
}
