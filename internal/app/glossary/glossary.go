// Package glossary serves the tooltip dictionary of mathematical terms.
package glossary

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed glossary.yaml
var defaultDictionary []byte

// Category groups glossary terms by field.
type Category string

const (
	CategoryGraphTheory  Category = "graph-theory"
	CategoryTopology     Category = "topology"
	CategoryNumberTheory Category = "number-theory"
	CategoryGeometry     Category = "geometry"
	CategoryGeneral      Category = "general"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryGraphTheory,
	CategoryTopology,
	CategoryNumberTheory,
	CategoryGeometry,
	CategoryGeneral,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryGraphTheory, CategoryTopology, CategoryNumberTheory, CategoryGeometry, CategoryGeneral:
		return true
	}
	return false
}

// Entry is one dictionary term.
type Entry struct {
	Key        string   `yaml:"key" json:"key"`
	Term       string   `yaml:"term" json:"term"`
	Definition string   `yaml:"definition" json:"definition"`
	Category   Category `yaml:"category" json:"category"`
	Related    []string `yaml:"related,omitempty" json:"related_terms,omitempty"`
}

// Glossary is an immutable term dictionary.
type Glossary struct {
	entries map[string]Entry
	keys    []string
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Parse builds a Glossary from a YAML document.
func Parse(data []byte) (*Glossary, error) {
	var doc struct {
		Terms []Entry `yaml:"terms"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse glossary: %w", err)
	}
	g := &Glossary{entries: make(map[string]Entry, len(doc.Terms))}
	for _, e := range doc.Terms {
		key := normalize(e.Key)
		if key == "" {
			key = normalize(e.Term)
		}
		if key == "" || e.Definition == "" {
			return nil, fmt.Errorf("parse glossary: entry %q is missing a key or definition", e.Term)
		}
		if !e.Category.Valid() {
			return nil, fmt.Errorf("parse glossary: %s: unknown category %q", key, e.Category)
		}
		if _, dup := g.entries[key]; dup {
			return nil, fmt.Errorf("parse glossary: duplicate key %q", key)
		}
		e.Key = key
		g.entries[key] = e
		g.keys = append(g.keys, key)
	}
	sort.Strings(g.keys)
	return g, nil
}

var (
	defaultOnce sync.Once
	defaultG    *Glossary
)

// Default returns the built-in dictionary.
func Default() *Glossary {
	defaultOnce.Do(func() {
		g, err := Parse(defaultDictionary)
		if err != nil {
			panic(err)
		}
		defaultG = g
	})
	return defaultG
}

// Lookup finds a term by case-insensitive exact match on its key.
func (g *Glossary) Lookup(term string) (Entry, bool) {
	e, ok := g.entries[normalize(term)]
	return e, ok
}

// Has reports whether term is in the dictionary.
func (g *Glossary) Has(term string) bool {
	_, ok := g.Lookup(term)
	return ok
}

// Terms returns every entry sorted by key.
func (g *Glossary) Terms() []Entry {
	out := make([]Entry, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, g.entries[k])
	}
	return out
}

// ByCategory returns the entries of one category sorted by key.
func (g *Glossary) ByCategory(c Category) []Entry {
	var out []Entry
	for _, e := range g.Terms() {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// Search returns entries whose term or definition contains query,
// ignoring case. An empty query matches everything.
func (g *Glossary) Search(query string) []Entry {
	q := normalize(query)
	var out []Entry
	for _, e := range g.Terms() {
		if q == "" || strings.Contains(strings.ToLower(e.Term), q) || strings.Contains(strings.ToLower(e.Definition), q) {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (g *Glossary) Len() int { return len(g.keys) }
