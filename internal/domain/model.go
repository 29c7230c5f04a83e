// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import (
	"fmt"
	"strings"
)

// ─── Module Types ───────────────────────────────────────────────────────────

// Difficulty grades how demanding a module is.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known difficulty grades.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Rank orders difficulties from easiest (1) to hardest (3); 0 for unknown.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyBeginner:
		return 1
	case DifficultyIntermediate:
		return 2
	case DifficultyAdvanced:
		return 3
	}
	return 0
}

// ParseDifficulty converts user input into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// ModuleMetadata is the immutable descriptor of a curiosity module.
type ModuleMetadata struct {
	ID               string     `json:"id"`
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	Subtitle         string     `json:"subtitle,omitempty"`
	Difficulty       Difficulty `json:"difficulty"`
	Topics           []string   `json:"topics"`
	EstimatedMinutes int        `json:"estimated_time"`
}

// HasTopic reports whether the module is tagged with topic (case-insensitive).
func (m ModuleMetadata) HasTopic(topic string) bool {
	topic = strings.ToLower(strings.TrimSpace(topic))
	for _, t := range m.Topics {
		if strings.ToLower(t) == topic {
			return true
		}
	}
	return false
}

// ExternalLink points to further reading for a reflection prompt.
type ExternalLink struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// ReflectionPrompt is a question shown after the interactive part.
// Explanation and Links are optional; a bare question is a valid prompt.
type ReflectionPrompt struct {
	Question    string         `json:"question"`
	Explanation string         `json:"explanation,omitempty"`
	Links       []ExternalLink `json:"external_links,omitempty"`
}

// ModuleContent is the static reading and reflection material of a module.
type ModuleContent struct {
	Reading           string             `json:"reading_content"`
	ReflectionPrompts []ReflectionPrompt `json:"reflection_prompts"`
	Hints             []string           `json:"hints,omitempty"`
	Solutions         []string           `json:"solutions,omitempty"`
}

// PuzzleKind names the interactive behaviour attached to a module.
type PuzzleKind string

const (
	PuzzleGraphColoring PuzzleKind = "graph_coloring"
	PuzzleKnightsTour   PuzzleKind = "knights_tour"
	PuzzleTruthTeller   PuzzleKind = "truth_teller"
	PuzzleWalkthrough   PuzzleKind = "pattern_walkthrough"
	PuzzleTapTrick      PuzzleKind = "tap_trick"
	PuzzleExploration   PuzzleKind = "exploration"
)

// Checkable reports whether modules of this kind have an automated checker.
func (k PuzzleKind) Checkable() bool {
	switch k {
	case PuzzleGraphColoring, PuzzleKnightsTour, PuzzleTruthTeller, PuzzleWalkthrough, PuzzleTapTrick:
		return true
	case PuzzleExploration:
		return false
	}
	return false
}
