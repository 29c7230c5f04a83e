package checker

import (
	"fmt"
	"strings"

	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Truth-tellers and Liars ────────────────────────────────────────────────
// The Alien Encounter puzzle. Quirk questions three aliens on Planet
// Noncomposmentis; each is a Veracitor (always truthful) or Gibberish
// (always lies):
//
//	Alfy:  "Betty is Gibberish."
//	Betty: asked whether Alfy and Gemma belong to different species, "Yes."
//	Gemma: "Betty is a Veracitor."
//
// The answer is hand-authored and compared directly. Wrong answers are
// explained from a fixed table, one entry per wrong assignment.

// Role is the species an alien has been assigned.
type Role string

const (
	RoleTruthTeller Role = "truth-teller"
	RoleLiar        Role = "liar"
)

// ParseRole accepts the role names and the in-story species names.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "truth-teller", "truthteller", "truth", "veracitor", "knight":
		return RoleTruthTeller, true
	case "liar", "gibberish", "knave":
		return RoleLiar, true
	}
	return "", false
}

func (r Role) letter() string {
	if r == RoleTruthTeller {
		return "T"
	}
	return "L"
}

// Alien IDs in the fixed order used to key the explanation table.
var Aliens = []string{"alfy", "betty", "gemma"}

var alienNames = map[string]string{"alfy": "Alfy", "betty": "Betty", "gemma": "Gemma"}

// AlienSolution is the hand-authored answer.
var AlienSolution = map[string]Role{
	"alfy":  RoleLiar,
	"betty": RoleTruthTeller,
	"gemma": RoleTruthTeller,
}

// Assignment maps alien ID → assigned role name.
type Assignment map[string]string

// wrongAnswerExplanations is keyed by the alfy/betty/gemma role letters.
var wrongAnswerExplanations = map[string][]string{
	"TTT": {
		"❌ Alfy says Betty is Gibberish, while Gemma says Betty is a Veracitor. They can't both be telling the truth!",
		"Alfy and Gemma contradict each other, so exactly one of them is lying - they must be different species.",
	},
	"TTL": {
		"❌ If Alfy were a Veracitor, Betty really would be Gibberish - but you marked Betty as a Veracitor.",
		"A Veracitor's statement must be true, so Alfy's claim about Betty rules this out.",
	},
	"TLT": {
		"❌ Alfy and Gemma make opposite claims about Betty, so they can't both be Veracitors.",
		"Betty said Alfy and Gemma are different species. Since one of them must be lying, that answer is true - and Gibberish never tells the truth.",
	},
	"TLL": {
		"❌ You have Alfy and Gemma as different species, so Betty's \"Yes\" would be true.",
		"A Gibberish can't give a true answer, so Betty can't be Gibberish here.",
	},
	"LTL": {
		"❌ If Betty is a Veracitor, Gemma's statement \"Betty is a Veracitor\" is true.",
		"A Gibberish can't say something true, so Gemma can't be Gibberish.",
	},
	"LLT": {
		"❌ If Betty were Gibberish, Alfy's statement \"Betty is Gibberish\" would be true - but you marked Alfy as Gibberish.",
		"Gemma would also be wrong about Betty, and a Veracitor never says anything false.",
	},
	"LLL": {
		"❌ If everyone were Gibberish, Alfy's claim that Betty is Gibberish would be true.",
		"Gibberish can't tell the truth, so not all three aliens can be liars.",
	},
}

// CheckAlienEncounter grades a truth-teller/liar assignment.
func CheckAlienEncounter(a Assignment) domain.CheckResult {
	roles := make(map[string]Role, len(Aliens))
	for id, raw := range a {
		id = strings.ToLower(strings.TrimSpace(id))
		if _, known := alienNames[id]; !known {
			continue
		}
		if r, ok := ParseRole(raw); ok {
			roles[id] = r
		}
	}

	if len(roles) == 0 {
		return notStarted(
			"Assign a species to each alien to begin.",
			[]string{"Each alien must be either a Veracitor (truth-teller) or Gibberish (liar)."},
			"Pick a species for Alfy, Betty and Gemma",
		)
	}

	if len(roles) < len(Aliens) {
		fb := domain.NewFeedback(
			"You need to assign a species to all three aliens.",
			fmt.Sprintf("You've assigned %d out of %d aliens.", len(roles), len(Aliens)),
			"Each alien must be either a Veracitor (truth-teller) or Gibberish (liar).",
		)
		fb.NextSteps = []string{
			"Assign species to the remaining aliens",
			"Use logical deduction based on their statements",
		}
		return domain.CheckResult{IsPartial: true, Feedback: fb}
	}

	var key strings.Builder
	correct := true
	for _, id := range Aliens {
		key.WriteString(roles[id].letter())
		if roles[id] != AlienSolution[id] {
			correct = false
		}
	}

	if correct {
		fb := domain.NewFeedback(
			"Perfect! You've correctly identified all three aliens using pure logic!",
			"🎯 Alfy is Gibberish (liar) - lied about Betty",
			"✅ Betty is a Veracitor (truth-teller) - Alfy and Gemma really are different species",
			"✅ Gemma is a Veracitor (truth-teller) - told the truth about Betty",
			"Alfy and Gemma contradict each other, so Betty's \"Yes\" is true. That makes Betty and Gemma Veracitors and Alfy the liar!",
		)
		fb.NextSteps = []string{
			"Try solving it again without hints to test your understanding",
			"Can you explain why each deduction follows logically?",
		}
		return domain.CheckResult{
			IsCorrect:    true,
			Score:        domain.Score(100),
			Feedback:     fb,
			Achievements: []string{TagLogician},
		}
	}

	details, ok := wrongAnswerExplanations[key.String()]
	if !ok {
		details = []string{
			"Think about what each statement tells you",
			"If someone lies, the opposite of what they say is true",
		}
	}
	fb := domain.NewFeedback("Not quite right. Let's work through the logic together.", details...)
	fb.Hints = []string{
		"Alfy and Gemma say opposite things about Betty. What does that tell you about the two of them?",
		"Betty was asked whether Alfy and Gemma are different species. Is her answer true or false?",
		"Once you know Betty, Gemma's statement tells you about Gemma.",
	}
	fb.NextSteps = []string{
		"Try assigning different species and check for logical consistency",
		"Work backwards from what you know for certain",
	}
	return domain.CheckResult{
		Score:    domain.Score(50),
		Feedback: fb,
	}
}
