package checker

import (
	"testing"
)

// ─── Alien Encounter Tests ──────────────────────────────────────────────────

// consistent reports whether every alien's statement is true exactly when
// that alien is a truth-teller.
func consistent(alfy, betty, gemma Role) bool {
	alfySays := betty == RoleLiar
	bettySays := alfy != gemma
	gemmaSays := betty == RoleTruthTeller
	return alfySays == (alfy == RoleTruthTeller) &&
		bettySays == (betty == RoleTruthTeller) &&
		gemmaSays == (gemma == RoleTruthTeller)
}

func allAssignments() [][3]Role {
	roles := []Role{RoleTruthTeller, RoleLiar}
	var out [][3]Role
	for _, a := range roles {
		for _, b := range roles {
			for _, g := range roles {
				out = append(out, [3]Role{a, b, g})
			}
		}
	}
	return out
}

func TestAlienSolution_IsUniqueConsistentAssignment(t *testing.T) {
	found := 0
	for _, as := range allAssignments() {
		if !consistent(as[0], as[1], as[2]) {
			continue
		}
		found++
		if as[0] != AlienSolution["alfy"] || as[1] != AlienSolution["betty"] || as[2] != AlienSolution["gemma"] {
			t.Errorf("consistent assignment %v differs from the solution", as)
		}
	}
	if found != 1 {
		t.Errorf("expected exactly one consistent assignment, found %d", found)
	}
}

func TestCheckAlienEncounter_Correct(t *testing.T) {
	res := CheckAlienEncounter(Assignment{"alfy": "liar", "betty": "truth-teller", "gemma": "truth-teller"})
	if !res.IsCorrect {
		t.Fatalf("expected correct, got %+v", res)
	}
	if res.ScoreValue() != 100 {
		t.Errorf("expected score 100, got %d", res.ScoreValue())
	}
	if len(res.Achievements) != 1 || res.Achievements[0] != TagLogician {
		t.Errorf("unexpected tags %v", res.Achievements)
	}
}

func TestCheckAlienEncounter_SpeciesNames(t *testing.T) {
	res := CheckAlienEncounter(Assignment{"Alfy": "Gibberish", "Betty": "Veracitor", "Gemma": "veracitor"})
	if !res.IsCorrect {
		t.Errorf("expected in-story names to be accepted, got %+v", res)
	}
}

func TestCheckAlienEncounter_EveryWrongAssignmentExplained(t *testing.T) {
	for _, as := range allAssignments() {
		a := Assignment{"alfy": string(as[0]), "betty": string(as[1]), "gemma": string(as[2])}
		res := CheckAlienEncounter(a)
		if consistent(as[0], as[1], as[2]) {
			continue
		}
		key := as[0].letter() + as[1].letter() + as[2].letter()
		t.Run(key, func(t *testing.T) {
			if res.IsCorrect || res.IsPartial {
				t.Fatalf("expected incorrect, got %+v", res)
			}
			if res.ScoreValue() != 50 {
				t.Errorf("expected score 50, got %d", res.ScoreValue())
			}
			if len(res.Feedback.Details) == 0 {
				t.Error("expected explanation details")
			}
			if _, ok := wrongAnswerExplanations[key]; !ok {
				t.Errorf("no explanation entry for %s", key)
			}
			if len(res.Feedback.Hints) == 0 {
				t.Error("expected hints")
			}
		})
	}
}

func TestCheckAlienEncounter_Partial(t *testing.T) {
	res := CheckAlienEncounter(Assignment{"alfy": "liar", "betty": "truth-teller"})
	if res.IsCorrect || !res.IsPartial {
		t.Fatalf("expected partial, got %+v", res)
	}
	if res.Score != nil {
		t.Errorf("expected no score, got %d", *res.Score)
	}
}

func TestCheckAlienEncounter_NotStarted(t *testing.T) {
	tests := []struct {
		name string
		a    Assignment
	}{
		{"nil", nil},
		{"empty", Assignment{}},
		{"unknown roles", Assignment{"alfy": "maybe"}},
		{"unknown aliens", Assignment{"zorg": "liar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CheckAlienEncounter(tt.a)
			if res.IsCorrect || res.IsPartial || res.ScoreValue() != 0 {
				t.Errorf("expected not started, got %+v", res)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"truth-teller", RoleTruthTeller, true},
		{" Veracitor ", RoleTruthTeller, true},
		{"LIAR", RoleLiar, true},
		{"gibberish", RoleLiar, true},
		{"", "", false},
		{"alien", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRole(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
