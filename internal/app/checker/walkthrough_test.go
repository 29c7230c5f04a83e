package checker

import (
	"math/big"
	"strings"
	"testing"
)

// ─── Pattern Walkthrough Tests ──────────────────────────────────────────────

func parseNumber(t *testing.T, s string) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 10)
	if !ok {
		t.Fatalf("bad number %q", s)
	}
	return n
}

func TestCuriousCalculations_ResultsAreCorrect(t *testing.T) {
	for _, p := range CuriousCalculations {
		for _, c := range p.Calculations {
			parts := strings.Split(c.Input, "×")
			if len(parts) != 2 {
				t.Fatalf("%s: unexpected input %q", p.ID, c.Input)
			}
			got := new(big.Int).Mul(parseNumber(t, parts[0]), parseNumber(t, parts[1]))
			if want := parseNumber(t, c.Result); got.Cmp(want) != 0 {
				t.Errorf("%s: %s = %s, listed as %s", p.ID, c.Input, got, c.Result)
			}
		}
	}
}

func fullWalkthrough() WalkthroughState {
	s := WalkthroughState{StepsViewed: map[string]int{}}
	for _, p := range CuriousCalculations {
		s.StepsViewed[p.ID] = len(p.Calculations)
	}
	return s
}

func TestCheckWalkthrough_Complete(t *testing.T) {
	res := CheckWalkthrough(CuriousCalculations, fullWalkthrough())
	if !res.IsCorrect || res.ScoreValue() != 100 {
		t.Fatalf("expected correct 100, got %+v", res)
	}
	if len(res.Achievements) != 1 || res.Achievements[0] != TagPatternHunter {
		t.Errorf("unexpected tags %v", res.Achievements)
	}
}

func TestCheckWalkthrough_OverCountClamped(t *testing.T) {
	s := fullWalkthrough()
	s.StepsViewed["cyclic-number"] = 99
	if res := CheckWalkthrough(CuriousCalculations, s); !res.IsCorrect {
		t.Errorf("expected correct, got %+v", res)
	}
}

func TestCheckWalkthrough_Partial(t *testing.T) {
	s := WalkthroughState{StepsViewed: map[string]int{"palindrome-squares": 7}}
	res := CheckWalkthrough(CuriousCalculations, s)
	if res.IsCorrect || !res.IsPartial {
		t.Fatalf("expected partial, got %+v", res)
	}
	if res.ScoreValue() != 50 {
		t.Errorf("expected score 50, got %d", res.ScoreValue())
	}
	if !strings.Contains(res.Feedback.Summary, "1 of 2") {
		t.Errorf("unexpected summary %q", res.Feedback.Summary)
	}
}

func TestCheckWalkthrough_NotStarted(t *testing.T) {
	for _, s := range []WalkthroughState{{}, {StepsViewed: map[string]int{"unknown": 3}}, {StepsViewed: map[string]int{"cyclic-number": -2}}} {
		res := CheckWalkthrough(CuriousCalculations, s)
		if res.IsCorrect || res.IsPartial || res.ScoreValue() != 0 {
			t.Errorf("expected not started for %v, got %+v", s.StepsViewed, res)
		}
	}
}
