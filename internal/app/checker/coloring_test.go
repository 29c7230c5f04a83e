package checker

import (
	"strings"
	"testing"
)

// ─── Graph Coloring Tests ───────────────────────────────────────────────────

func fourRegionMap() ColoringState {
	return ColoringState{
		Adjacency: map[int][]int{
			0: {1, 2, 4},
			1: {0, 3, 4},
			2: {0, 3, 4},
			3: {1, 2, 4},
			4: {0, 1, 2, 3},
		},
		RegionNames: map[int]string{0: "Top Left", 1: "Top Right", 2: "Bottom Left", 3: "Bottom Right", 4: "Center"},
		ColorNames:  []string{"Red", "Blue", "Green", "Yellow"},
	}
}

func TestCheckColoring_ValidThreeColors(t *testing.T) {
	s := fourRegionMap()
	s.Colors = map[int]int{0: 0, 1: 1, 2: 1, 3: 0, 4: 2}

	res := CheckColoring(s)
	if !res.IsCorrect {
		t.Fatalf("expected correct, got %+v", res)
	}
	if res.ScoreValue() != 100 {
		t.Errorf("expected score 100, got %d", res.ScoreValue())
	}
	if len(res.Achievements) != 1 || res.Achievements[0] != TagValidColoring {
		t.Errorf("expected [%s], got %v", TagValidColoring, res.Achievements)
	}
}

func TestCheckColoring_AllFourColors(t *testing.T) {
	s := fourRegionMap()
	s.Colors = map[int]int{0: 0, 1: 1, 2: 1, 3: 3, 4: 2}

	res := CheckColoring(s)
	if !res.IsCorrect {
		t.Fatalf("expected correct, got %+v", res)
	}
	want := map[string]bool{TagFourColorMaster: true, TagNoConflicts: true}
	if len(res.Achievements) != 2 {
		t.Fatalf("expected 2 tags, got %v", res.Achievements)
	}
	for _, tag := range res.Achievements {
		if !want[tag] {
			t.Errorf("unexpected tag %s", tag)
		}
	}
}

func TestCheckColoring_Conflicts(t *testing.T) {
	s := fourRegionMap()
	s.Colors = map[int]int{0: 0, 1: 0, 2: 1, 3: 1, 4: 2}

	res := CheckColoring(s)
	if res.IsCorrect || res.IsPartial {
		t.Fatalf("expected incorrect, got %+v", res)
	}
	if res.ScoreValue() != 50 {
		t.Errorf("expected score 50, got %d", res.ScoreValue())
	}
	joined := strings.Join(res.Feedback.Details, "\n")
	if !strings.Contains(joined, "Top Left and Top Right are both Red") {
		t.Errorf("expected regions 0 and 1 named, got %q", joined)
	}
	if !strings.Contains(joined, "Bottom Left and Bottom Right are both Blue") {
		t.Errorf("expected regions 2 and 3 named, got %q", joined)
	}
	if !strings.HasPrefix(res.Feedback.Details[0], "Found 2 conflicts") {
		t.Errorf("expected conflict count line, got %q", res.Feedback.Details[0])
	}
}

func TestCheckColoring_ConflictListCapped(t *testing.T) {
	s := fourRegionMap()
	s.Colors = map[int]int{0: 0, 1: 0, 2: 0, 3: 0, 4: 0}

	res := CheckColoring(s)
	// count line plus at most three pairs
	if len(res.Feedback.Details) != 1+maxConflictsShown {
		t.Errorf("expected %d details, got %d", 1+maxConflictsShown, len(res.Feedback.Details))
	}
	if !strings.HasPrefix(res.Feedback.Details[0], "Found 8 conflicts") {
		t.Errorf("expected 8 deduplicated conflicts, got %q", res.Feedback.Details[0])
	}
}

func TestCheckColoring_Partial(t *testing.T) {
	s := fourRegionMap()
	s.Colors = map[int]int{0: 0, 1: 1, 4: -1}

	res := CheckColoring(s)
	if res.IsCorrect || !res.IsPartial {
		t.Fatalf("expected partial, got %+v", res)
	}
	if res.ScoreValue() != 40 {
		t.Errorf("expected score 40, got %d", res.ScoreValue())
	}
}

func TestCheckColoring_Empty(t *testing.T) {
	tests := []struct {
		name  string
		state ColoringState
	}{
		{"no colors", fourRegionMap()},
		{"no adjacency", ColoringState{Colors: map[int]int{0: 1}}},
		{"zero value", ColoringState{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CheckColoring(tt.state)
			if res.IsCorrect || res.IsPartial {
				t.Errorf("expected not started, got %+v", res)
			}
			if res.ScoreValue() != 0 {
				t.Errorf("expected score 0, got %d", res.ScoreValue())
			}
			if res.Feedback.Summary == "" {
				t.Error("expected a summary")
			}
		})
	}
}

func TestCheckColoring_DoesNotMutateInput(t *testing.T) {
	s := fourRegionMap()
	s.Colors = map[int]int{0: 0, 1: 0}
	CheckColoring(s)
	if len(s.Colors) != 2 || s.Colors[0] != 0 || s.Colors[1] != 0 {
		t.Errorf("input mutated: %v", s.Colors)
	}
}
