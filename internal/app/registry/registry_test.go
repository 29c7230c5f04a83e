package registry

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/curio-cabinet/curio/internal/app/checker"
	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Registry Tests ─────────────────────────────────────────────────────────

func TestDefault_Order(t *testing.T) {
	r := Default()
	want := []string{
		SlugAlienEncounter, SlugTapAnAnimal, SlugCuriousCalculations,
		SlugFourColorTheorem, SlugKnightsTour, SlugMobiusBand,
	}
	all := r.All()
	if len(all) != len(want) || r.Len() != len(want) {
		t.Fatalf("expected %d modules, got %d (Len %d)", len(want), len(all), r.Len())
	}
	for i, d := range all {
		if d.Metadata.Slug != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], d.Metadata.Slug)
		}
		if d.Metadata.Title == "" || d.Content.Reading == "" {
			t.Errorf("%s: missing title or reading", d.Metadata.Slug)
		}
		if d.Checkable() != d.Kind.Checkable() {
			t.Errorf("%s: checker presence disagrees with kind %s", d.Metadata.Slug, d.Kind)
		}
	}
}

func TestGet(t *testing.T) {
	r := Default()
	def, ok := r.Get(SlugFourColorTheorem)
	if !ok {
		t.Fatal("expected four-color-theorem")
	}
	if def.Metadata.Difficulty != domain.DifficultyIntermediate {
		t.Errorf("unexpected difficulty %s", def.Metadata.Difficulty)
	}
	if _, ok := r.Get("nonexistent"); ok {
		t.Error("expected absent slug to report false")
	}
}

func TestRegister_Rejects(t *testing.T) {
	r := New()
	def := ModuleDefinition{Metadata: domain.ModuleMetadata{Slug: "x", Difficulty: domain.DifficultyBeginner}}
	if err := r.Register(def); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(def); !errors.Is(err, domain.ErrDuplicateModule) {
		t.Errorf("expected ErrDuplicateModule, got %v", err)
	}
	if err := r.Register(ModuleDefinition{Metadata: domain.ModuleMetadata{Difficulty: domain.DifficultyBeginner}}); err == nil {
		t.Error("expected error for empty slug")
	}
	if err := r.Register(ModuleDefinition{Metadata: domain.ModuleMetadata{Slug: "y", Difficulty: "expert"}}); err == nil {
		t.Error("expected error for unknown difficulty")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 module, got %d", r.Len())
	}
}

func TestFilter(t *testing.T) {
	r := Default()
	tests := []struct {
		difficulty domain.Difficulty
		topic      string
		want       int
	}{
		{"", "", 6},
		{domain.DifficultyBeginner, "", 4},
		{domain.DifficultyIntermediate, "", 2},
		{"", "Graph Theory", 2},
		{domain.DifficultyBeginner, "topology", 1},
		{domain.DifficultyAdvanced, "", 0},
	}
	for _, tt := range tests {
		if got := len(r.Filter(tt.difficulty, tt.topic)); got != tt.want {
			t.Errorf("Filter(%q, %q) = %d modules, want %d", tt.difficulty, tt.topic, got, tt.want)
		}
	}
}

func TestCheck_Dispatch(t *testing.T) {
	r := Default()
	tests := []struct {
		slug    string
		payload string
		correct bool
	}{
		{SlugFourColorTheorem, `{"colors":{"0":0,"1":1,"2":1,"3":0,"4":2}}`, true},
		{SlugFourColorTheorem, `{"colors":{"0":0,"1":0,"2":1,"3":1,"4":2}}`, false},
		{SlugKnightsTour, `{"path":[[0,0],[1,2],[2,0]],"board_size":5}`, false},
		{SlugAlienEncounter, `{"alfy":"liar","betty":"truth-teller","gemma":"truth-teller"}`, true},
		{SlugTapAnAnimal, `{"animal":"Giraffe"}`, true},
		{SlugCuriousCalculations, `{"steps_viewed":{"palindrome-squares":7,"cyclic-number":7}}`, true},
		{SlugCuriousCalculations, ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			res, err := r.Check(tt.slug, json.RawMessage(tt.payload))
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if res.IsCorrect != tt.correct {
				t.Errorf("expected correct=%v, got %+v", tt.correct, res)
			}
			if res.Feedback.Summary == "" {
				t.Error("expected a summary")
			}
		})
	}
}

func TestCheck_FourColorNamesRegions(t *testing.T) {
	res, err := Default().Check(SlugFourColorTheorem, json.RawMessage(`{"colors":{"0":0,"1":0,"2":1,"3":1,"4":2}}`))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Feedback.Details[1] != "Top Left and Top Right are both Red" {
		t.Errorf("unexpected first conflict %q", res.Feedback.Details[1])
	}
}

func TestCheck_Errors(t *testing.T) {
	r := Default()
	if _, err := r.Check("nope", nil); !errors.Is(err, domain.ErrModuleNotFound) {
		t.Errorf("expected ErrModuleNotFound, got %v", err)
	}
	if _, err := r.Check(SlugMobiusBand, json.RawMessage(`{}`)); !errors.Is(err, domain.ErrNoChecker) {
		t.Errorf("expected ErrNoChecker, got %v", err)
	}
	if _, err := r.Check(SlugKnightsTour, json.RawMessage(`{"path":"oops"}`)); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestCheck_KnightsTourBoardSizeFromBody(t *testing.T) {
	res, err := Default().Check(SlugKnightsTour, json.RawMessage(`{"path":[[0,0]],"board_size":4294967296}`))
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if res.IsCorrect || res.ScoreValue() != 0 {
		t.Errorf("oversized board graded as %+v", res)
	}
}

func TestFourColorMap_MatchesChecker(t *testing.T) {
	s := FourColorMap
	s.Colors = map[int]int{0: 0, 1: 1, 2: 1, 3: 0, 4: 2}
	if !checker.CheckColoring(s).IsCorrect {
		t.Error("expected the sample coloring to be valid on the built-in map")
	}
}
