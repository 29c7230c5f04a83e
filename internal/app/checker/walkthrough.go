package checker

import (
	"fmt"

	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Number Pattern Walkthrough ─────────────────────────────────────────────
// Curious-calculation modules walk the learner through fixed sequences of
// worked examples. Completion means every sequence has been followed to its
// last example at least once; nothing is computed from user input.

// Calculation is one worked example.
type Calculation struct {
	Input  string `json:"input"`
	Result string `json:"result"`
}

// Pattern is a named sequence of worked examples.
type Pattern struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Calculations []Calculation `json:"calculations"`
	Explanation  string        `json:"explanation"`
	Principle    string        `json:"mathematical_principle"`
}

// WalkthroughState counts how many worked examples of each pattern the
// learner has stepped through.
type WalkthroughState struct {
	StepsViewed map[string]int `json:"steps_viewed"`
}

// CuriousCalculations are the patterns of the curious-calculations module.
var CuriousCalculations = []Pattern{
	{
		ID:          "palindrome-squares",
		Title:       "Pattern 1: Palindrome Squares",
		Description: "Try these multiplications. What pattern do you notice?",
		Calculations: []Calculation{
			{"1 × 1", "1"},
			{"11 × 11", "121"},
			{"111 × 111", "12,321"},
			{"1,111 × 1,111", "1,234,321"},
			{"11,111 × 11,111", "123,454,321"},
			{"111,111 × 111,111", "12,345,654,321"},
			{"1,111,111 × 1,111,111", "1,234,567,654,321"},
		},
		Explanation: "Each result is a palindrome that counts up to a peak digit and then back down.",
		Principle:   "Squaring a repunit (a number made only of 1s) adds shifted copies of itself; the column sums rise and fall symmetrically.",
	},
	{
		ID:          "cyclic-number",
		Title:       "Pattern 2: The Cyclic Number 142,857",
		Description: "Multiply 142,857 by 1 through 7. What do you notice?",
		Calculations: []Calculation{
			{"142,857 × 1", "142,857"},
			{"142,857 × 2", "285,714"},
			{"142,857 × 3", "428,571"},
			{"142,857 × 4", "571,428"},
			{"142,857 × 5", "714,285"},
			{"142,857 × 6", "857,142"},
			{"142,857 × 7", "999,999"},
		},
		Explanation: "The same six digits rotate through every product until ×7 gives all nines.",
		Principle:   "142,857 is the repeating block of 1/7 = 0.142857...; multiplying by 2..6 gives 2/7..6/7, which share the block at different offsets.",
	},
}

// CheckWalkthrough grades traversal of patterns.
func CheckWalkthrough(patterns []Pattern, s WalkthroughState) domain.CheckResult {
	totalSteps, viewedSteps, finished := 0, 0, 0
	status := make([]string, 0, len(patterns))
	for _, p := range patterns {
		n := len(p.Calculations)
		v := s.StepsViewed[p.ID]
		if v < 0 {
			v = 0
		}
		if v > n {
			v = n
		}
		totalSteps += n
		viewedSteps += v
		if v == n {
			finished++
			status = append(status, "✓ "+p.Title)
		} else {
			status = append(status, fmt.Sprintf("%s - %d of %d calculations", p.Title, v, n))
		}
	}

	if viewedSteps == 0 {
		return notStarted(
			"Pick a pattern and step through its calculations to begin.",
			[]string{fmt.Sprintf("There are %s to discover.", plural(len(patterns), "pattern"))},
			"Choose a pattern",
		)
	}

	if finished == len(patterns) {
		fb := domain.NewFeedback(
			"Amazing! You've discovered all the curious calculation patterns!",
			"You've explored every worked example in each pattern",
			"These patterns reveal deep mathematical structures",
		)
		fb.NextSteps = []string{
			"Try to predict what 11,111,111 × 11,111,111 will be",
			"See if you can find other cyclic numbers",
		}
		return domain.CheckResult{
			IsCorrect:    true,
			Score:        domain.Score(100),
			Feedback:     fb,
			Achievements: []string{TagPatternHunter},
		}
	}

	fb := domain.NewFeedback(
		fmt.Sprintf("You've discovered %d of %d patterns.", finished, len(patterns)),
		status...,
	)
	fb.NextSteps = []string{"Step through every calculation of the remaining patterns"}
	return domain.CheckResult{
		IsPartial: true,
		Score:     domain.Score(percent(viewedSteps, totalSteps)),
		Feedback:  fb,
	}
}
