// Package checker validates the solution state of each puzzle type and
// produces structured feedback.
//
// Every checker is a pure function: it never mutates its input, never
// returns an error and never panics. Malformed or missing input is graded
// as an incomplete attempt.
package checker

import (
	"fmt"
	"math"

	"github.com/curio-cabinet/curio/internal/domain"
)

// Achievement tags attached to CheckResult.Achievements.
const (
	TagFourColorMaster    = "four-color-master"
	TagNoConflicts        = "no-conflicts"
	TagValidColoring      = "valid-coloring"
	TagKnightsTourMaster  = "knights-tour-master"
	TagClosedTourChampion = "closed-tour-champion"
	TagLogician           = "logician"
	TagPatternHunter      = "pattern-hunter"
	TagMindReader         = "mind-reader"
)

// notStarted is the shared result for an empty attempt.
func notStarted(summary string, details []string, nextSteps ...string) domain.CheckResult {
	fb := domain.NewFeedback(summary, details...)
	fb.NextSteps = nextSteps
	return domain.CheckResult{
		IsCorrect: false,
		Score:     domain.Score(0),
		Feedback:  fb,
	}
}

// percent returns round(part/whole × 100).
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
