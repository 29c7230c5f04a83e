package domain

// ─── Feedback Types ─────────────────────────────────────────────────────────
// Every checker returns a CheckResult. It is a fresh value per call and is
// never persisted.

// Feedback is the tiered text shown to the learner after a check.
type Feedback struct {
	Summary   string   `json:"summary"`
	Details   []string `json:"details"`
	Hints     []string `json:"hints,omitempty"`
	NextSteps []string `json:"next_steps,omitempty"`
}

// CheckResult is the verdict of a puzzle checker.
// Score is nil when partial credit does not apply to the attempt.
type CheckResult struct {
	IsCorrect    bool     `json:"is_correct"`
	IsPartial    bool     `json:"is_partial,omitempty"`
	Score        *int     `json:"score,omitempty"`
	Feedback     Feedback `json:"feedback"`
	Achievements []string `json:"achievements,omitempty"`
}

// Score returns a pointer to a score clamped to 0..100.
func Score(n int) *int {
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	return &n
}

// ScoreValue returns the score or -1 when it is omitted.
func (r CheckResult) ScoreValue() int {
	if r.Score == nil {
		return -1
	}
	return *r.Score
}

// Outcome labels a result for metrics and logs: correct, partial or incorrect.
func (r CheckResult) Outcome() string {
	switch {
	case r.IsCorrect:
		return "correct"
	case r.IsPartial:
		return "partial"
	default:
		return "incorrect"
	}
}

// NewFeedback builds Feedback with a non-nil details slice.
func NewFeedback(summary string, details ...string) Feedback {
	if details == nil {
		details = []string{}
	}
	return Feedback{Summary: summary, Details: details}
}
