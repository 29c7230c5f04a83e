package checker

import (
	"encoding/json"
	"fmt"

	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Knight's Tour ──────────────────────────────────────────────────────────

// DefaultBoardSize is used when a tour state carries no usable board size.
const DefaultBoardSize = 5

// MaxBoardSize is the largest board a tour is graded on.
const MaxBoardSize = 64

const maxTourErrorsShown = 3

// Cell is a board square. It encodes as a [row, col] JSON array.
type Cell struct {
	Row int
	Col int
}

func (c Cell) String() string { return fmt.Sprintf("(%d, %d)", c.Row, c.Col) }

// MarshalJSON encodes the cell as [row, col].
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Row, c.Col})
}

// UnmarshalJSON decodes a [row, col] array.
func (c *Cell) UnmarshalJSON(b []byte) error {
	var rc [2]int
	if err := json.Unmarshal(b, &rc); err != nil {
		return err
	}
	c.Row, c.Col = rc[0], rc[1]
	return nil
}

// TourState is the ordered sequence of squares the knight has visited.
type TourState struct {
	Path      []Cell `json:"path"`
	BoardSize int    `json:"board_size"`
}

// IsKnightMove reports whether from→to is an L-shaped knight move.
func IsKnightMove(from, to Cell) bool {
	dr := abs(to.Row - from.Row)
	dc := abs(to.Col - from.Col)
	return (dr == 1 && dc == 2) || (dr == 2 && dc == 1)
}

// IsClosedTour reports whether the last square is a knight move from the first.
func IsClosedTour(path []Cell) bool {
	if len(path) < 2 {
		return false
	}
	return IsKnightMove(path[len(path)-1], path[0])
}

// TourErrors lists every rule violation of path in path order.
func TourErrors(path []Cell, n int) []string {
	var errs []string
	visited := make(map[Cell]struct{}, len(path))
	for i, c := range path {
		if c.Row < 0 || c.Col < 0 || c.Row >= n || c.Col >= n {
			errs = append(errs, fmt.Sprintf("Square %s is off the %d×%d board", c, n, n))
		}
		if _, dup := visited[c]; dup {
			errs = append(errs, fmt.Sprintf("Square %s visited more than once", c))
		}
		visited[c] = struct{}{}
		if i > 0 && !IsKnightMove(path[i-1], c) {
			errs = append(errs, fmt.Sprintf("Invalid knight move from %s to %s", path[i-1], c))
		}
	}
	return errs
}

// CheckKnightsTour grades a knight's tour on an N×N board.
func CheckKnightsTour(s TourState) domain.CheckResult {
	n := s.BoardSize
	if n <= 0 {
		n = DefaultBoardSize
	}
	if n > MaxBoardSize {
		return notStarted(
			fmt.Sprintf("A %d×%d board is too large to check.", n, n),
			[]string{fmt.Sprintf("Boards up to %d×%d are supported.", MaxBoardSize, MaxBoardSize)},
			fmt.Sprintf("Start a new tour on the %d×%d board", DefaultBoardSize, DefaultBoardSize),
		)
	}
	total := n * n

	if len(s.Path) == 0 {
		return notStarted(
			"No moves yet! Click any square to start your knight's tour.",
			[]string{"The knight can move in an L-shape: 2 squares in one direction and 1 square perpendicular."},
			"Click any square on the board to begin",
		)
	}

	if errs := TourErrors(s.Path, n); len(errs) > 0 {
		shown := errs
		if len(shown) > maxTourErrorsShown {
			shown = shown[:maxTourErrorsShown]
		}
		fb := domain.NewFeedback("The tour has some issues that need fixing.", shown...)
		fb.Hints = []string{
			"The knight moves in an L-shape: 2 squares in one direction, 1 perpendicular",
			"Each square should be visited exactly once",
		}
		fb.NextSteps = []string{"Reset the board and try again"}
		return domain.CheckResult{
			Score:    domain.Score(40),
			Feedback: fb,
		}
	}

	visited := len(s.Path)
	if visited < total {
		progress := percent(visited, total)
		remaining := total - visited
		momentum := "Keep exploring different paths"
		if visited*2 > total {
			momentum = "You're over halfway there!"
		}
		fb := domain.NewFeedback(
			fmt.Sprintf("Good progress! You've visited %d of %d squares.", visited, total),
			fmt.Sprintf("%s remaining", plural(remaining, "square")),
			fmt.Sprintf("Current progress: %d%%", progress),
			momentum,
		)
		fb.Hints = []string{
			"Try to avoid getting stuck in corners - they have fewer escape routes",
			"Warnsdorff's rule: move to the square with the fewest onward moves",
			"If you get stuck, reset and try starting from a different position",
		}
		fb.NextSteps = []string{
			"Continue exploring the board",
			"Watch out for isolated squares that might become unreachable",
		}
		return domain.CheckResult{
			IsPartial: true,
			Score:     domain.Score(progress),
			Feedback:  fb,
		}
	}

	closed := IsClosedTour(s.Path)
	res := domain.CheckResult{
		IsCorrect:    true,
		Score:        domain.Score(100),
		Achievements: []string{TagKnightsTourMaster},
	}
	shape := "The tour is open - doesn't return to the starting square"
	if closed {
		shape = "The tour is closed - forms a complete loop back to the start!"
		res.Achievements = append(res.Achievements, TagClosedTourChampion)
	}
	summary := "Excellent! You've successfully completed a knight's tour, visiting all squares exactly once!"
	if closed {
		summary = "Outstanding! You've completed a CLOSED knight's tour - the knight can return to the starting square!"
	}
	res.Feedback = domain.NewFeedback(summary,
		fmt.Sprintf("Visited all %d squares", total),
		"All moves follow valid knight movement (L-shaped)",
		"No square visited more than once",
		shape,
	)
	if closed {
		res.Feedback.NextSteps = []string{"Try finding a different closed tour from a different starting position"}
	} else {
		res.Feedback.NextSteps = []string{"Challenge: can you find a closed tour that returns to the starting square?"}
	}
	return res
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
