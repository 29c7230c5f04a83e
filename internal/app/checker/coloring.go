package checker

import (
	"fmt"
	"sort"

	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Graph Coloring ─────────────────────────────────────────────────────────

// maxConflictsShown caps how many conflicting pairs are listed.
const maxConflictsShown = 3

// ColoringState is a partial map coloring.
// Colors maps region → color index; a missing or negative index is uncolored.
type ColoringState struct {
	Colors      map[int]int    `json:"colors"`
	Adjacency   map[int][]int  `json:"adjacency"`
	RegionNames map[int]string `json:"region_names,omitempty"`
	ColorNames  []string       `json:"color_names,omitempty"`
}

func (s ColoringState) regions() []int {
	seen := make(map[int]struct{})
	for r, ns := range s.Adjacency {
		seen[r] = struct{}{}
		for _, n := range ns {
			seen[n] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

func (s ColoringState) color(region int) (int, bool) {
	c, ok := s.Colors[region]
	if !ok || c < 0 {
		return 0, false
	}
	return c, true
}

func (s ColoringState) regionName(region int) string {
	if name, ok := s.RegionNames[region]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Region %d", region)
}

func (s ColoringState) colorName(color int) string {
	if color >= 0 && color < len(s.ColorNames) {
		return s.ColorNames[color]
	}
	return fmt.Sprintf("color %d", color)
}

// CheckColoring grades a map coloring against its adjacency map.
func CheckColoring(s ColoringState) domain.CheckResult {
	regions := s.regions()
	total := len(regions)

	colored := 0
	for _, r := range regions {
		if _, ok := s.color(r); ok {
			colored++
		}
	}

	if total == 0 || colored == 0 {
		return notStarted(
			"No regions colored yet! Click a region to give it a color.",
			[]string{"Adjacent regions must end up with different colors."},
			"Color any region to begin",
		)
	}

	if colored < total {
		fb := domain.NewFeedback(
			fmt.Sprintf("You've colored %d out of %d regions. Color all regions to complete the puzzle!", colored, total),
			fmt.Sprintf("%d region(s) still need to be colored.", total-colored),
			"Click on the gray regions to assign them a color.",
		)
		fb.NextSteps = []string{
			"Color all remaining regions",
			"Make sure no two adjacent regions share the same color",
		}
		return domain.CheckResult{
			IsPartial: true,
			Score:     domain.Score(percent(colored, total)),
			Feedback:  fb,
		}
	}

	conflicts := s.conflicts(regions)
	if len(conflicts) > 0 {
		shown := conflicts
		if len(shown) > maxConflictsShown {
			shown = shown[:maxConflictsShown]
		}
		details := append([]string{fmt.Sprintf("Found %s:", plural(len(conflicts), "conflict"))}, shown...)
		fb := domain.NewFeedback("Not quite! Some adjacent regions share the same color.", details...)
		fb.Hints = []string{
			"Start with the region that touches the most neighbours",
			"Give each neighbour of that region a different color",
		}
		fb.NextSteps = []string{"Recolor one region from each conflicting pair"}
		return domain.CheckResult{
			Score:    domain.Score(50),
			Feedback: fb,
		}
	}

	distinct := make(map[int]struct{})
	for _, r := range regions {
		c, _ := s.color(r)
		distinct[c] = struct{}{}
	}
	used := len(distinct)

	res := domain.CheckResult{IsCorrect: true, Score: domain.Score(100)}
	if used == 4 {
		res.Feedback = domain.NewFeedback(
			"Perfect! You've successfully colored the map using all 4 colors with no conflicts!",
			"All regions are colored",
			"No two adjacent regions share the same color",
			"You used all 4 available colors - this is the maximum needed!",
		)
		res.Feedback.NextSteps = []string{
			"Try to solve it using only 3 colors - is it possible?",
			"Consider why this particular configuration might need all 4 colors",
		}
		res.Achievements = []string{TagFourColorMaster, TagNoConflicts}
		return res
	}

	res.Feedback = domain.NewFeedback(
		fmt.Sprintf("Great job! You colored the map correctly using %s.", plural(used, "color")),
		"All regions are colored",
		"No two adjacent regions share the same color",
		fmt.Sprintf("You used %s - four colors always suffice for a planar map, but fewer can sometimes work!", plural(used, "color")),
	)
	res.Feedback.NextSteps = []string{"Can you find a different arrangement that requires all 4 colors?"}
	res.Achievements = []string{TagValidColoring}
	return res
}

// conflicts lists every adjacent pair sharing a color, each unordered pair once.
func (s ColoringState) conflicts(regions []int) []string {
	type pair struct{ a, b int }
	seen := make(map[pair]struct{})
	var out []string
	for _, r := range regions {
		c, ok := s.color(r)
		if !ok {
			continue
		}
		for _, n := range s.Adjacency[r] {
			nc, ok := s.color(n)
			if !ok || nc != c || n == r {
				continue
			}
			p := pair{r, n}
			if n < r {
				p = pair{n, r}
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, fmt.Sprintf("%s and %s are both %s", s.regionName(p.a), s.regionName(p.b), s.colorName(c)))
		}
	}
	return out
}
