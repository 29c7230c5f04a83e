package checker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Tap-an-Animal Trick ────────────────────────────────────────────────────
// Ten animals sit on the points of a star. Starting at Rhinoceros (point 0)
// the learner taps clockwise once per letter of the chosen animal's name and
// lands on that animal, because each animal sits at its letter count mod 10.

// StarPoints is the number of points on the star.
const StarPoints = 10

// Animal is one point of the star.
type Animal struct {
	Name     string `json:"name"`
	Emoji    string `json:"emoji"`
	Position int    `json:"position"`
}

// StarAnimals in clockwise order from the starting point.
var StarAnimals = []Animal{
	{"Rhinoceros", "🦏", 0},
	{"Grasshopper", "🦗", 1},
	{"Hippopotamus", "🦛", 2},
	{"Cat", "🐱", 3},
	{"Lion", "🦁", 4},
	{"Zebra", "🦓", 5},
	{"Monkey", "🐒", 6},
	{"Giraffe", "🦒", 7},
	{"Kangaroo", "🦘", 8},
	{"Crocodile", "🐊", 9},
}

// TapState is the learner's pick and the number of taps made.
// Taps == 0 spells the name, one tap per letter.
type TapState struct {
	Animal string `json:"animal"`
	Taps   int    `json:"taps"`
}

// LetterCount counts the letters of name, ignoring spaces and punctuation.
func LetterCount(name string) int {
	n := 0
	for _, r := range name {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func findAnimal(name string) (Animal, bool) {
	for _, a := range StarAnimals {
		if strings.EqualFold(a.Name, strings.TrimSpace(name)) {
			return a, true
		}
	}
	return Animal{}, false
}

// CheckTapTrick grades one performance of the trick.
func CheckTapTrick(s TapState) domain.CheckResult {
	if strings.TrimSpace(s.Animal) == "" {
		return notStarted(
			"Choose any animal on the star to begin the trick.",
			[]string{"The trick spells out the animal's name while tapping around the star."},
			"Pick an animal",
		)
	}
	animal, ok := findAnimal(s.Animal)
	if !ok {
		return notStarted(
			fmt.Sprintf("%q isn't on the star. Choose one of the ten animals shown.", s.Animal),
			[]string{},
			"Pick an animal from the star",
		)
	}

	taps := s.Taps
	if taps <= 0 {
		taps = LetterCount(animal.Name)
	}
	final := taps % StarPoints

	if final == animal.Position {
		fb := domain.NewFeedback(
			fmt.Sprintf("Amazing! The trick worked perfectly! You landed on %s %s!", animal.Emoji, animal.Name),
			fmt.Sprintf("%s has %d letters", animal.Name, LetterCount(animal.Name)),
			fmt.Sprintf("Starting from Rhinoceros (position 0) and tapping %d times brings you to position %d", taps, final),
			"Each animal's position matches the number of letters in its name (modulo 10)",
			"This is modular arithmetic - a fundamental idea in number theory!",
		)
		fb.NextSteps = []string{
			"Try another animal to see the pattern",
			"Why do positions 0, 1 and 2 hold 10, 11 and 12-letter names?",
		}
		return domain.CheckResult{
			IsCorrect:    true,
			Score:        domain.Score(100),
			Feedback:     fb,
			Achievements: []string{TagMindReader},
		}
	}

	landed := StarAnimals[final]
	return domain.CheckResult{
		Feedback: domain.NewFeedback(
			fmt.Sprintf("Hmm, %d taps landed on %s instead of %s.", taps, landed.Name, animal.Name),
			"Make sure you're starting from Rhinoceros and moving clockwise",
			"Count one tap for each letter in the animal's name",
		),
	}
}
