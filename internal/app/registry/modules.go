package registry

import (
	"encoding/json"

	"github.com/curio-cabinet/curio/internal/app/checker"
	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Built-in Catalog ───────────────────────────────────────────────────────

// Slugs of the built-in modules.
const (
	SlugAlienEncounter      = "alien-encounter"
	SlugTapAnAnimal         = "tap-an-animal"
	SlugCuriousCalculations = "curious-calculations"
	SlugFourColorTheorem    = "four-color-theorem"
	SlugKnightsTour         = "knights-tour"
	SlugMobiusBand          = "mobius-band"
)

// FourColorMap is the board of the four-colour module: four corner regions
// around a centre that touches all of them.
var FourColorMap = checker.ColoringState{
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

// Default returns a registry holding every built-in module.
func Default() *Registry {
	r := New()
	r.MustRegister(
		alienEncounter(),
		tapAnAnimal(),
		curiousCalculations(),
		fourColorTheorem(),
		knightsTour(),
		mobiusBand(),
	)
	return r
}

func prompt(q string) domain.ReflectionPrompt { return domain.ReflectionPrompt{Question: q} }

func alienEncounter() ModuleDefinition {
	return ModuleDefinition{
		Metadata: domain.ModuleMetadata{
			ID:               "003",
			Slug:             SlugAlienEncounter,
			Title:            "Alien Encounter",
			Subtitle:         "Truth-tellers and Liars on Planet Noncomposmentis",
			Difficulty:       domain.DifficultyBeginner,
			Topics:           []string{"logic", "deduction", "puzzles"},
			EstimatedMinutes: 10,
		},
		Content: domain.ModuleContent{
			Reading: `Knights and Knaves

The Alien Encounter is a variation of the Knights and Knaves puzzles made
famous by the logician Raymond Smullyan. Every inhabitant either always tells
the truth or always lies, and you must work out who is who from what they say.

Useful principles:
  - A liar can never say "I am a liar".
  - If an assumption leads to a contradiction, the assumption is false.
  - Two speakers who make opposite claims cannot both be truthful.

Method: assume someone is truthful, derive what their statement implies,
look for a contradiction, and revise. The same reasoning underpins boolean
logic, circuit design and the elimination of suspects in detective work.`,
			ReflectionPrompts: []domain.ReflectionPrompt{
				{
					Question:    "Could there be a solution if all three were the same species?",
					Explanation: "No. Alfy and Gemma make opposite claims about Betty, so exactly one of them is telling the truth. The three aliens must be a mix of species.",
				},
				{
					Question:    `What if Betty had said "No" instead of "Yes"?`,
					Explanation: `Alfy and Gemma still disagree, so they are different species and "No" would be a lie. Betty would be Gibberish, which makes Alfy's claim true and Gemma's false: Alfy would be the only Veracitor.`,
				},
				prompt("How would you design a similar puzzle with 4 aliens?"),
				{
					Question:    `Why can't a Knave ever say "I am lying"?`,
					Explanation: "If a liar said it, the statement would be true, which a liar cannot say. If a truth-teller said it, it would be false. This is the Liar's Paradox.",
					Links: []domain.ExternalLink{
						{Title: "Knights and Knaves Puzzles", URL: "https://en.wikipedia.org/wiki/Knights_and_Knaves", Description: "Raymond Smullyan's classic puzzles"},
						{Title: "The Liar Paradox", URL: "https://en.wikipedia.org/wiki/Liar_paradox", Description: "The philosophical implications"},
					},
				},
			},
			Hints: []string{
				"Alfy and Gemma say opposite things about Betty. What does that tell you about them?",
				"Is Betty's answer about Alfy and Gemma true or false?",
				"Work through each possibility systematically and look for contradictions.",
			},
			Solutions: []string{
				"Alfy and Gemma contradict each other, so they are different species and Betty's \"Yes\" is true.",
				"Betty is therefore a Veracitor, so Gemma's statement is true and Gemma is a Veracitor.",
				"Alfy's statement is false, so Alfy is Gibberish.",
			},
		},
		Kind: domain.PuzzleTruthTeller,
		Checker: func(raw json.RawMessage) (domain.CheckResult, error) {
			a, err := decodeState[checker.Assignment](raw)
			if err != nil {
				return domain.CheckResult{}, err
			}
			return checker.CheckAlienEncounter(a), nil
		},
	}
}

func tapAnAnimal() ModuleDefinition {
	return ModuleDefinition{
		Metadata: domain.ModuleMetadata{
			ID:               "004",
			Slug:             SlugTapAnAnimal,
			Title:            "Tap-an-Animal",
			Subtitle:         "A Mathematical Magic Trick with Modular Arithmetic",
			Difficulty:       domain.DifficultyBeginner,
			Topics:           []string{"modular arithmetic", "number theory", "magic tricks"},
			EstimatedMinutes: 8,
		},
		Content: domain.ModuleContent{
			Reading: `Clock Arithmetic

Spell an animal's name while tapping clockwise around a ten-point star,
starting from Rhinoceros, and you always land on the animal you picked.
The trick is modular arithmetic: each animal sits at the point matching its
letter count modulo 10. Cat (3 letters) sits at point 3, Giraffe at 7, and
Rhinoceros (10 letters) at point 0 because 10 mod 10 = 0.

Modular arithmetic also drives RSA encryption, hash tables, ISBN and credit
card check digits, and the 12-tone musical scale.`,
			ReflectionPrompts: []domain.ReflectionPrompt{
				{
					Question:    "Why do we need animals with 10, 11 and 12 letters for positions 0, 1 and 2?",
					Explanation: "Counting wraps around after 10, so 10, 11 and 12 letters land on points 0, 1 and 2. Without such long names those points would stay empty.",
				},
				{
					Question:    "How is this similar to telling time on a clock?",
					Explanation: "Three hours after 11 o'clock is 2 o'clock because 14 mod 12 = 2. The star wraps around after 10 points the same way.",
					Links: []domain.ExternalLink{
						{Title: "Modular Arithmetic", URL: "https://en.wikipedia.org/wiki/Modular_arithmetic", Description: "Overview of modular arithmetic"},
					},
				},
				prompt("Can you create a version of this trick with 12 positions, like a clock?"),
				{
					Question:    "Why is modular arithmetic important in cryptography?",
					Explanation: "Modular exponentiation is easy to compute but hard to reverse, which gives RSA its one-way property.",
					Links: []domain.ExternalLink{
						{Title: "RSA Encryption", URL: "https://en.wikipedia.org/wiki/RSA_(cryptosystem)", Description: "How modular arithmetic secures the internet"},
					},
				},
			},
			Hints: []string{
				"Look at the number of letters in each animal's name",
				"Cat (3 letters) is at position 3, Lion (4 letters) at position 4...",
				"Count the letters in Rhinoceros, Grasshopper and Hippopotamus",
				"What happens when you count past 10 on the star?",
			},
		},
		Kind:    domain.PuzzleTapTrick,
		Checker: checkWith(checker.CheckTapTrick),
	}
}

func curiousCalculations() ModuleDefinition {
	return ModuleDefinition{
		Metadata: domain.ModuleMetadata{
			ID:               "005",
			Slug:             SlugCuriousCalculations,
			Title:            "Curious Calculations",
			Subtitle:         "Your calculator can do tricks",
			Difficulty:       domain.DifficultyBeginner,
			Topics:           []string{"number patterns", "cyclic numbers", "number theory"},
			EstimatedMinutes: 10,
		},
		Content: domain.ModuleContent{
			Reading: `The Magic of Number Patterns

Palindromic squares: squaring repunits (numbers made only of 1s) gives
palindromes that count up and back down: 11 × 11 = 121, 111 × 111 = 12,321.
The carries line up symmetrically until 111,111,111², after which they spill
over and the pattern breaks.

The cyclic number 142,857 is the repeating block of 1/7. Multiplying it by
2 to 6 rotates the same six digits; multiplying by 7 gives 999,999. Other
primes such as 17 and 19 produce cyclic numbers whose length is one less
than the prime.`,
			ReflectionPrompts: []domain.ReflectionPrompt{
				{
					Question:    "Why does the palindrome pattern eventually break down for very large repunits?",
					Explanation: "Past 111,111,111² the column sums exceed 9 and carry into neighbouring digits, destroying the symmetry.",
				},
				{
					Question:    "How is the cyclic number 142,857 related to the fraction 1/7?",
					Explanation: "1/7 = 0.142857142857... and 2/7 to 6/7 repeat the same digits starting at different positions.",
					Links: []domain.ExternalLink{
						{Title: "Cyclic Numbers", URL: "https://en.wikipedia.org/wiki/Cyclic_number", Description: "Cyclic numbers and their properties"},
					},
				},
				prompt("Can you find other numbers that create palindromes when squared?"),
			},
			Hints: []string{
				"Compare each result with the previous one",
				"For the palindromes, notice how the digits climb to a peak and come back down",
				"For 142,857, write the results in a column and compare the digits",
			},
		},
		Kind: domain.PuzzleWalkthrough,
		Checker: checkWith(func(s checker.WalkthroughState) domain.CheckResult {
			return checker.CheckWalkthrough(checker.CuriousCalculations, s)
		}),
	}
}

func fourColorTheorem() ModuleDefinition {
	return ModuleDefinition{
		Metadata: domain.ModuleMetadata{
			ID:               "010",
			Slug:             SlugFourColorTheorem,
			Title:            "The Four-Colour Theorem",
			Subtitle:         "Can every map be colored with just four colors?",
			Difficulty:       domain.DifficultyIntermediate,
			Topics:           []string{"graph theory", "topology", "proofs"},
			EstimatedMinutes: 15,
		},
		Content: domain.ModuleContent{
			Reading: `Any map drawn on a plane can be coloured with at most four colours so that
no two adjacent regions share a colour.

Francis Guthrie proposed the problem in 1852 while colouring the counties of
England. Kenneth Appel and Wolfgang Haken proved it in 1976, the first major
theorem proved with a computer: their proof checked nearly 2,000 special
configurations.`,
			ReflectionPrompts: []domain.ReflectionPrompt{
				{
					Question:    "Why might five colors always be too many for any planar map?",
					Explanation: "The theorem shows the chromatic number of every planar graph is at most 4, so a fifth colour is never needed.",
					Links: []domain.ExternalLink{
						{Title: "Four Color Theorem", URL: "https://en.wikipedia.org/wiki/Four_color_theorem", Description: "History and mathematical details"},
					},
				},
				{
					Question:    "Can you find a configuration that requires all four colors?",
					Explanation: "Four regions that each touch the other three need four colours; a centre touching a ring of an odd number of regions does too.",
				},
				prompt("What makes this theorem difficult to prove without computers?"),
				{
					Question:    "How does this relate to graph coloring problems in real life?",
					Explanation: "Exam scheduling, compiler register allocation, radio frequency assignment and Sudoku are all graph colouring problems.",
					Links: []domain.ExternalLink{
						{Title: "Applications of Graph Coloring", URL: "https://en.wikipedia.org/wiki/Graph_coloring#Applications", Description: "Real-world uses of graph coloring"},
					},
				},
			},
			Hints: []string{
				"The center region touches all four corner regions",
				"Opposite corners never touch, so they may share a colour",
				"Color the most connected region first",
			},
		},
		Kind: domain.PuzzleGraphColoring,
		Checker: func(raw json.RawMessage) (domain.CheckResult, error) {
			s, err := decodeState[checker.ColoringState](raw)
			if err != nil {
				return domain.CheckResult{}, err
			}
			if len(s.Adjacency) == 0 {
				s.Adjacency = FourColorMap.Adjacency
			}
			if len(s.RegionNames) == 0 {
				s.RegionNames = FourColorMap.RegionNames
			}
			if len(s.ColorNames) == 0 {
				s.ColorNames = FourColorMap.ColorNames
			}
			return checker.CheckColoring(s), nil
		},
	}
}

func knightsTour() ModuleDefinition {
	return ModuleDefinition{
		Metadata: domain.ModuleMetadata{
			ID:               "knights-tour",
			Slug:             SlugKnightsTour,
			Title:            "The Knight's Tour",
			Subtitle:         "Can a chess knight visit every square exactly once?",
			Difficulty:       domain.DifficultyIntermediate,
			Topics:           []string{"graph theory", "combinatorics", "chess"},
			EstimatedMinutes: 20,
		},
		Content: domain.ModuleContent{
			Reading: `Move a knight so that it lands on every square of the board exactly once.

The puzzle dates back to the 9th century and Euler studied it in 1759. A
closed tour ends one knight's move from its start, forming a loop; an open
tour does not. Each square is a vertex and each knight move an edge, so a
tour is a Hamiltonian path through that graph.`,
			ReflectionPrompts: []domain.ReflectionPrompt{
				prompt("What strategy would help you avoid getting stuck in a corner?"),
				prompt("Is it easier to start from the center or the edge of the board?"),
				prompt("How does board size affect the difficulty of finding a tour?"),
				prompt("Can you find a closed tour that returns to the starting square?"),
			},
			Hints: []string{
				"Try starting from a corner and work your way inward.",
				"Warnsdorff's rule: always move to the square with the fewest onward moves.",
				"Avoid moves that would isolate unvisited squares.",
			},
		},
		Kind:    domain.PuzzleKnightsTour,
		Checker: checkWith(checker.CheckKnightsTour),
	}
}

func mobiusBand() ModuleDefinition {
	return ModuleDefinition{
		Metadata: domain.ModuleMetadata{
			ID:               "mobius",
			Slug:             SlugMobiusBand,
			Title:            "The Möbius Band",
			Subtitle:         "A surface with only one side",
			Difficulty:       domain.DifficultyBeginner,
			Topics:           []string{"topology", "geometry", "surfaces"},
			EstimatedMinutes: 10,
		},
		Content: domain.ModuleContent{
			Reading: `The Möbius band is a surface with only one side and one boundary, found
independently by August Möbius and Johann Listing in 1858.

Give a strip of paper a half-twist and join its ends. Draw a line along the
centre and you return to where you started, on the "other side" of the
paper. Möbius-shaped conveyor belts wear evenly on both faces.`,
			ReflectionPrompts: []domain.ReflectionPrompt{
				{
					Question:    "What happens if you cut a Möbius band along its centerline?",
					Explanation: "You get a single longer band with two full twists rather than two bands. Cutting that one again gives two interlinked bands.",
					Links: []domain.ExternalLink{
						{Title: "Möbius Strip", URL: "https://en.wikipedia.org/wiki/M%C3%B6bius_strip", Description: "Mathematical description"},
					},
				},
				{
					Question:    "How is the Möbius band different from a regular loop of paper?",
					Explanation: "A plain loop has two sides and two edges; the Möbius band has one of each, which makes it non-orientable.",
					Links: []domain.ExternalLink{
						{Title: "Orientability", URL: "https://en.wikipedia.org/wiki/Orientability", Description: "Orientable and non-orientable surfaces"},
					},
				},
				{
					Question:    "What would happen if you gave the strip two half-twists instead of one?",
					Explanation: "One full twist gives a band with two sides and two edges again: an orientable twisted cylinder.",
				},
			},
			Hints: []string{
				"Make a physical Möbius band with paper.",
				`Trace your finger along the surface: you visit both "sides" without crossing an edge.`,
				"The boundary forms a single continuous loop.",
			},
		},
		Kind: domain.PuzzleExploration,
	}
}
