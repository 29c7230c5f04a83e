package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/curio-cabinet/curio/internal/app/registry"
	"github.com/curio-cabinet/curio/internal/domain"
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringP("state", "s", "", "Puzzle state as JSON")
	checkCmd.Flags().StringP("file", "f", "", "Read puzzle state from a file ('-' for stdin)")
	checkCmd.Flags().Bool("json", false, "Print the raw check result")
}

// ─── check ──────────────────────────────────────────────────────────────────

var checkCmd = &cobra.Command{
	Use:   "check SLUG",
	Short: "Grade a puzzle attempt",
	Long: `Grade a puzzle attempt and print tiered feedback.

Examples:
  curio check four-color-theorem -s '{"colors":{"0":0,"1":1,"2":1,"3":0,"4":2}}'
  curio check alien-encounter -s '{"alfy":"liar","betty":"truth-teller","gemma":"truth-teller"}'
  curio check knights-tour -f tour.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// errIncorrect makes the command exit non-zero without printing usage.
var errIncorrect = errors.New("attempt is not correct yet")

func runCheck(cmd *cobra.Command, args []string) error {
	raw, err := readState(cmd)
	if err != nil {
		return err
	}

	result, err := registry.Default().Check(args[0], raw)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := writeJSON(out, result); err != nil {
			return err
		}
	} else {
		printResult(out, result)
	}
	if !result.IsCorrect {
		return errIncorrect
	}
	return nil
}

func readState(cmd *cobra.Command) (json.RawMessage, error) {
	state, _ := cmd.Flags().GetString("state")
	file, _ := cmd.Flags().GetString("file")

	switch {
	case state != "" && file != "":
		return nil, errors.New("use either --state or --file, not both")
	case state != "":
		return json.RawMessage(state), nil
	case file == "-":
		return io.ReadAll(cmd.InOrStdin())
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read state: %w", err)
		}
		return data, nil
	}
	return nil, nil
}

func printResult(w io.Writer, r domain.CheckResult) {
	mark := "✗"
	switch {
	case r.IsCorrect:
		mark = "✓"
	case r.IsPartial:
		mark = "…"
	}
	fmt.Fprintf(w, "%s %s\n", mark, r.Feedback.Summary)
	if r.Score != nil {
		fmt.Fprintf(w, "  Score: %d/100\n", *r.Score)
	}
	for _, d := range r.Feedback.Details {
		fmt.Fprintf(w, "  %s\n", d)
	}
	if len(r.Feedback.Hints) > 0 {
		fmt.Fprintln(w, "\nHints:")
		for _, h := range r.Feedback.Hints {
			fmt.Fprintf(w, "  • %s\n", h)
		}
	}
	if len(r.Feedback.NextSteps) > 0 {
		fmt.Fprintln(w, "\nNext:")
		for _, s := range r.Feedback.NextSteps {
			fmt.Fprintf(w, "  → %s\n", s)
		}
	}
	if len(r.Achievements) > 0 {
		fmt.Fprintf(w, "\nEarned: %v\n", r.Achievements)
	}
}
