package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curio-cabinet/curio/internal/app/glossary"
	"github.com/curio-cabinet/curio/internal/domain"
)

func init() {
	rootCmd.AddCommand(glossaryCmd)
	glossaryCmd.Flags().StringP("search", "s", "", "Search terms and definitions")
	glossaryCmd.Flags().StringP("category", "c", "", "List one category (graph-theory, topology, number-theory, geometry, general)")
}

// ─── glossary ───────────────────────────────────────────────────────────────

var glossaryCmd = &cobra.Command{
	Use:   "glossary [TERM]",
	Short: "Look up a mathematical term",
	Args:  cobra.ArbitraryArgs,
	RunE:  runGlossary,
}

func runGlossary(cmd *cobra.Command, args []string) error {
	g := glossary.Default()
	out := cmd.OutOrStdout()

	if len(args) > 0 {
		term := strings.Join(args, " ")
		e, ok := g.Lookup(term)
		if !ok {
			return fmt.Errorf("%q: %w", term, domain.ErrTermNotFound)
		}
		fmt.Fprintf(out, "%s (%s)\n  %s\n", e.Term, e.Category, e.Definition)
		if len(e.Related) > 0 {
			fmt.Fprintf(out, "  See also: %s\n", strings.Join(e.Related, ", "))
		}
		return nil
	}

	var entries []glossary.Entry
	if c, _ := cmd.Flags().GetString("category"); c != "" {
		cat := glossary.Category(c)
		if !cat.Valid() {
			return fmt.Errorf("unknown category %q", c)
		}
		entries = g.ByCategory(cat)
	} else {
		q, _ := cmd.Flags().GetString("search")
		entries = g.Search(q)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No matching terms.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%-20s %s\n", e.Term, e.Definition)
	}
	return nil
}
