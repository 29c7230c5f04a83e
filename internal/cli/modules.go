package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/curio-cabinet/curio/internal/app/registry"
	"github.com/curio-cabinet/curio/internal/domain"
)

func init() {
	rootCmd.AddCommand(modulesCmd)
	modulesCmd.Flags().String("difficulty", "", "Only modules of this difficulty (beginner, intermediate, advanced)")
	modulesCmd.Flags().String("topic", "", "Only modules tagged with this topic")
	modulesCmd.Flags().Bool("json", false, "Print JSON")
}

// ─── modules ────────────────────────────────────────────────────────────────

var modulesCmd = &cobra.Command{
	Use:   "modules [SLUG]",
	Short: "List puzzles, or show one in full",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runModules,
}

func runModules(cmd *cobra.Command, args []string) error {
	reg := registry.Default()
	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")

	if len(args) == 1 {
		def, ok := reg.Get(args[0])
		if !ok {
			return fmt.Errorf("%q: %w", args[0], domain.ErrModuleNotFound)
		}
		if asJSON {
			return writeJSON(out, def)
		}
		printModule(out, def)
		return nil
	}

	d, _ := cmd.Flags().GetString("difficulty")
	difficulty := domain.Difficulty(d)
	if difficulty != "" && !difficulty.Valid() {
		return fmt.Errorf("unknown difficulty %q", d)
	}
	topic, _ := cmd.Flags().GetString("topic")
	defs := reg.Filter(difficulty, topic)

	if asJSON {
		metas := make([]domain.ModuleMetadata, 0, len(defs))
		for _, def := range defs {
			metas = append(metas, def.Metadata)
		}
		return writeJSON(out, metas)
	}
	if len(defs) == 0 {
		fmt.Fprintln(out, "No modules match.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tTITLE\tDIFFICULTY\tMINUTES\tCHECKER")
	for _, def := range defs {
		check := "yes"
		if !def.Checkable() {
			check = "explore"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			def.Metadata.Slug, def.Metadata.Title, def.Metadata.Difficulty, def.Metadata.EstimatedMinutes, check)
	}
	return tw.Flush()
}

func printModule(w io.Writer, def registry.ModuleDefinition) {
	m := def.Metadata
	fmt.Fprintf(w, "%s  (%s)\n", m.Title, m.Slug)
	if m.Subtitle != "" {
		fmt.Fprintf(w, "%s\n", m.Subtitle)
	}
	fmt.Fprintf(w, "\nDifficulty: %s · ~%d min · %s\n", m.Difficulty, m.EstimatedMinutes, strings.Join(m.Topics, ", "))
	fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(def.Content.Reading))

	if len(def.Content.ReflectionPrompts) > 0 {
		fmt.Fprintln(w, "\nThink about it:")
		for _, p := range def.Content.ReflectionPrompts {
			fmt.Fprintf(w, "  • %s\n", p.Question)
		}
	}
	if !def.Checkable() {
		fmt.Fprintln(w, "\nThis module is for exploration; there is nothing to check.")
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
