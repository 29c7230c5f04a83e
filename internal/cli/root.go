// Package cli implements the curio command line.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "curio",
	Short: "A cabinet of mathematical curiosities",
	Long: `curio serves interactive mathematical puzzles with automated feedback,
and tracks your progress through XP, levels, daily streaks and achievements.

Start the API with 'curio serve', or explore from the terminal:
  curio modules                 list the puzzles
  curio check knights-tour -f tour.json
  curio progress                show XP, level and streak`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.curio/config.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log engine activity to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
