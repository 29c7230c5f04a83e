package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curio-cabinet/curio/internal/app/progression"
	"github.com/curio-cabinet/curio/internal/domain"
)

func init() {
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(visitCmd)
	progressCmd.AddCommand(progressResetCmd)
	progressCmd.AddCommand(progressHistoryCmd)
	progressCmd.AddCommand(progressCompleteCmd)

	progressCmd.Flags().Bool("json", false, "Print the dashboard summary as JSON")
	progressResetCmd.Flags().Bool("yes", false, "Confirm the reset")
	progressHistoryCmd.Flags().IntP("limit", "n", 20, "Number of entries")
	progressCompleteCmd.Flags().Int("hints", 0, "Hints revealed during the attempt")
	progressCompleteCmd.Flags().Int64("seconds", 0, "Time spent in seconds")
}

// ─── progress ───────────────────────────────────────────────────────────────

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show XP, level, streak and achievements",
	Args:  cobra.NoArgs,
	RunE:  runProgress,
}

func runProgress(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	eng, err := a.engine(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	sum := eng.Summary()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, sum)
	}

	st := sum.Stats
	fmt.Fprintf(out, "Level %d · %d XP\n", st.Level, st.TotalXP)
	fmt.Fprintf(out, "  %s %.0f%% to level %d (%d XP)\n", progressBar(sum.LevelProgress, 20), sum.LevelProgress, st.Level+1, sum.NextLevelXP)
	fmt.Fprintf(out, "Modules:      %d / %d completed (%d perfect)\n", st.ModulesCompleted, sum.ModulesTotal, st.PerfectScores)
	fmt.Fprintf(out, "Streak:       %d days (longest %d, %d active days)\n", sum.Streak.CurrentStreak, sum.Streak.LongestStreak, sum.Streak.TotalDaysActive)
	fmt.Fprintf(out, "Time spent:   %s\n", formatSeconds(st.TotalTimeSpent))
	fmt.Fprintf(out, "Achievements: %d / %d\n", st.AchievementsUnlocked, len(eng.Achievements()))
	for _, ach := range sum.RecentAchievements {
		fmt.Fprintf(out, "  %s %s (%s)\n", ach.Icon, ach.Title, ach.Rarity)
	}

	if a.sqlDB != nil {
		if ledger, err := a.sqlDB.XPTotal(cmd.Context()); err == nil && ledger != st.TotalXP {
			fmt.Fprintf(out, "\n⚠️  XP ledger sums to %d, progress document says %d\n", ledger, st.TotalXP)
		}
	}
	return nil
}

func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func formatSeconds(s int64) string {
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	h, m := s/3600, (s%3600)/60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}

// ─── progress reset ─────────────────────────────────────────────────────────

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all progress",
	Args:  cobra.NoArgs,
	RunE:  runProgressReset,
}

func runProgressReset(cmd *cobra.Command, args []string) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return errors.New("this erases all XP, streaks and achievements; re-run with --yes")
	}
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	eng, err := a.engine(cmd.Context())
	if err != nil {
		return err
	}
	if err := eng.ResetProgress(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
	return nil
}

// ─── progress history ───────────────────────────────────────────────────────

var progressHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent XP awards",
	Args:  cobra.NoArgs,
	RunE:  runProgressHistory,
}

func runProgressHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	eng, err := a.engine(cmd.Context())
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	events, err := eng.XPHistory(cmd.Context(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(out, "No XP earned yet.")
		return nil
	}
	for _, ev := range events {
		fmt.Fprintf(out, "%s  +%-5d %-18s %-20s total %d\n",
			ev.At.Local().Format("2006-01-02 15:04"), ev.Amount, ev.Source, ev.Ref, ev.TotalAfter)
	}
	return nil
}

// ─── progress complete ──────────────────────────────────────────────────────

var progressCompleteCmd = &cobra.Command{
	Use:   "complete SLUG",
	Short: "Record a module completion",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgressComplete,
}

func runProgressComplete(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	if _, ok := a.reg.Get(args[0]); !ok {
		return fmt.Errorf("%q: %w", args[0], domain.ErrModuleNotFound)
	}
	eng, err := a.engine(cmd.Context())
	if err != nil {
		return err
	}

	hints, _ := cmd.Flags().GetInt("hints")
	seconds, _ := cmd.Flags().GetInt64("seconds")
	res, err := eng.CompleteModule(cmd.Context(), args[0], hints, seconds)
	if err != nil {
		return err
	}
	printCompletion(cmd.OutOrStdout(), res)
	return nil
}

func printCompletion(w io.Writer, res progression.CompletionOutcome) {
	if res.FirstCompletion {
		fmt.Fprintf(w, "🎉 Completed %s: +%d XP\n", res.ModuleID, res.XPAwarded)
	} else if res.XPAwarded > 0 {
		fmt.Fprintf(w, "Improved %s: +%d XP\n", res.ModuleID, res.XPAwarded)
	} else {
		fmt.Fprintf(w, "Completed %s again (best %d XP kept)\n", res.ModuleID, res.Progress.XPEarned)
	}
	if res.LeveledUp() {
		fmt.Fprintf(w, "⬆️  Level %d!\n", res.LevelAfter)
	}
	printUnlocked(w, res.Unlocked)
}

func printUnlocked(w io.Writer, unlocked []domain.Achievement) {
	for _, a := range unlocked {
		fmt.Fprintf(w, "%s Achievement unlocked: %s (+%d XP)\n", a.Icon, a.Title, a.XPReward)
	}
}

// ─── visit ──────────────────────────────────────────────────────────────────

var visitCmd = &cobra.Command{
	Use:   "visit",
	Short: "Record today's visit for the daily streak",
	Args:  cobra.NoArgs,
	RunE:  runVisit,
}

func runVisit(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	eng, err := a.engine(cmd.Context())
	if err != nil {
		return err
	}

	res, err := eng.CheckAndUpdateStreak(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch res.Change {
	case progression.StreakExtended:
		fmt.Fprintf(out, "🔥 %d-day streak!\n", res.Streak.CurrentStreak)
	case progression.StreakReset:
		fmt.Fprintf(out, "Day 1 of a new streak (longest %d).\n", res.Streak.LongestStreak)
	default:
		fmt.Fprintf(out, "Already counted today: %d-day streak.\n", res.Streak.CurrentStreak)
	}
	printUnlocked(out, res.Unlocked)
	return nil
}
