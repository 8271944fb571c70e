package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Show or change the weekly goal and lifetime target",
	Long: `Goals live in the config file and are read on every command, so a
change applies to the next summary or dashboard update.

Examples:
  rulebook goals
  rulebook goals set --weekly 7500 --lifetime 250000`,
	Args: cobra.NoArgs,
	RunE: runGoalsShow,
}

var goalsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one or both goals and save the config",
	Args:  cobra.NoArgs,
	RunE:  runGoalsSet,
}

var (
	goalsWeekly   float64
	goalsLifetime float64
)

func init() {
	rootCmd.AddCommand(goalsCmd)
	goalsCmd.AddCommand(goalsSetCmd)

	goalsSetCmd.Flags().Float64Var(&goalsWeekly, "weekly", 0, "weekly goal")
	goalsSetCmd.Flags().Float64Var(&goalsLifetime, "lifetime", 0, "lifetime target")
	goalsSetCmd.MarkFlagsOneRequired("weekly", "lifetime")
}

func runGoalsShow(cmd *cobra.Command, args []string) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Weekly goal:     %.2f\n", cfg.Goals.WeeklyGoal)
	fmt.Fprintf(cmd.OutOrStdout(), "Lifetime target: %.2f\n", cfg.Goals.LifetimeTarget)
	return nil
}

func runGoalsSet(cmd *cobra.Command, args []string) error {
	weekly, lifetime := cfg.Goals.WeeklyGoal, cfg.Goals.LifetimeTarget
	if cmd.Flags().Changed("weekly") {
		weekly = goalsWeekly
	}
	if cmd.Flags().Changed("lifetime") {
		lifetime = goalsLifetime
	}
	if err := cfg.SetGoals(weekly, lifetime); err != nil {
		return err
	}
	if err := cfg.SaveToFile(cfgFile); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	log.Info().Float64("weekly", weekly).Float64("lifetime", lifetime).Msg("goals updated")
	return runGoalsShow(cmd, args)
}
