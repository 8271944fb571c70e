package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var capitalCmd = &cobra.Command{
	Use:   "capital",
	Short: "Change the starting capital or reset the account",
	Long: `Both subcommands re-verify your password before touching the account.

Examples:
  rulebook capital set 25000
  rulebook capital reset --yes`,
}

var capitalSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Change the starting capital",
	Args:  cobra.ExactArgs(1),
	RunE:  runCapitalSet,
}

var capitalResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every journal entry",
	Long: `Permanently remove all trades and withdrawals. The profile and its
starting capital are kept.`,
	Args: cobra.NoArgs,
	RunE: runCapitalReset,
}

var capitalResetYes bool

func init() {
	rootCmd.AddCommand(capitalCmd)
	capitalCmd.AddCommand(capitalSetCmd)
	capitalCmd.AddCommand(capitalResetCmd)

	capitalCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "password (default: $RULEBOOK_PASSWORD or prompt)")
	capitalResetCmd.Flags().BoolVarP(&capitalResetYes, "yes", "y", false, "do not ask for confirmation")
}

func runCapitalSet(cmd *cobra.Command, args []string) error {
	amount, err := requiredAmount("amount", args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	p, err := currentProfile(ctx, j)
	if err != nil {
		return err
	}
	pw, err := readPassword(cmd)
	if err != nil {
		return err
	}
	if err := j.UpdateStartingCapital(ctx, p.ID, pw, amount); err != nil {
		return fmt.Errorf("update capital: %w", err)
	}

	log.Info().Str("user", p.ID).Float64("capital", amount).Msg("starting capital updated")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Starting capital %.2f → %.2f\n", p.StartingCapital, amount)
	return nil
}

func runCapitalReset(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	p, err := currentProfile(ctx, j)
	if err != nil {
		return err
	}
	if !confirm(cmd, capitalResetYes, "Delete ALL entries for "+p.Email+"?") {
		return fmt.Errorf("aborted")
	}
	pw, err := readPassword(cmd)
	if err != nil {
		return err
	}

	n, err := j.ResetRecords(ctx, p.ID, pw)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	log.Info().Str("user", p.ID).Int64("deleted", n).Msg("account reset")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d entries; balance is back to %.2f\n", n, p.StartingCapital)
	return nil
}
