package cmd

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/rulebook/journal"
	"github.com/rustyeddy/rulebook/ledger"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Record a trade outcome",
	Long: `Record the outcome of one or more trades taken on a day.

The rules checklist counts how many of the three discipline rules were
followed (0-3). Brokerage, tax and quantity may be left blank.

Example:
  rulebook trade --date 2024-05-14 --pl 500 --brokerage 10 --tax 5 --qty 2 --rules 3`,
	Args: cobra.NoArgs,
	RunE: runTrade,
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Record a capital withdrawal",
	Long: `Record capital taken out of the account. Withdrawals reduce the balance
but are not counted as trades.

Example:
  rulebook withdraw --date 2024-05-31 --amount 2000 --notes "monthly payout"`,
	Args: cobra.NoArgs,
	RunE: runWithdraw,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a journal entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var (
	entryDate      string
	entryPL        string
	entryBrokerage string
	entryTax       string
	entryQty       string
	entryRules     string
	entryNotes     string
	withdrawAmount string
	deleteYes      bool
)

func init() {
	rootCmd.AddCommand(tradeCmd)
	rootCmd.AddCommand(withdrawCmd)
	rootCmd.AddCommand(deleteCmd)

	for _, c := range []*cobra.Command{tradeCmd, withdrawCmd} {
		c.Flags().StringVar(&entryDate, "date", "", "entry date YYYY-MM-DD (default today)")
		c.Flags().StringVar(&entryNotes, "notes", "", "free-text notes")
	}
	tradeCmd.Flags().StringVar(&entryPL, "pl", "", "gross profit/loss (required)")
	tradeCmd.Flags().StringVar(&entryBrokerage, "brokerage", "", "brokerage paid")
	tradeCmd.Flags().StringVar(&entryTax, "tax", "", "tax paid")
	tradeCmd.Flags().StringVar(&entryQty, "qty", "", "number of trades (default 1)")
	tradeCmd.Flags().StringVar(&entryRules, "rules", "", "rules followed, 0-3")
	tradeCmd.MarkFlagRequired("pl")

	withdrawCmd.Flags().StringVar(&withdrawAmount, "amount", "", "amount withdrawn (required)")
	withdrawCmd.MarkFlagRequired("amount")

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "do not ask for confirmation")
}

func runTrade(cmd *cobra.Command, args []string) error {
	pl, err := requiredAmount("pl", entryPL)
	if err != nil {
		return err
	}
	day, err := entryDay()
	if err != nil {
		return err
	}

	rec := ledger.TradeRecord{
		Date:         day,
		GrossPL:      pl,
		Brokerage:    ledger.ParseAmount(entryBrokerage),
		Tax:          ledger.ParseAmount(entryTax),
		Quantity:     ledger.ParseCount(entryQty),
		RulesAdhered: ledger.ParseCount(entryRules),
		Kind:         ledger.KindTrade,
		Notes:        entryNotes,
	}
	return saveEntry(cmd, rec)
}

func runWithdraw(cmd *cobra.Command, args []string) error {
	amount, err := requiredAmount("amount", withdrawAmount)
	if err != nil {
		return err
	}
	day, err := entryDay()
	if err != nil {
		return err
	}
	return saveEntry(cmd, ledger.NewWithdrawal(day, amount, entryNotes))
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	rec, err := j.GetRecord(ctx, args[0])
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if rec.UserID != p.ID {
		return fmt.Errorf("delete: record %q: %w", args[0], journal.ErrNotFound)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s net %.2f\n",
		rec.Date.Format(ledger.DateLayout), rec.Kind, rec.Net())

	if !confirm(cmd, deleteYes, "Confirm: Delete this entry?") {
		return fmt.Errorf("aborted")
	}
	if err := j.DeleteRecord(ctx, p.ID, args[0]); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	log.Info().Str("user", p.ID).Str("record", args[0]).Msg("entry deleted")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", args[0])
	return nil
}

func saveEntry(cmd *cobra.Command, rec ledger.TradeRecord) error {
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

	saved, err := j.AddRecord(ctx, rec.WithUser(p.ID))
	if err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	log.Info().Str("user", p.ID).Str("record", saved.ID).Str("kind", saved.Kind.String()).Msg("entry saved")

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s %s net %.2f (%s)\n",
		strings.ToLower(saved.Kind.String()), saved.Date.Format(ledger.DateLayout), saved.Net(), saved.ID)
	return nil
}

// entryDay parses --date, defaulting to today.
func entryDay() (time.Time, error) {
	t := now()
	if entryDate == "" {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
	}
	day, err := ledger.ParseDate(entryDate, t.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
	}
	return day, nil
}

// requiredAmount parses a field that must hold a real number.
func requiredAmount(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("--%s must be a number", name)
	}
	return v, nil
}
