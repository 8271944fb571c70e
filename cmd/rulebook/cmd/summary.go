package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/rulebook/journal"
	"github.com/rustyeddy/rulebook/ledger"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show balance, win rate, discipline and goal progress",
	Long: `Aggregate the journal and print the ledger summary.

Examples:
  rulebook summary
  rulebook summary --org --output ledger.org --chart balance.png`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

var (
	summaryOrg    bool
	summaryOutput string
	summaryChart  string
	summaryRecent int
)

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().BoolVar(&summaryOrg, "org", false, "render an Org-mode report")
	summaryCmd.Flags().StringVarP(&summaryOutput, "output", "o", "", "write the Org report to a file")
	summaryCmd.Flags().StringVar(&summaryChart, "chart", "", "chart image to link from the Org report")
	summaryCmd.Flags().IntVar(&summaryRecent, "recent", 5, "recent entries to include in the Org report")
}

func runSummary(cmd *cobra.Command, args []string) error {
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
	recs, err := j.ListRecords(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}

	at := now()
	st := ledger.Aggregate(recs, p.StartingCapital, cfg.Goals.WeeklyGoal, cfg.Goals.LifetimeTarget, at)
	log.Debug().Int("records", st.RecordCount).Msg("ledger aggregated")

	if summaryOrg || summaryOutput != "" {
		s := journal.Summary{
			Name:      p.Name,
			Generated: at,
			State:     st,
			Recent:    recent(recs, summaryRecent),
			ChartPNG:  summaryChart,
		}
		if summaryOutput != "" {
			if err := journal.WriteSummaryOrg(summaryOutput, s); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", summaryOutput)
			return nil
		}
		out, err := journal.FormatSummaryOrg(s)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", p.Name)
	fmt.Fprintf(out, "  Starting capital: %12.2f\n", st.StartingCapital)
	fmt.Fprintf(out, "  Balance:          %12.2f\n", st.Balance)
	fmt.Fprintf(out, "  Net P&L:          %12.2f  (%d trades, %d units)\n", st.NetTotal, st.TradeCount, st.TotalTradeUnits)
	fmt.Fprintf(out, "  Withdrawn:        %12.2f  (%d withdrawals)\n", st.TotalWithdrawn, st.WithdrawalCount)
	fmt.Fprintf(out, "  Brokerage / tax:  %12.2f / %.2f\n", st.TotalBrokerage, st.TotalTax)
	fmt.Fprintf(out, "  Win rate:         %11.1f%%\n", st.WinRate*100)
	fmt.Fprintf(out, "  Discipline:       %11.1f%%\n", st.DisciplineScore)
	fmt.Fprintf(out, "  This week:        %12.2f  %5.1f%% of %.2f (since %s)\n",
		st.WeeklyNet, st.WeeklyProgressPct, st.WeeklyGoal, st.WeekStart.Format(ledger.DateLayout))
	fmt.Fprintf(out, "  Lifetime:         %12.2f  %5.1f%% of %.2f\n",
		st.NetTotal, st.LifetimeProgressPct, st.LifetimeTarget)
	return nil
}

// recent returns the last n records, newest first.
func recent(recs []ledger.TradeRecord, n int) []ledger.TradeRecord {
	if n <= 0 {
		return nil
	}
	n = min(n, len(recs))
	out := make([]ledger.TradeRecord, 0, n)
	for i := len(recs) - 1; i >= len(recs)-n; i-- {
		out = append(out, recs[i])
	}
	return out
}
