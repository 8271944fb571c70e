package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/rulebook/journal"
	"github.com/rustyeddy/rulebook/ledger"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries with their running balance",
	Long: `List journal entries in the order they were recorded, alongside the
running balance after each one.

Examples:
  rulebook list
  rulebook list --week
  rulebook list --day 2024-05-14 --org`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listWeek bool
	listDay  string
	listOrg  bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listWeek, "week", false, "only entries dated this week (Monday start)")
	listCmd.Flags().StringVar(&listDay, "day", "", "only entries dated YYYY-MM-DD")
	listCmd.Flags().BoolVar(&listOrg, "org", false, "print Org-mode blocks instead of a table")
	listCmd.MarkFlagsMutuallyExclusive("week", "day")
}

func runList(cmd *cobra.Command, args []string) error {
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

	all, err := j.ListRecords(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}
	st := ledger.Aggregate(all, p.StartingCapital, cfg.Goals.WeeklyGoal, cfg.Goals.LifetimeTarget, now())

	balances := make(map[string]float64, len(all))
	for i, r := range all {
		balances[r.ID] = st.Balances[i+1]
	}

	recs := all
	switch {
	case listWeek:
		start := st.WeekStart
		recs, err = j.ListRecordsBetween(ctx, p.ID, start, start.AddDate(0, 0, 7))
	case listDay != "":
		var start, end time.Time
		start, end, err = dayBounds(now().Location(), listDay)
		if err != nil {
			return fmt.Errorf("date: %w", err)
		}
		recs, err = j.ListRecordsBetween(ctx, p.ID, start, end)
	}
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}

	out := cmd.OutOrStdout()
	if listOrg {
		fmt.Fprintln(out, journal.FormatRecordsOrg(recs))
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DATE\tKIND\tNET\tBALANCE\tRULES\tID\t")
	for _, r := range recs {
		rules := "-"
		if !r.IsWithdrawal() {
			rules = fmt.Sprintf("%d/%d", r.RulesAdhered, ledger.ChecklistItems)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%s\t%s\t\n",
			r.Date.Format(ledger.DateLayout), r.Kind, r.Net(), balances[r.ID], rules, r.ID)
	}
	return tw.Flush()
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := ledger.ParseDate(day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return t, t.AddDate(0, 0, 1), nil
}
