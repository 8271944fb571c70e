package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/rulebook/chart"
	"github.com/rustyeddy/rulebook/journal"
	"github.com/rustyeddy/rulebook/ledger"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal as CSV",
	Long: `Write every entry as Date,P&L,Brokerage,Tax,Net P&L rows.

Examples:
  rulebook export
  rulebook export -o - > report.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the running balance as a PNG",
	Long: `Draw the equity curve from the starting capital through every entry.

Example:
  rulebook chart -o balance.png`,
	Args: cobra.NoArgs,
	RunE: runChart,
}

var (
	exportOutput string
	chartOutput  string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(chartCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, - for stdout (default RuleBook_Report_<date>.csv)")
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "balance.png", "output PNG path")
}

func loadRecords(ctx context.Context) (journal.Profile, []ledger.TradeRecord, error) {
	j, err := openJournal()
	if err != nil {
		return journal.Profile{}, nil, err
	}
	defer j.Close()

	p, err := currentProfile(ctx, j)
	if err != nil {
		return journal.Profile{}, nil, err
	}
	recs, err := j.ListRecords(ctx, p.ID)
	if err != nil {
		return journal.Profile{}, nil, fmt.Errorf("query entries: %w", err)
	}
	return p, recs, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	_, recs, err := loadRecords(context.Background())
	if err != nil {
		return err
	}

	if exportOutput == "-" {
		return journal.WriteCSV(cmd.OutOrStdout(), recs)
	}

	path := exportOutput
	if path == "" {
		path = journal.ExportFileName(now())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := journal.WriteCSV(f, recs); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Info().Str("path", path).Int("records", len(recs)).Msg("exported")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d entries to %s\n", len(recs), path)
	return nil
}

func runChart(cmd *cobra.Command, args []string) error {
	p, recs, err := loadRecords(context.Background())
	if err != nil {
		return err
	}

	st := ledger.Aggregate(recs, p.StartingCapital, cfg.Goals.WeeklyGoal, cfg.Goals.LifetimeTarget, now())
	png, err := chart.RenderBalance(st.Balances)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := os.WriteFile(chartOutput, png, 0644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", chartOutput)
	return nil
}
