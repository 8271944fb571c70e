package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/rulebook/config"
	"github.com/rustyeddy/rulebook/internal/logging"
	"github.com/rustyeddy/rulebook/journal"
)

var rootCmd = &cobra.Command{
	Use:   "rulebook",
	Short: "A personal trading journal with goal and discipline tracking",
	Long: `RuleBook records trade outcomes and capital withdrawals and keeps a
running ledger of your account.

It provides:
  - A journal of trades (P&L, brokerage, tax, rule checklist) and withdrawals
  - Running balance, win rate and discipline score
  - Weekly goal and lifetime target progress
  - CSV export, Org-mode summaries and an equity chart
  - A live WebSocket feed of the ledger for dashboards`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile  string
	dbPath   string
	email    string
	logLevel string
	password string

	cfg   *config.Config
	log   zerolog.Logger
	stdin *bufio.Reader
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "rulebook.yaml", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "path to SQLite journal DB (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&email, "email", "e", "", "profile email (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.Journal.DBPath = dbPath
	}
	if email != "" {
		cfg.User.Email = email
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	log = logging.New(cfg.Logging.Level, cfg.Logging.NoColor)
	return nil
}

func openJournal() (*journal.SQLite, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	j, err := journal.NewSQLite(cfg.Journal.DBPath, journal.WithLocation(loc), journal.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	log.Debug().Str("db", cfg.Journal.DBPath).Msg("journal opened")
	return j, nil
}

func currentProfile(ctx context.Context, j *journal.SQLite) (journal.Profile, error) {
	if cfg.User.Email == "" {
		return journal.Profile{}, fmt.Errorf("no profile selected: pass --email or set user.email in %s", cfgFile)
	}
	p, err := j.ProfileByEmail(ctx, cfg.User.Email)
	if err != nil {
		return journal.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

func now() time.Time {
	loc, err := cfg.Location()
	if err != nil {
		return time.Now()
	}
	return time.Now().In(loc)
}

// readPassword takes --password, then $RULEBOOK_PASSWORD, then a line
// from stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	if password != "" {
		return password, nil
	}
	if p := os.Getenv("RULEBOOK_PASSWORD"); p != "" {
		return p, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := input(cmd).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("password is required")
	}
	return line, nil
}

// confirm asks a yes/no question on stdin unless yes is already set.
func confirm(cmd *cobra.Command, yes bool, question string) bool {
	if yes {
		return true
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N]: ", question)
	line, _ := input(cmd).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func input(cmd *cobra.Command) *bufio.Reader {
	if stdin == nil {
		stdin = bufio.NewReader(cmd.InOrStdin())
	}
	return stdin
}
