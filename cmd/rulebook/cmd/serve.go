package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/rulebook/config"
	"github.com/rustyeddy/rulebook/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live ledger over HTTP and WebSocket",
	Long: `Start the dashboard API. Clients authenticate with HTTP Basic auth
using their profile email and password. Goal edits saved to the config
file and starting capital changes reach open feeds within a few seconds.

Endpoints:
  GET    /api/state         aggregated ledger state
  GET    /api/records       journal entries in ledger order
  POST   /api/records       add a trade or withdrawal
  DELETE /api/records/{id}  delete an entry
  GET    /api/export.csv    CSV report
  GET    /api/chart.png     equity curve
  GET    /ws                ledger state pushed on every change

Example:
  rulebook serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	goals := config.NewGoalFile(cfgFile, cfg.Goals)
	s := server.New(j, goals.Goals, log).WithClock(now)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("db", cfg.Journal.DBPath).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
