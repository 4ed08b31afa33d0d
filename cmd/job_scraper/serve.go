package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-scraper/internal/config"
	"github.com/jonathan/job-scraper/internal/server"
	"github.com/jonathan/job-scraper/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes stored postings, statistics, run history, subscriptions and on-demand scrapes.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appCfg
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	comp, err := buildComponents(ctx, cfg, database, logger, buildOptions{Notify: true})
	if err != nil {
		return err
	}
	defer comp.Close()

	srv, err := newServer(database, cfg, comp, &serialRunner{orch: comp.Orchestrator}, servePort, logger)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// newServer builds the REST server. A zero port uses the configured one.
func newServer(store Store, cfg *config.Config, comp *components, scraper server.Scraper, port int, logger *slog.Logger) (*server.Server, error) {
	if port == 0 {
		port = cfg.Server.Port
	}
	scfg := server.Config{
		Port:      port,
		Scraper:   scraper,
		RateLimit: ratelimit.LoadConfig(os.LookupEnv),
		Logger:    logger,
	}
	if comp.Zips != nil {
		scfg.Zips = comp.Zips
	}
	srv, err := server.New(store, scfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	return srv, nil
}
