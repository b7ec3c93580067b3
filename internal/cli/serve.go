package cli

import (
	"fmt"

	"github.com/opsdesk/triage/internal/api"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the triage HTTP API",
		Long:  `Serve the analyze, route, and search endpoints over HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if listen != "" {
				cfg.Server.Listen = listen
			}

			orchestrator, closeTriage, err := newOrchestrator(cfg)
			if err != nil {
				return err
			}
			defer closeTriage()

			searcher, closeSearch, err := newSearcher(cfg)
			if err != nil {
				return err
			}
			defer closeSearch()

			server := api.NewServer(orchestrator, searcher, cfg.Search.Limit)
			if err := server.ListenAndServe(cfg.Server.Listen); err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")

	return cmd
}
