package cli

import (
	"fmt"

	"github.com/opsdesk/triage/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := config.FindConfigPath(cfgFile)
			if cfgPath == "" {
				return fmt.Errorf("config file not found")
			}

			fmt.Printf("Validating config: %s\n", cfgPath)

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			errs := config.Validate(cfg)
			if len(errs) > 0 {
				fmt.Println("\nValidation errors:")
				for _, e := range errs {
					fmt.Printf("  - %v\n", e)
				}
				return fmt.Errorf("configuration is invalid")
			}

			fmt.Println("\nConfiguration is valid!")
			fmt.Printf("  - Storage: %s\n", cfg.Storage.Path)
			fmt.Printf("  - Qdrant: %s (collection %s)\n", cfg.Qdrant.URL, cfg.Qdrant.Collection)
			fmt.Printf("  - Primary embedding: %s (%s, %dd)\n",
				cfg.Embedding.Primary.Provider, cfg.Embedding.Primary.Model, cfg.Embedding.Primary.Dimensions)
			fmt.Printf("  - Classifier: %s (%s)\n", cfg.Classifier.Provider, cfg.Classifier.Model)
			fmt.Printf("  - Index kind: %s, batch %d, pause %ds\n",
				cfg.Indexer.Kind, cfg.Indexer.BatchSize, cfg.Indexer.PauseSeconds)

			return nil
		},
	}
}
