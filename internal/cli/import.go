package cli

import (
	"fmt"

	"github.com/opsdesk/triage/internal/storage"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file.csv]",
		Short: "Import issue records from a CSV export",
		Long: `Load issues from a CSV export into the local store. The first row is a
header; unrecognized columns become custom fields. Reimporting replaces
existing rows by issue key.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := storage.Open(cfg.Storage.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			imported, err := store.ImportCSV(args[0])
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			fmt.Printf("Imported %d issues\n", imported)
			return nil
		},
	}

	return cmd
}
