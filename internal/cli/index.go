package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	var (
		batchSize int
		limit     int
		reindex   string
		recreate  bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Embed and index issues lacking an embedding",
		Long: `Compute embeddings for stored issues that lack one and persist them to
the vector database. Safe to rerun: already-indexed issues are skipped.
Run as a single scheduled job; do not fan out concurrent runs against
the same corpus.

--reindex re-embeds a single issue immediately, replacing its stored
vector. --recreate drops the collection and all bookkeeping first, then
rebuilds from scratch; use it after switching embedding models.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if batchSize <= 0 {
				batchSize = cfg.Indexer.BatchSize
			}

			idx, cleanup, err := newIndexer(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if reindex != "" {
				if err := idx.Reindex(ctx, reindex); err != nil {
					return fmt.Errorf("reindex failed: %w", err)
				}
				fmt.Printf("Reindexed %s\n", reindex)
				return nil
			}

			if recreate {
				if err := idx.Recreate(ctx); err != nil {
					return fmt.Errorf("recreate failed: %w", err)
				}
			}

			stats, err := idx.Run(ctx, batchSize, limit)
			if err != nil {
				return fmt.Errorf("indexing failed: %w", err)
			}

			fmt.Printf("Indexed %d/%d issues (%d skipped) in %dms\n",
				stats.Indexed, stats.Candidates, stats.Skipped, stats.DurationMs)

			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "issues per embedding batch")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum issues to index this run (0 = all)")
	cmd.Flags().StringVar(&reindex, "reindex", "", "re-embed a single issue key and exit")
	cmd.Flags().BoolVar(&recreate, "recreate", false, "drop and rebuild the whole corpus")

	return cmd
}
