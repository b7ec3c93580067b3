package cli

import (
	"context"
	"fmt"

	"github.com/opsdesk/triage/pkg/models"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		limit   int
		byIssue bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Find similar past issues",
		Long: `Search the semantic index for issues similar to a free-text query,
or (with --issue) to an existing stored issue.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if limit <= 0 {
				limit = cfg.Search.Limit
			}

			searcher, cleanup, err := newSearcher(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			var results []models.SearchResult
			if byIssue {
				results, err = searcher.SimilarToIssue(ctx, args[0], limit)
			} else {
				results, err = searcher.Search(ctx, args[0], limit)
			}
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if len(results) == 0 {
				fmt.Println("No similar issues found")
				return nil
			}

			fmt.Printf("Found %d similar issues:\n\n", len(results))
			for i, r := range results {
				fmt.Printf("%d. %s - %s\n", i+1, r.IssueKey, r.Summary)
				fmt.Printf("   Similarity: %.1f%% | Status: %s\n\n", r.Similarity*100, r.Status)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results to return")
	cmd.Flags().BoolVar(&byIssue, "issue", false, "treat the argument as a stored issue key")

	return cmd
}
