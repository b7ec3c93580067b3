package cli

import (
	"context"
	"fmt"

	"github.com/opsdesk/triage/pkg/models"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		description string
		priority    string
		fields      map[string]string
	)

	cmd := &cobra.Command{
		Use:   "analyze [summary]",
		Short: "Classify and route a single issue (debugging/testing)",
		Long:  `Run the redact-classify-route pipeline for one issue and print the result.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			orchestrator, cleanup, err := newOrchestrator(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			issue := &models.Issue{
				Summary:      args[0],
				Description:  description,
				Priority:     priority,
				CustomFields: fields,
			}

			analysis, decision := orchestrator.AnalyzeAndRoute(ctx, issue)

			fmt.Printf("Category:       %s\n", analysis.Category)
			fmt.Printf("Urgency:        %s\n", analysis.Urgency)
			fmt.Printf("Root cause:     %s\n", analysis.RootCause)
			fmt.Printf("Action:         %s\n", analysis.RequiredAction)
			fmt.Printf("Confidence:     %.2f\n", analysis.Confidence)
			if analysis.Country != "" {
				fmt.Printf("Country:        %s\n", analysis.Country)
			}
			fmt.Printf("\nRoute to:       %s\n", decision.Team)
			fmt.Printf("Reason:         %s\n", decision.Reason)

			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "issue description")
	cmd.Flags().StringVar(&priority, "priority", "", "issue priority")
	cmd.Flags().StringToStringVar(&fields, "field", nil, "custom field (name=value, repeatable)")

	return cmd
}
