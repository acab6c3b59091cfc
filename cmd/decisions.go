package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pders01/reflexion/internal/backend"
	"github.com/pders01/reflexion/internal/config"
	"github.com/pders01/reflexion/internal/models"
	"github.com/pders01/reflexion/internal/progression"
)

var (
	decisionsThread string
	decisionsJSON   bool
	decisionsToon   bool
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "List pending decisions of a thread",
	Long: `Load the decisions recorded for a thread from the backend and show the
ones still awaiting approval, with their preview diffs.

Example:
  reflexion decisions --thread 3f1c2a`,
	Args: cobra.NoArgs,
	RunE: runDecisions,
}

func init() {
	rootCmd.AddCommand(decisionsCmd)

	decisionsCmd.Flags().StringVar(&decisionsThread, "thread", "", "Thread id")
	decisionsCmd.Flags().BoolVar(&decisionsJSON, "json", false, "Output as JSON")
	decisionsCmd.Flags().BoolVar(&decisionsToon, "toon", false, "Output in LLM-friendly toon format")
	decisionsCmd.MarkFlagRequired("thread")
}

func runDecisions(cmd *cobra.Command, args []string) error {
	client, err := backend.NewClient(config.GetBackendConfig())
	if err != nil {
		return err
	}

	items, err := client.PendingDecisions(context.Background(), config.GetCredentials(), decisionsThread)
	if err != nil {
		return fmt.Errorf("failed to load decisions: %w", err)
	}

	return render(stdout(cmd), decisionsJSON, decisionsToon, items, func(w io.Writer) {
		printDecisions(w, items)
	})
}

func printDecisions(w io.Writer, items []models.PreviewItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No pending decisions")
		return
	}

	fmt.Fprintf(w, "Found %d pending decision(s):\n\n", len(items))
	for _, item := range items {
		fmt.Fprintf(w, "  %s\n", item.ID)
		fmt.Fprintf(w, "    Type:    %s\n", item.Type)
		fmt.Fprintf(w, "    Title:   %s\n", item.Title)
		fmt.Fprintf(w, "    Summary: %s\n", truncate(item.Summary, 80))

		switch item.Kind {
		case models.PreviewHydration:
			pct := item.Hydration.Metadata.CompletionPercentage
			fmt.Fprintf(w, "    Preview: hydration, %s\n", progression.CompletionLabel(pct))
		case models.PreviewConceptBrief:
			fmt.Fprintf(w, "    Preview: concept brief, %d option(s)\n", len(item.ConceptBrief.Options))
		default:
			if item.PreviewError != "" {
				fmt.Fprintf(w, "    Preview: unavailable (%s)\n", item.PreviewError)
			}
		}
		fmt.Fprintln(w)
	}
}
