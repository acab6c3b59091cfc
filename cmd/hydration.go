package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pders01/reflexion/internal/backend"
	"github.com/pders01/reflexion/internal/config"
	"github.com/pders01/reflexion/internal/models"
	"github.com/pders01/reflexion/internal/progression"
)

var (
	hydrationAggregation string
	hydrationTitle       string
	hydrationDescription string
	hydrationView        string
	hydrationJSON        bool
	hydrationToon        bool
)

var hydrationCmd = &cobra.Command{
	Use:   "hydration [<start> <current> <target>]",
	Short: "Show hydration progress toward a target state",
	Long: `Compare the start state with the current state (work done) and the
current state with the 100% enrichment target (work remaining).

States are snapshot JSON files, "-" for stdin, or stored snapshot references
(YYYY-MM-DDTHHMM/topic). Use --view to check and render a hydration view
produced by the backend instead.

Examples:
  reflexion hydration start.json current.json target.json
  reflexion hydration --view preview.json --json`,
	Args: func(cmd *cobra.Command, args []string) error {
		if hydrationView != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(3)(cmd, args)
	},
	RunE: runHydration,
}

func init() {
	rootCmd.AddCommand(hydrationCmd)

	hydrationCmd.Flags().StringVar(&hydrationAggregation, "aggregation", "", "Completion aggregation: weighted|unweighted (default from config)")
	hydrationCmd.Flags().StringVar(&hydrationTitle, "title", "", "View title")
	hydrationCmd.Flags().StringVar(&hydrationDescription, "description", "", "View description")
	hydrationCmd.Flags().StringVar(&hydrationView, "view", "", "Hydration view JSON to validate and render")
	hydrationCmd.Flags().BoolVar(&hydrationJSON, "json", false, "Output as JSON")
	hydrationCmd.Flags().BoolVar(&hydrationToon, "toon", false, "Output in LLM-friendly toon format")
}

func runHydration(cmd *cobra.Command, args []string) error {
	var (
		view models.HydrationDiffView
		err  error
	)
	if hydrationView != "" {
		view, err = readHydrationView(cmd, hydrationView)
	} else {
		view, err = buildHydrationView(cmd, args)
	}
	if err != nil {
		return err
	}

	return render(stdout(cmd), hydrationJSON, hydrationToon, view, func(w io.Writer) {
		printHydrationView(w, view)
	})
}

func readHydrationView(cmd *cobra.Command, arg string) (models.HydrationDiffView, error) {
	data, err := readInput(cmd, arg)
	if err != nil {
		return models.HydrationDiffView{}, err
	}
	return backend.DecodeHydrationView(data)
}

func buildHydrationView(cmd *cobra.Command, args []string) (models.HydrationDiffView, error) {
	var states [3]models.Snapshot
	for i, name := range []string{"start", "current", "target"} {
		snap, err := loadSnapshot(cmd, args[i])
		if err != nil {
			return models.HydrationDiffView{}, fmt.Errorf("%s: %w", name, err)
		}
		states[i] = snap
	}

	agg, err := config.GetAggregation()
	if err != nil {
		return models.HydrationDiffView{}, err
	}
	if hydrationAggregation != "" {
		if agg, err = progression.ParseAggregation(hydrationAggregation); err != nil {
			return models.HydrationDiffView{}, err
		}
	}

	return progression.BuildHydrationView(states[0], states[1], states[2], progression.HydrationOptions{
		Aggregation: agg,
		Title:       hydrationTitle,
		Description: hydrationDescription,
	})
}

func printHydrationView(w io.Writer, v models.HydrationDiffView) {
	meta := v.Metadata
	fmt.Fprintln(w, meta.Title)
	fmt.Fprintln(w, "━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(w, meta.Description)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s [%s]\n", progression.CompletionLabel(meta.CompletionPercentage), progression.CompletionTone(meta.CompletionPercentage))
	fmt.Fprintf(w, "  Artifacts:        %-8s %s\n", progression.CountLabel(meta.Artifacts), progression.RemainingLabel(meta.Artifacts))
	fmt.Fprintf(w, "  External context: %-8s %s\n", progression.CountLabel(meta.ExternalContext), progression.RemainingLabel(meta.ExternalContext))
	fmt.Fprintln(w)

	printProgressionDiff(w, v.ProgressDiff)
	fmt.Fprintln(w)
	printProgressionDiff(w, v.RemainingDiff)
}
