package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pders01/reflexion/internal/config"
	"github.com/pders01/reflexion/internal/models"
	"github.com/pders01/reflexion/internal/progression"
)

var (
	diffTitle       string
	diffLeftLabel   string
	diffRightLabel  string
	diffDescription string
	diffTarget      string
	diffCompletion  float64
	diffRemaining   int
	diffJSON        bool
	diffToon        bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <left> <right>",
	Short: "Compare two project states",
	Long: `Compare two snapshots and classify every artifact and external context
file as added, removed, modified or unchanged.

Each side is a snapshot JSON file, "-" for stdin, or a stored snapshot
reference (YYYY-MM-DDTHHMM/topic).

Completion comes from --target (a 100% enrichment snapshot) or from
--completion and --remaining.

Example:
  reflexion diff 2025-11-14T0930/kickoff current.json --target target.json`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVar(&diffTitle, "title", "Progression", "Diff title")
	diffCmd.Flags().StringVar(&diffLeftLabel, "left-label", "Before", "Label of the left state")
	diffCmd.Flags().StringVar(&diffRightLabel, "right-label", "After", "Label of the right state")
	diffCmd.Flags().StringVar(&diffDescription, "description", "", "Optional description")
	diffCmd.Flags().StringVar(&diffTarget, "target", "", "Target snapshot used to derive completion")
	diffCmd.Flags().Float64Var(&diffCompletion, "completion", 0, "Completion percentage when no target is given")
	diffCmd.Flags().IntVar(&diffRemaining, "remaining", 0, "Items remaining when no target is given")
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "Output as JSON")
	diffCmd.Flags().BoolVar(&diffToon, "toon", false, "Output in LLM-friendly toon format")
}

func runDiff(cmd *cobra.Command, args []string) error {
	left, err := loadSnapshot(cmd, args[0])
	if err != nil {
		return fmt.Errorf("left: %w", err)
	}
	right, err := loadSnapshot(cmd, args[1])
	if err != nil {
		return fmt.Errorf("right: %w", err)
	}

	progress := progression.Progress{
		CompletionPercentage: diffCompletion,
		ItemsRemaining:       diffRemaining,
	}
	if diffTarget != "" {
		target, err := loadSnapshot(cmd, diffTarget)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		agg, err := config.GetAggregation()
		if err != nil {
			return err
		}
		progress, _, _, err = progression.ProgressToward(right, target, agg)
		if err != nil {
			return err
		}
	}

	labels := models.DiffLabels{
		Title:       diffTitle,
		LeftLabel:   diffLeftLabel,
		RightLabel:  diffRightLabel,
		Description: diffDescription,
	}

	diff, err := progression.BuildProgressionDiff(left, right, labels, progress)
	if err != nil {
		return err
	}

	return render(stdout(cmd), diffJSON, diffToon, diff, func(w io.Writer) {
		printProgressionDiff(w, diff)
	})
}

func printProgressionDiff(w io.Writer, d models.ProgressionDiff) {
	meta := d.Metadata
	fmt.Fprintln(w, meta.Title)
	fmt.Fprintln(w, "━━━━━━━━━━━━━━━━━━━")
	if meta.Description != "" {
		fmt.Fprintln(w, meta.Description)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s → %s (%s)\n", meta.LeftLabel, meta.RightLabel, meta.Progression.Direction)
	fmt.Fprintf(w, "Items: %d → %d\n", d.Stats.TotalLeft, d.Stats.TotalRight)
	fmt.Fprintf(w, "Added: %d  Removed: %d  Modified: %d  Unchanged: %d\n",
		d.Stats.AddedCount, d.Stats.RemovedCount, d.Stats.ModifiedCount, d.Stats.UnchangedCount)
	fmt.Fprintln(w)

	a := d.Diff.Artifacts
	if len(a.Added)+len(a.Removed) > 0 {
		fmt.Fprintln(w, "Artifacts:")
		for _, id := range a.Added {
			fmt.Fprintf(w, "  + %s\n", id)
		}
		for _, id := range a.Removed {
			fmt.Fprintf(w, "  - %s\n", id)
		}
		fmt.Fprintln(w)
	}

	e := d.Diff.ExternalContext
	if len(e.Added)+len(e.Removed)+len(e.Modified) > 0 {
		fmt.Fprintln(w, "External context:")
		for _, f := range e.Added {
			fmt.Fprintf(w, "  + %s (%s)\n", f.Name, f.Path)
		}
		for _, f := range e.Removed {
			fmt.Fprintf(w, "  - %s (%s)\n", f.Name, f.Path)
		}
		for _, f := range e.Modified {
			fmt.Fprintf(w, "  ~ %s (%s)\n", f.Name, f.Path)
		}
		fmt.Fprintln(w)
	}

	p := meta.Progression
	fmt.Fprintf(w, "%s [%s], %d remaining\n",
		progression.CompletionLabel(p.CompletionPercentage),
		progression.CompletionTone(p.CompletionPercentage),
		p.ItemsRemaining)
}
