package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/reflexion/internal/config"
	"github.com/pders01/reflexion/internal/git"
	"github.com/pders01/reflexion/internal/models"
	"github.com/pders01/reflexion/internal/store"
)

var pruneForce bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old snapshots based on retention policy",
	Long: `Remove stored snapshots older than the retention period.

The retention policy is configured in ~/.config/reflexion/config.toml:
  [retention]
  days = 90
  preserve_tags = ["important", "baseline"]

Snapshots with preserve tags will never be pruned.

Example:
  reflexion prune              # Show what would be pruned
  reflexion prune --force      # Actually prune snapshots`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().BoolVar(&pruneForce, "force", false, "Actually delete branches instead of a dry run")
}

type pruneCandidate struct {
	Snapshot models.StoredSnapshot
	Age      time.Duration
	Reason   string
}

func runPrune(cmd *cobra.Command, args []string) error {
	if !git.IsGitRepo() {
		return fmt.Errorf("not a git repository")
	}
	w := stdout(cmd)

	retentionDays := config.GetRetentionDays()
	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	fmt.Fprintf(w, "Retention policy: %d days\n", retentionDays)
	fmt.Fprintf(w, "Preserve tags: %v\n", config.GetPreserveTags())
	fmt.Fprintf(w, "Cutoff date: %s\n\n", cutoffDate.Format("2006-01-02"))

	snapshots, err := store.New(config.GetSnapshotDir()).List()
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Fprintln(w, "No snapshots found")
		return nil
	}

	toPrune, toPreserve := planPrune(snapshots, cutoffDate, retentionDays)

	if len(toPrune) == 0 {
		fmt.Fprintln(w, "No snapshots to prune")
		return nil
	}

	fmt.Fprintf(w, "Snapshots to prune (%d):\n\n", len(toPrune))
	printCandidates(w, toPrune)

	if len(toPreserve) > 0 {
		fmt.Fprintf(w, "Snapshots to preserve (%d):\n\n", len(toPreserve))
		printCandidates(w, toPreserve)
	}

	if !pruneForce {
		fmt.Fprintln(w, "\nThis is a dry run. Use --force to actually prune snapshots.")
		return nil
	}

	fmt.Fprintln(w, "Pruning snapshots...")
	pruned := 0
	for _, c := range toPrune {
		fmt.Fprintf(w, "  Deleting %s...\n", c.Snapshot.Branch)
		if err := git.DeleteBranch(c.Snapshot.Branch, true); err != nil {
			fmt.Fprintf(w, "    Error: %v\n", err)
			continue
		}
		pruned++
		fmt.Fprintln(w, "    ✓ Deleted")
	}
	fmt.Fprintf(w, "\n✓ Pruned %d snapshot(s)\n", pruned)
	return nil
}

// planPrune splits snapshots into those past the cutoff and those kept
func planPrune(snapshots []models.StoredSnapshot, cutoff time.Time, retentionDays int) (toPrune, toPreserve []pruneCandidate) {
	for _, s := range snapshots {
		c := pruneCandidate{Snapshot: s, Age: time.Since(s.Timestamp)}

		switch {
		case s.Metadata != nil && config.ShouldPreserve(s.Metadata.Tags):
			c.Reason = "has preserve tag"
			toPreserve = append(toPreserve, c)
		case s.Timestamp.Before(cutoff):
			c.Reason = fmt.Sprintf("older than %d days", retentionDays)
			toPrune = append(toPrune, c)
		default:
			c.Reason = "within retention period"
			toPreserve = append(toPreserve, c)
		}
	}
	return toPrune, toPreserve
}

func printCandidates(w io.Writer, candidates []pruneCandidate) {
	for _, c := range candidates {
		fmt.Fprintf(w, "  %s\n", c.Snapshot.Branch)
		fmt.Fprintf(w, "    Age:    %s\n", formatDuration(c.Age))
		fmt.Fprintf(w, "    Reason: %s\n", c.Reason)
		if c.Snapshot.Metadata != nil && len(c.Snapshot.Metadata.Tags) > 0 {
			fmt.Fprintf(w, "    Tags:   %v\n", c.Snapshot.Metadata.Tags)
		}
		fmt.Fprintln(w)
	}
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days == 0 {
		return "< 1 day"
	}
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
