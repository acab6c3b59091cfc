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

var (
	showJSON bool
	showToon bool
)

var showCmd = &cobra.Command{
	Use:   "show <timestamp> <topic>",
	Short: "Show a stored snapshot",
	Long: `Display the metadata (meta.json) and contents (snapshot.json) of a
stored snapshot.

Example:
  reflexion show 2025-11-14T0930 hydration-day-1`,
	Args: cobra.ExactArgs(2),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	showCmd.Flags().BoolVar(&showToon, "toon", false, "Output in LLM-friendly toon format")
}

type shownSnapshot struct {
	Branch   string           `json:"branch"`
	Metadata *models.Metadata `json:"metadata"`
	Snapshot models.Snapshot  `json:"snapshot"`
}

func runShow(cmd *cobra.Command, args []string) error {
	if !git.IsGitRepo() {
		return fmt.Errorf("not a git repository")
	}

	timestamp, err := time.Parse(models.TimestampLayout, args[0])
	if err != nil {
		return fmt.Errorf("invalid timestamp format (use YYYY-MM-DDTHHMM): %w", err)
	}
	topic := args[1]

	s := store.New(config.GetSnapshotDir())
	meta, err := s.Metadata(timestamp, topic)
	if err != nil {
		return err
	}
	snap, err := s.Load(timestamp, topic)
	if err != nil {
		return err
	}

	shown := shownSnapshot{
		Branch:   models.BranchName(timestamp, topic),
		Metadata: meta,
		Snapshot: snap,
	}

	return render(stdout(cmd), showJSON, showToon, shown, func(w io.Writer) {
		printShown(w, shown)
	})
}

func printShown(w io.Writer, s shownSnapshot) {
	meta := s.Metadata
	fmt.Fprintf(w, "Snapshot: %s\n\n", s.Branch)
	fmt.Fprintf(w, "Topic:          %s\n", meta.Topic)
	fmt.Fprintf(w, "Created:        %s\n", meta.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Related Branch: %s\n", meta.RelatedBranch)
	fmt.Fprintf(w, "Main Commit:    %s\n", meta.MainCommit)
	if len(meta.Tags) > 0 {
		fmt.Fprintf(w, "Tags:           %v\n", meta.Tags)
	}

	fmt.Fprintf(w, "\nArtifacts (%d):\n", len(s.Snapshot.Artifacts))
	for _, id := range s.Snapshot.Artifacts {
		fmt.Fprintf(w, "  %s\n", id)
	}
	fmt.Fprintf(w, "\nExternal context (%d):\n", len(s.Snapshot.ExternalContext))
	for _, f := range s.Snapshot.ExternalContext {
		fmt.Fprintf(w, "  %s (%s)\n", f.Name, f.Path)
	}

	if meta.Notes != "" {
		fmt.Fprintf(w, "\nNotes:\n%s\n", meta.Notes)
	}
}
