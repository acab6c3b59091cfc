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
	listTopic string
	listToday bool
	listSince string
	listJSON  bool
	listToon  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	Long: `List stored snapshots with optional filtering.

Examples:
  reflexion list
  reflexion list --topic hydration-day-1
  reflexion list --today
  reflexion list --since 2025-10-01`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listTopic, "topic", "", "Filter by topic")
	listCmd.Flags().BoolVar(&listToday, "today", false, "Show only today's snapshots")
	listCmd.Flags().StringVar(&listSince, "since", "", "Show snapshots since date (YYYY-MM-DD)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().BoolVar(&listToon, "toon", false, "Output in LLM-friendly toon format")
}

type listEntry struct {
	Branch          string    `json:"branch"`
	Ref             string    `json:"ref"`
	Topic           string    `json:"topic"`
	Timestamp       time.Time `json:"timestamp"`
	Tags            []string  `json:"tags,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Artifacts       int       `json:"artifacts"`
	ExternalContext int       `json:"external_context"`
}

func runList(cmd *cobra.Command, args []string) error {
	if !git.IsGitRepo() {
		return fmt.Errorf("not a git repository")
	}

	var since time.Time
	if listSince != "" {
		var err error
		since, err = time.Parse("2006-01-02", listSince)
		if err != nil {
			return fmt.Errorf("invalid --since date format (use YYYY-MM-DD): %w", err)
		}
	}

	snapshots, err := store.New(config.GetSnapshotDir()).List()
	if err != nil {
		return err
	}

	today := time.Now().Format("2006-01-02")
	entries := []listEntry{}
	for _, s := range snapshots {
		if listTopic != "" && s.Topic != listTopic {
			continue
		}
		if listToday && s.Timestamp.Format("2006-01-02") != today {
			continue
		}
		if !since.IsZero() && s.Timestamp.Before(since) {
			continue
		}
		entries = append(entries, newListEntry(s))
	}

	return render(stdout(cmd), listJSON, listToon, entries, func(w io.Writer) {
		printList(w, entries, len(snapshots))
	})
}

func newListEntry(s models.StoredSnapshot) listEntry {
	e := listEntry{
		Branch:    s.Branch,
		Ref:       s.Timestamp.Format(models.TimestampLayout) + "/" + s.Topic,
		Topic:     s.Topic,
		Timestamp: s.Timestamp,
	}
	if s.Metadata != nil {
		e.Tags = s.Metadata.Tags
		e.Notes = s.Metadata.Notes
		e.Artifacts = s.Metadata.Artifacts
		e.ExternalContext = s.Metadata.ExternalContext
	}
	return e
}

func printList(w io.Writer, entries []listEntry, total int) {
	if total == 0 {
		fmt.Fprintln(w, "No snapshots found")
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No snapshots match the filter criteria")
		return
	}

	fmt.Fprintf(w, "Found %d snapshot(s):\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "  %s\n", e.Branch)
		fmt.Fprintf(w, "    Topic:   %s\n", e.Topic)
		fmt.Fprintf(w, "    Created: %s\n", e.Timestamp.Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "    Items:   %d artifact(s), %d context file(s)\n", e.Artifacts, e.ExternalContext)
		if len(e.Tags) > 0 {
			fmt.Fprintf(w, "    Tags:    %v\n", e.Tags)
		}
		if e.Notes != "" {
			fmt.Fprintf(w, "    Notes:   %s\n", truncate(e.Notes, 60))
		}
		fmt.Fprintln(w)
	}
}
