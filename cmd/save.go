package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/reflexion/internal/config"
	"github.com/pders01/reflexion/internal/models"
	"github.com/pders01/reflexion/internal/store"
)

var (
	saveTopic string
	saveFile  string
	saveTags  []string
	saveNotes string
)

var saveCmd = &cobra.Command{
	Use:   "save [topic]",
	Short: "Store a project state as an immutable snapshot",
	Long: `Store a project state (artifacts and external context) on a new branch:
  snapshot/YYYY-MM-DDTHHMM/topic-slug

The branch only carries the snapshot files and is never checked out, so the
working tree is left untouched. Stored snapshots can be used anywhere a
snapshot file is accepted as YYYY-MM-DDTHHMM/topic.

Example:
  reflexion save hydration-day-1 --file state.json --tag hydration`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)

	saveCmd.Flags().StringVar(&saveTopic, "topic", "", "Override topic slug")
	saveCmd.Flags().StringVarP(&saveFile, "file", "f", "-", "Snapshot JSON file (\"-\" for stdin)")
	saveCmd.Flags().StringSliceVar(&saveTags, "tag", []string{}, "Add metadata tags")
	saveCmd.Flags().StringVar(&saveNotes, "notes", "", "Optional notes")
}

func runSave(cmd *cobra.Command, args []string) error {
	topic := saveTopic
	if topic == "" && len(args) > 0 {
		topic = args[0]
	}
	if store.Slugify(topic) == "" {
		return fmt.Errorf("topic is required (provide as argument or use --topic)")
	}

	snap, err := loadSnapshot(cmd, saveFile)
	if err != nil {
		return err
	}

	stored, err := store.New(config.GetSnapshotDir()).Save(topic, snap, store.SaveOptions{
		Tags:  saveTags,
		Notes: saveNotes,
	})
	if err != nil {
		return err
	}

	w := stdout(cmd)
	fmt.Fprintf(w, "✓ Snapshot created: %s\n", stored.Branch)
	fmt.Fprintf(w, "  Artifacts:        %d\n", stored.Metadata.Artifacts)
	fmt.Fprintf(w, "  External context: %d\n", stored.Metadata.ExternalContext)
	fmt.Fprintf(w, "  Metadata: %s\n", models.MetadataPath(config.GetSnapshotDir(), stored.Timestamp, stored.Topic))
	fmt.Fprintf(w, "  Reference: %s/%s\n", stored.Timestamp.Format(models.TimestampLayout), stored.Topic)
	return nil
}
