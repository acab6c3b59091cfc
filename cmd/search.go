package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/reflexion/internal/config"
	"github.com/pders01/reflexion/internal/git"
	"github.com/pders01/reflexion/internal/models"
	"github.com/pders01/reflexion/internal/store"
)

var (
	searchTopic string
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored snapshots by keyword",
	Long: `Search snapshot metadata (topic, notes, tags) and contents
(artifact ids, external context names and paths) by keyword.

Example:
  reflexion search "sop"
  reflexion search --topic hydration ART-12`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchTopic, "topic", "", "Filter by topic")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
}

type searchResult struct {
	Branch   string           `json:"branch"`
	Score    int              `json:"score"`
	Metadata *models.Metadata `json:"metadata"`
	Matches  []string         `json:"matches,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if !git.IsGitRepo() {
		return fmt.Errorf("not a git repository")
	}

	queryWords := strings.Fields(strings.ToLower(args[0]))
	if len(queryWords) == 0 {
		return fmt.Errorf("search query is empty")
	}

	s := store.New(config.GetSnapshotDir())
	snapshots, err := s.List()
	if err != nil {
		return err
	}

	results := []searchResult{}
	for _, stored := range snapshots {
		if searchTopic != "" && stored.Topic != searchTopic {
			continue
		}
		if stored.Metadata == nil {
			continue
		}

		snap, err := s.Load(stored.Timestamp, stored.Topic)
		if err != nil {
			continue
		}

		score := calculateRelevance(queryWords, stored.Metadata)
		matches := matchItems(queryWords, snap)
		score += len(matches) * 20

		if score > 0 {
			results = append(results, searchResult{
				Branch:   stored.Branch,
				Score:    score,
				Metadata: stored.Metadata,
				Matches:  matches,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return render(stdout(cmd), searchJSON, false, results, func(w io.Writer) {
		printSearchResults(w, results)
	})
}

func calculateRelevance(queryWords []string, metadata *models.Metadata) int {
	score := 0
	searchableText := strings.ToLower(fmt.Sprintf("%s %s %s %v",
		metadata.Topic,
		metadata.Notes,
		metadata.RelatedBranch,
		metadata.Tags,
	))

	for _, word := range queryWords {
		score += strings.Count(searchableText, word) * 10

		if strings.Contains(strings.ToLower(metadata.Topic), word) {
			score += 50
		}
		for _, tag := range metadata.Tags {
			if strings.Contains(strings.ToLower(tag), word) {
				score += 30
			}
		}
	}

	return score
}

// matchItems returns the artifact ids and context paths containing any query word
func matchItems(queryWords []string, snap models.Snapshot) []string {
	var matches []string
	contains := func(s string) bool {
		s = strings.ToLower(s)
		for _, word := range queryWords {
			if strings.Contains(s, word) {
				return true
			}
		}
		return false
	}

	for _, id := range snap.Artifacts {
		if contains(id) {
			matches = append(matches, id)
		}
	}
	for _, f := range snap.ExternalContext {
		if contains(f.Name) || contains(f.Path) {
			matches = append(matches, f.Path)
		}
	}
	return matches
}

func printSearchResults(w io.Writer, results []searchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No snapshots match the search query")
		return
	}

	fmt.Fprintf(w, "\nFound %d matching snapshot(s):\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(w, "%d. %s [score: %d]\n", i+1, r.Branch, r.Score)
		fmt.Fprintf(w, "   Topic:   %s\n", r.Metadata.Topic)
		fmt.Fprintf(w, "   Created: %s\n", r.Metadata.CreatedAt.Format("2006-01-02 15:04"))
		if len(r.Metadata.Tags) > 0 {
			fmt.Fprintf(w, "   Tags:    %v\n", r.Metadata.Tags)
		}
		if r.Metadata.Notes != "" {
			fmt.Fprintf(w, "   Notes:   %s\n", truncate(r.Metadata.Notes, 80))
		}
		if len(r.Matches) > 0 {
			fmt.Fprintf(w, "   Items:   %s\n", strings.Join(r.Matches, ", "))
		}
		fmt.Fprintln(w)
	}
}
