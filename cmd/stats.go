package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/reflexion/internal/config"
	"github.com/pders01/reflexion/internal/git"
	"github.com/pders01/reflexion/internal/models"
	"github.com/pders01/reflexion/internal/store"
)

var (
	statsJSON bool
	statsToon bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show snapshot statistics",
	Long: `Display statistics about stored snapshots including:
  - Total snapshot count and date range
  - Artifact and external context totals
  - Tag usage
  - Timeline distribution

Examples:
  reflexion stats
  reflexion stats --json
  reflexion stats --toon`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	statsCmd.Flags().BoolVar(&statsToon, "toon", false, "Output in LLM-friendly toon format")
}

type snapshotStats struct {
	TotalSnapshots  int             `json:"total_snapshots"`
	ByTopic         map[string]int  `json:"by_topic"`
	ByTag           map[string]int  `json:"by_tag"`
	Artifacts       int             `json:"artifacts"`
	ExternalContext int             `json:"external_context"`
	Largest         string          `json:"largest,omitempty"`
	OldestSnapshot  *time.Time      `json:"oldest_snapshot,omitempty"`
	NewestSnapshot  *time.Time      `json:"newest_snapshot,omitempty"`
	TopTags         []tagStat       `json:"top_tags"`
	DailyActivity   []dailyActivity `json:"daily_activity"`
}

type tagStat struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type dailyActivity struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func runStats(cmd *cobra.Command, args []string) error {
	if !git.IsGitRepo() {
		return fmt.Errorf("not a git repository")
	}

	snapshots, err := store.New(config.GetSnapshotDir()).List()
	if err != nil {
		return err
	}

	if len(snapshots) == 0 {
		fmt.Fprintln(stdout(cmd), "No snapshots found")
		return nil
	}

	stats := collectStats(snapshots)
	return render(stdout(cmd), statsJSON, statsToon, stats, func(w io.Writer) {
		printStats(w, stats)
	})
}

func collectStats(snapshots []models.StoredSnapshot) *snapshotStats {
	stats := &snapshotStats{
		TotalSnapshots: len(snapshots),
		ByTopic:        make(map[string]int),
		ByTag:          make(map[string]int),
		TopTags:        []tagStat{},
		DailyActivity:  []dailyActivity{},
	}
	byDate := make(map[string]int)
	largest := -1

	for _, s := range snapshots {
		if stats.OldestSnapshot == nil || s.Timestamp.Before(*stats.OldestSnapshot) {
			t := s.Timestamp
			stats.OldestSnapshot = &t
		}
		if stats.NewestSnapshot == nil || s.Timestamp.After(*stats.NewestSnapshot) {
			t := s.Timestamp
			stats.NewestSnapshot = &t
		}

		stats.ByTopic[s.Topic]++
		byDate[s.Timestamp.Format("2006-01-02")]++

		if s.Metadata == nil {
			continue
		}
		for _, tag := range s.Metadata.Tags {
			stats.ByTag[tag]++
		}
		stats.Artifacts += s.Metadata.Artifacts
		stats.ExternalContext += s.Metadata.ExternalContext
		if size := s.Metadata.Artifacts + s.Metadata.ExternalContext; size > largest {
			largest = size
			stats.Largest = s.Branch
		}
	}

	for tag, count := range stats.ByTag {
		stats.TopTags = append(stats.TopTags, tagStat{Tag: tag, Count: count})
	}
	sort.Slice(stats.TopTags, func(i, j int) bool {
		if stats.TopTags[i].Count == stats.TopTags[j].Count {
			return stats.TopTags[i].Tag < stats.TopTags[j].Tag
		}
		return stats.TopTags[i].Count > stats.TopTags[j].Count
	})

	for date, count := range byDate {
		stats.DailyActivity = append(stats.DailyActivity, dailyActivity{Date: date, Count: count})
	}
	sort.Slice(stats.DailyActivity, func(i, j int) bool {
		return stats.DailyActivity[i].Date > stats.DailyActivity[j].Date
	})

	return stats
}

func printStats(w io.Writer, stats *snapshotStats) {
	fmt.Fprintln(w, "Snapshot Statistics")
	fmt.Fprintln(w, "━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total Snapshots: %d\n", stats.TotalSnapshots)
	if stats.OldestSnapshot != nil && stats.NewestSnapshot != nil {
		fmt.Fprintf(w, "Date Range:      %s to %s\n",
			stats.OldestSnapshot.Format("2006-01-02"),
			stats.NewestSnapshot.Format("2006-01-02"))
	}
	fmt.Fprintf(w, "Topics:          %d\n", len(stats.ByTopic))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Items:")
	fmt.Fprintf(w, "  Artifacts:        %d (avg %.1f)\n", stats.Artifacts, float64(stats.Artifacts)/float64(stats.TotalSnapshots))
	fmt.Fprintf(w, "  External context: %d (avg %.1f)\n", stats.ExternalContext, float64(stats.ExternalContext)/float64(stats.TotalSnapshots))
	if stats.Largest != "" {
		fmt.Fprintf(w, "  Largest:          %s\n", stats.Largest)
	}
	fmt.Fprintln(w)

	if len(stats.TopTags) > 0 {
		fmt.Fprintln(w, "Top Tags:")
		for _, ts := range stats.TopTags[:min(10, len(stats.TopTags))] {
			fmt.Fprintf(w, "  %-20s %3d\n", ts.Tag, ts.Count)
		}
		fmt.Fprintln(w)
	}

	if len(stats.DailyActivity) > 0 {
		fmt.Fprintln(w, "Recent Activity:")
		for _, da := range stats.DailyActivity[:min(7, len(stats.DailyActivity))] {
			bar := strings.Repeat("█", min(da.Count, 20))
			fmt.Fprintf(w, "  %s  %3d  %s\n", da.Date, da.Count, bar)
		}
	}
}
