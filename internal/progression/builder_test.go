package progression

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pders01/reflexion/internal/models"
)

var testLabels = models.DiffLabels{
	Title:       "Hydration Progress",
	LeftLabel:   "Start State",
	RightLabel:  "Current State",
	Description: "What has been gathered during hydration",
}

func TestBuildProgressionDiff(t *testing.T) {
	left := models.Snapshot{}
	right := models.Snapshot{
		Artifacts:       []string{"ART-1", "ART-2"},
		ExternalContext: []models.ContextFile{{Name: "sop.md", Path: "path/sop.md"}},
	}

	got, err := BuildProgressionDiff(left, right, testLabels, Progress{CompletionPercentage: 50, ItemsRemaining: 3})
	if err != nil {
		t.Fatalf("BuildProgressionDiff: %v", err)
	}

	if got.Type != models.DiffTypeProgression {
		t.Errorf("Type = %q, want %q", got.Type, models.DiffTypeProgression)
	}

	wantStats := models.DiffStats{TotalLeft: 0, TotalRight: 3, AddedCount: 3}
	if diff := cmp.Diff(wantStats, got.Stats); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}

	wantProgression := models.ProgressionMetrics{
		CompletionPercentage: 50,
		ItemsAdded:           3,
		ItemsRemaining:       3,
		Direction:            models.DirectionForward,
	}
	if diff := cmp.Diff(wantProgression, got.Metadata.Progression); diff != "" {
		t.Errorf("Progression mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"ART-1", "ART-2"}, got.Diff.Artifacts.Added, sortStrings); diff != "" {
		t.Errorf("added artifacts mismatch (-want +got):\n%s", diff)
	}
	if got.Left.Artifacts == nil || got.Left.ExternalContext == nil {
		t.Error("empty left collections should be non-nil")
	}
	if got.Metadata.Title != testLabels.Title {
		t.Errorf("Title = %q, want %q", got.Metadata.Title, testLabels.Title)
	}
}

func TestBuildProgressionDiffStatsIdentities(t *testing.T) {
	left := models.Snapshot{
		Artifacts: []string{"ART-1", "ART-2", "ART-3"},
		ExternalContext: []models.ContextFile{
			{Name: "sop.md", Path: "path/sop.md"},
			{Name: "guide.md", Path: "path/guide.md"},
		},
	}
	right := models.Snapshot{
		Artifacts: []string{"ART-2", "ART-4"},
		ExternalContext: []models.ContextFile{
			{Name: "guide-v2.md", Path: "path/guide.md"},
			{Name: "standards.md", Path: "path/standards.md"},
		},
	}

	got, err := BuildProgressionDiff(left, right, testLabels, Progress{})
	if err != nil {
		t.Fatalf("BuildProgressionDiff: %v", err)
	}

	s := got.Stats
	if s.UnchangedCount+s.ModifiedCount+s.RemovedCount != s.TotalLeft {
		t.Errorf("unchanged+modified+removed = %d, want totalLeft %d",
			s.UnchangedCount+s.ModifiedCount+s.RemovedCount, s.TotalLeft)
	}
	if s.UnchangedCount+s.ModifiedCount+s.AddedCount != s.TotalRight {
		t.Errorf("unchanged+modified+added = %d, want totalRight %d",
			s.UnchangedCount+s.ModifiedCount+s.AddedCount, s.TotalRight)
	}
	if s.ModifiedCount != 1 {
		t.Errorf("ModifiedCount = %d, want 1", s.ModifiedCount)
	}
	if got.Metadata.Progression.Direction != models.DirectionBackward {
		t.Errorf("Direction = %q, want backward (5 -> 4 items)", got.Metadata.Progression.Direction)
	}
}

func TestBuildProgressionDiffSelf(t *testing.T) {
	s := models.Snapshot{
		Artifacts:       []string{"ART-1"},
		ExternalContext: []models.ContextFile{{Name: "sop.md", Path: "path/sop.md"}},
	}

	got, err := BuildProgressionDiff(s, s, testLabels, Progress{CompletionPercentage: 100})
	if err != nil {
		t.Fatalf("BuildProgressionDiff: %v", err)
	}
	if got.Stats.UnchangedCount != 2 || got.Stats.AddedCount+got.Stats.RemovedCount+got.Stats.ModifiedCount != 0 {
		t.Errorf("self diff stats = %+v, want only unchanged", got.Stats)
	}
	if got.Metadata.Progression.Direction != models.DirectionForward {
		t.Errorf("Direction = %q, want forward for equal totals", got.Metadata.Progression.Direction)
	}
}

func TestBuildProgressionDiffClampsPercentage(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: -5, want: 0},
		{in: 42.25, want: 42.25},
		{in: 130, want: 100},
	}

	for _, tt := range tests {
		got, err := BuildProgressionDiff(models.Snapshot{}, models.Snapshot{}, testLabels, Progress{CompletionPercentage: tt.in})
		if err != nil {
			t.Fatalf("BuildProgressionDiff(%v): %v", tt.in, err)
		}
		if got.Metadata.Progression.CompletionPercentage != tt.want {
			t.Errorf("completion for %v = %v, want %v", tt.in, got.Metadata.Progression.CompletionPercentage, tt.want)
		}
	}
}

func TestBuildProgressionDiffErrors(t *testing.T) {
	tests := []struct {
		name     string
		left     models.Snapshot
		right    models.Snapshot
		labels   models.DiffLabels
		progress Progress
		want     error
	}{
		{
			name:   "duplicate artifact",
			left:   models.Snapshot{Artifacts: []string{"ART-1", "ART-1"}},
			labels: testLabels,
			want:   ErrInvalidSnapshot,
		},
		{
			name: "duplicate context path",
			right: models.Snapshot{ExternalContext: []models.ContextFile{
				{Name: "a", Path: "p"},
				{Name: "b", Path: "p"},
			}},
			labels: testLabels,
			want:   ErrInvalidSnapshot,
		},
		{
			name:   "missing title",
			labels: models.DiffLabels{LeftLabel: "L", RightLabel: "R"},
			want:   ErrInvalidMetadata,
		},
		{
			name:   "missing right label",
			labels: models.DiffLabels{Title: "T", LeftLabel: "L"},
			want:   ErrInvalidMetadata,
		},
		{
			name:     "negative remaining",
			labels:   testLabels,
			progress: Progress{ItemsRemaining: -1},
			want:     ErrInvalidCount,
		},
		{
			name:     "NaN percentage",
			labels:   testLabels,
			progress: Progress{CompletionPercentage: math.NaN()},
			want:     ErrInvalidCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildProgressionDiff(tt.left, tt.right, tt.labels, tt.progress)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateLabelsNamesField(t *testing.T) {
	err := ValidateLabels(models.DiffLabels{Title: "T", RightLabel: "R"})
	if err == nil {
		t.Fatal("expected error for missing leftLabel")
	}
	if got := err.Error(); got != "invalid metadata: leftLabel is required" {
		t.Errorf("error = %q", got)
	}
}

func TestValidateLabelsBlank(t *testing.T) {
	labels := testLabels
	labels.RightLabel = "   "

	err := ValidateLabels(labels)
	if !errors.Is(err, ErrInvalidMetadata) {
		t.Fatalf("error = %v, want ErrInvalidMetadata", err)
	}
	if got := err.Error(); got != "invalid metadata: rightLabel is required" {
		t.Errorf("error = %q", got)
	}

	if _, err := BuildProgressionDiff(models.Snapshot{}, models.Snapshot{}, models.DiffLabels{Title: "\t", LeftLabel: "L", RightLabel: "R"}, Progress{}); !errors.Is(err, ErrInvalidMetadata) {
		t.Errorf("BuildProgressionDiff with blank title: error = %v, want ErrInvalidMetadata", err)
	}
}

func TestValidateProgressionDiff(t *testing.T) {
	left := models.Snapshot{
		Artifacts:       []string{"ART-1", "ART-2"},
		ExternalContext: []models.ContextFile{{Name: "sop.md", Path: "path/sop.md"}},
	}
	right := models.Snapshot{
		Artifacts:       []string{"ART-2", "ART-3", "ART-4"},
		ExternalContext: []models.ContextFile{{Name: "sop-v2.md", Path: "path/sop.md"}},
	}
	valid, err := BuildProgressionDiff(left, right, testLabels, Progress{CompletionPercentage: 40, ItemsRemaining: 2})
	if err != nil {
		t.Fatalf("BuildProgressionDiff: %v", err)
	}
	if err := ValidateProgressionDiff(valid); err != nil {
		t.Fatalf("valid diff rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(d *models.ProgressionDiff)
		want   error
	}{
		{
			name:   "phantom added artifact",
			mutate: func(d *models.ProgressionDiff) { d.Diff.Artifacts.Added = append(d.Diff.Artifacts.Added, "GHOST") },
			want:   ErrInvalidSnapshot,
		},
		{
			name:   "missing removed artifact",
			mutate: func(d *models.ProgressionDiff) { d.Diff.Artifacts.Removed = nil },
			want:   ErrInvalidSnapshot,
		},
		{
			name: "item in two categories",
			mutate: func(d *models.ProgressionDiff) {
				d.Diff.Artifacts.Added = append(d.Diff.Artifacts.Added, "ART-2")
			},
			want: ErrInvalidSnapshot,
		},
		{
			name: "modified reported as unchanged",
			mutate: func(d *models.ProgressionDiff) {
				d.Diff.ExternalContext.Unchanged = d.Diff.ExternalContext.Modified
				d.Diff.ExternalContext.Modified = nil
			},
			want: ErrInvalidSnapshot,
		},
		{
			name:   "left total mismatch",
			mutate: func(d *models.ProgressionDiff) { d.Stats.TotalLeft = 7 },
			want:   ErrInvalidCount,
		},
		{
			name:   "added count mismatch",
			mutate: func(d *models.ProgressionDiff) { d.Stats.AddedCount = 99 },
			want:   ErrInvalidCount,
		},
		{
			name:   "items added mismatch",
			mutate: func(d *models.ProgressionDiff) { d.Metadata.Progression.ItemsAdded = 1 },
			want:   ErrInvalidCount,
		},
		{
			name:   "unknown direction",
			mutate: func(d *models.ProgressionDiff) { d.Metadata.Progression.Direction = "sideways" },
			want:   ErrInvalidCount,
		},
		{
			name:   "direction against totals",
			mutate: func(d *models.ProgressionDiff) { d.Metadata.Progression.Direction = models.DirectionBackward },
			want:   ErrInvalidCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			d.Diff.Artifacts.Added = append([]string(nil), valid.Diff.Artifacts.Added...)
			tt.mutate(&d)
			if err := ValidateProgressionDiff(d); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateProgressionDiffIgnoresOrder(t *testing.T) {
	right := models.Snapshot{Artifacts: []string{"ART-1", "ART-2", "ART-3"}}
	d, err := BuildProgressionDiff(models.Snapshot{}, right, testLabels, Progress{})
	if err != nil {
		t.Fatalf("BuildProgressionDiff: %v", err)
	}
	d.Diff.Artifacts.Added = []string{"ART-3", "ART-1", "ART-2"}

	if err := ValidateProgressionDiff(d); err != nil {
		t.Errorf("reordered categories rejected: %v", err)
	}
}
