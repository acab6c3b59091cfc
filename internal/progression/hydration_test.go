package progression

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pders01/reflexion/internal/models"
)

func hydrationSnapshots() (start, current, target models.Snapshot) {
	start = models.Snapshot{}
	current = models.Snapshot{
		Artifacts:       []string{"ART-1", "ART-2"},
		ExternalContext: []models.ContextFile{{Name: "sop.md", Path: "path/sop.md"}},
	}
	target = models.Snapshot{
		Artifacts: []string{"ART-1", "ART-2", "ART-3", "ART-4"},
		ExternalContext: []models.ContextFile{
			{Name: "sop.md", Path: "path/sop.md"},
			{Name: "standards.md", Path: "path/standards.md"},
		},
	}
	return start, current, target
}

func TestBuildHydrationView(t *testing.T) {
	start, current, target := hydrationSnapshots()

	view, err := BuildHydrationView(start, current, target, HydrationOptions{})
	if err != nil {
		t.Fatalf("BuildHydrationView: %v", err)
	}

	wantMeta := models.HydrationMetadata{
		Title:                "Hydration Progress",
		Description:          "Compare hydration states to see progress and remaining work",
		CompletionPercentage: 50,
		Artifacts:            models.Count{Completed: 2, Total: 4, Remaining: 2},
		ExternalContext:      models.Count{Completed: 1, Total: 2, Remaining: 1},
	}
	if diff := cmp.Diff(wantMeta, view.Metadata); diff != "" {
		t.Errorf("Metadata mismatch (-want +got):\n%s", diff)
	}

	wantProgressStats := models.DiffStats{TotalLeft: 0, TotalRight: 3, AddedCount: 3}
	if diff := cmp.Diff(wantProgressStats, view.ProgressDiff.Stats); diff != "" {
		t.Errorf("progress stats mismatch (-want +got):\n%s", diff)
	}

	wantRemainingStats := models.DiffStats{TotalLeft: 3, TotalRight: 6, AddedCount: 3, UnchangedCount: 3}
	if diff := cmp.Diff(wantRemainingStats, view.RemainingDiff.Stats); diff != "" {
		t.Errorf("remaining stats mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"ART-3", "ART-4"}, view.RemainingDiff.Diff.Artifacts.Added, sortStrings); diff != "" {
		t.Errorf("remaining added artifacts mismatch (-want +got):\n%s", diff)
	}

	if view.ProgressDiff.Metadata.Title != "Hydration Progress" {
		t.Errorf("progress title = %q", view.ProgressDiff.Metadata.Title)
	}
	if view.RemainingDiff.Metadata.RightLabel != "100% Enrichment" {
		t.Errorf("remaining right label = %q", view.RemainingDiff.Metadata.RightLabel)
	}
	if view.RemainingDiff.Metadata.Progression.ItemsRemaining != 3 {
		t.Errorf("remaining ItemsRemaining = %d, want 3", view.RemainingDiff.Metadata.Progression.ItemsRemaining)
	}

	if err := ValidateHydrationView(view); err != nil {
		t.Errorf("built view fails validation: %v", err)
	}
}

func TestBuildHydrationViewUnweighted(t *testing.T) {
	start, current, target := hydrationSnapshots()
	target.ExternalContext = target.ExternalContext[:1] // 1/1 context, 2/4 artifacts

	view, err := BuildHydrationView(start, current, target, HydrationOptions{Aggregation: AggregateUnweighted})
	if err != nil {
		t.Fatalf("BuildHydrationView: %v", err)
	}
	if view.Metadata.CompletionPercentage != 75 {
		t.Errorf("CompletionPercentage = %v, want 75", view.Metadata.CompletionPercentage)
	}
}

func TestBuildHydrationViewComplete(t *testing.T) {
	_, _, target := hydrationSnapshots()

	view, err := BuildHydrationView(models.Snapshot{}, target, target, HydrationOptions{})
	if err != nil {
		t.Fatalf("BuildHydrationView: %v", err)
	}
	if got := CompletionLabel(view.Metadata.CompletionPercentage); got != "100.0% Complete" {
		t.Errorf("label = %q, want %q", got, "100.0% Complete")
	}
	if view.RemainingDiff.Stats.AddedCount != 0 {
		t.Errorf("remaining AddedCount = %d, want 0", view.RemainingDiff.Stats.AddedCount)
	}
}

func TestBuildHydrationViewInvalidStart(t *testing.T) {
	_, current, target := hydrationSnapshots()
	start := models.Snapshot{Artifacts: []string{"X", "X"}}

	_, err := BuildHydrationView(start, current, target, HydrationOptions{})
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("error = %v, want ErrInvalidSnapshot", err)
	}
}

func TestValidateHydrationView(t *testing.T) {
	start, current, target := hydrationSnapshots()
	valid, err := BuildHydrationView(start, current, target, HydrationOptions{})
	if err != nil {
		t.Fatalf("BuildHydrationView: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(v *models.HydrationDiffView)
		want   error
	}{
		{
			name:   "remaining mismatch",
			mutate: func(v *models.HydrationDiffView) { v.Metadata.Artifacts.Remaining = 5 },
			want:   ErrInvalidCount,
		},
		{
			name:   "completed exceeds total",
			mutate: func(v *models.HydrationDiffView) { v.Metadata.ExternalContext = models.Count{Completed: 3, Total: 2} },
			want:   ErrInvalidCount,
		},
		{
			name:   "percentage out of range",
			mutate: func(v *models.HydrationDiffView) { v.Metadata.CompletionPercentage = 120 },
			want:   ErrInvalidCount,
		},
		{
			name:   "missing diff title",
			mutate: func(v *models.HydrationDiffView) { v.RemainingDiff.Metadata.Title = "" },
			want:   ErrInvalidMetadata,
		},
		{
			name: "duplicate artifact",
			mutate: func(v *models.HydrationDiffView) {
				v.ProgressDiff.Right.Artifacts = []string{"ART-1", "ART-1"}
			},
			want: ErrInvalidSnapshot,
		},
		{
			name: "remaining diff drops an item",
			mutate: func(v *models.HydrationDiffView) {
				v.RemainingDiff.Diff.Artifacts.Added = v.RemainingDiff.Diff.Artifacts.Added[1:]
			},
			want: ErrInvalidSnapshot,
		},
		{
			name:   "progress stats tampered",
			mutate: func(v *models.HydrationDiffView) { v.ProgressDiff.Stats.AddedCount = 99 },
			want:   ErrInvalidCount,
		},
		{
			name: "unknown direction",
			mutate: func(v *models.HydrationDiffView) {
				v.ProgressDiff.Metadata.Progression.Direction = "sideways"
			},
			want: ErrInvalidCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := valid
			v.Metadata = valid.Metadata
			tt.mutate(&v)
			if err := ValidateHydrationView(v); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
