package progression

import (
	"fmt"
	"math"

	"github.com/pders01/reflexion/internal/models"
)

// Labels used for the two halves of a hydration view
var (
	ProgressLabels = models.DiffLabels{
		Title:       "Hydration Progress",
		LeftLabel:   "Start State",
		RightLabel:  "Current State",
		Description: "What has been gathered during hydration",
	}
	RemainingLabels = models.DiffLabels{
		Title:       "Remaining Work",
		LeftLabel:   "Current State",
		RightLabel:  "100% Enrichment",
		Description: "What still needs to be gathered",
	}
)

const (
	defaultHydrationTitle       = "Hydration Progress"
	defaultHydrationDescription = "Compare hydration states to see progress and remaining work"
)

// HydrationOptions configures BuildHydrationView. Zero values pick the
// weighted aggregation and the default title and description.
type HydrationOptions struct {
	Aggregation Aggregation
	Title       string
	Description string
}

// BuildHydrationView compares start against current (work done) and current
// against target (work remaining), and summarises completion toward target.
func BuildHydrationView(start, current, target models.Snapshot, opts HydrationOptions) (models.HydrationDiffView, error) {
	if opts.Aggregation == "" {
		opts.Aggregation = AggregateWeighted
	}
	if opts.Title == "" {
		opts.Title = defaultHydrationTitle
	}
	if opts.Description == "" {
		opts.Description = defaultHydrationDescription
	}

	if err := ValidateSnapshot(start); err != nil {
		return models.HydrationDiffView{}, fmt.Errorf("start: %w", err)
	}

	progress, artifacts, external, err := ProgressToward(current, target, opts.Aggregation)
	if err != nil {
		return models.HydrationDiffView{}, err
	}

	progressDiff, err := BuildProgressionDiff(start, current, ProgressLabels, progress)
	if err != nil {
		return models.HydrationDiffView{}, fmt.Errorf("progress diff: %w", err)
	}
	remainingDiff, err := BuildProgressionDiff(current, target, RemainingLabels, progress)
	if err != nil {
		return models.HydrationDiffView{}, fmt.Errorf("remaining diff: %w", err)
	}

	meta, err := Aggregate(opts.Aggregation, artifacts, external)
	if err != nil {
		return models.HydrationDiffView{}, err
	}
	meta.Title = opts.Title
	meta.Description = opts.Description

	return models.HydrationDiffView{
		Type:          models.DiffTypeProgression,
		ProgressDiff:  progressDiff,
		RemainingDiff: remainingDiff,
		Metadata:      meta,
	}, nil
}

// ValidateHydrationView checks a view decoded from the backend
func ValidateHydrationView(v models.HydrationDiffView) error {
	if err := ValidateProgressionDiff(v.ProgressDiff); err != nil {
		return fmt.Errorf("progress diff: %w", err)
	}
	if err := ValidateProgressionDiff(v.RemainingDiff); err != nil {
		return fmt.Errorf("remaining diff: %w", err)
	}
	if err := validateCount("artifacts", v.Metadata.Artifacts); err != nil {
		return err
	}
	if err := validateCount("external context", v.Metadata.ExternalContext); err != nil {
		return err
	}
	if pct := v.Metadata.CompletionPercentage; math.IsNaN(pct) || pct < 0 || pct > 100 {
		return fmt.Errorf("%w: completion %v outside [0,100]", ErrInvalidCount, v.Metadata.CompletionPercentage)
	}
	return nil
}

func validateCount(name string, c models.Count) error {
	want, err := NewCount(c.Completed, c.Total)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if c.Remaining != want.Remaining {
		return fmt.Errorf("%w: %s remaining %d, want %d", ErrInvalidCount, name, c.Remaining, want.Remaining)
	}
	return nil
}
