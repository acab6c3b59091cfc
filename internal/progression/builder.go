package progression

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pders01/reflexion/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Progress carries the caller-supplied completion figures of a diff.
// The engine never invents a target; see ProgressToward for deriving
// Progress from a target snapshot.
type Progress struct {
	CompletionPercentage float64 `json:"completionPercentage"`
	ItemsRemaining       int     `json:"itemsRemaining"`
}

// BuildProgressionDiff compares left and right across all tracked
// collections and attaches labels and progression metrics.
func BuildProgressionDiff(left, right models.Snapshot, labels models.DiffLabels, progress Progress) (models.ProgressionDiff, error) {
	if err := ValidateLabels(labels); err != nil {
		return models.ProgressionDiff{}, err
	}
	if err := ValidateSnapshot(left); err != nil {
		return models.ProgressionDiff{}, fmt.Errorf("left: %w", err)
	}
	if err := ValidateSnapshot(right); err != nil {
		return models.ProgressionDiff{}, fmt.Errorf("right: %w", err)
	}

	percentage, err := clampPercentage(progress.CompletionPercentage)
	if err != nil {
		return models.ProgressionDiff{}, err
	}
	if progress.ItemsRemaining < 0 {
		return models.ProgressionDiff{}, fmt.Errorf("%w: items remaining %d is negative", ErrInvalidCount, progress.ItemsRemaining)
	}

	diff, stats, err := compareSnapshots(left, right)
	if err != nil {
		return models.ProgressionDiff{}, err
	}

	return models.ProgressionDiff{
		Type:  models.DiffTypeProgression,
		Left:  normalize(left),
		Right: normalize(right),
		Diff:  diff,
		Stats: stats,
		Metadata: models.DiffMetadata{
			DiffLabels: labels,
			Progression: models.ProgressionMetrics{
				CompletionPercentage: percentage,
				ItemsAdded:           stats.AddedCount,
				ItemsRemaining:       progress.ItemsRemaining,
				Direction:            directionFor(stats),
			},
		},
	}, nil
}

// compareSnapshots diffs every tracked collection and sums the stats
func compareSnapshots(left, right models.Snapshot) (models.CollectionDiffs, models.DiffStats, error) {
	artifacts, err := DiffArtifacts(left.Artifacts, right.Artifacts)
	if err != nil {
		return models.CollectionDiffs{}, models.DiffStats{}, err
	}
	external, err := DiffExternalContext(left.ExternalContext, right.ExternalContext)
	if err != nil {
		return models.CollectionDiffs{}, models.DiffStats{}, err
	}

	stats := models.DiffStats{
		TotalLeft:      left.Size(),
		TotalRight:     right.Size(),
		AddedCount:     len(artifacts.Added) + len(external.Added),
		RemovedCount:   len(artifacts.Removed) + len(external.Removed),
		ModifiedCount:  len(artifacts.Modified) + len(external.Modified),
		UnchangedCount: len(artifacts.Unchanged) + len(external.Unchanged),
	}
	return models.CollectionDiffs{Artifacts: artifacts, ExternalContext: external}, stats, nil
}

func directionFor(stats models.DiffStats) models.Direction {
	if stats.TotalRight < stats.TotalLeft {
		return models.DirectionBackward
	}
	return models.DirectionForward
}

// ValidateLabels requires title, leftLabel and rightLabel. Labels made only
// of whitespace count as missing.
func ValidateLabels(labels models.DiffLabels) error {
	err := validate.Struct(models.DiffLabels{
		Title:       strings.TrimSpace(labels.Title),
		LeftLabel:   strings.TrimSpace(labels.LeftLabel),
		RightLabel:  strings.TrimSpace(labels.RightLabel),
		Description: labels.Description,
	})
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: %s is required", ErrInvalidMetadata, verrs[0].Field())
	}
	return fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
}

// ValidateProgressionDiff re-checks a decoded diff against the invariants
// BuildProgressionDiff guarantees. The categories, stats and direction are
// recomputed from left and right and must match.
func ValidateProgressionDiff(d models.ProgressionDiff) error {
	if err := ValidateLabels(d.Metadata.DiffLabels); err != nil {
		return err
	}
	if err := ValidateSnapshot(d.Left); err != nil {
		return fmt.Errorf("left: %w", err)
	}
	if err := ValidateSnapshot(d.Right); err != nil {
		return fmt.Errorf("right: %w", err)
	}
	p := d.Metadata.Progression
	if math.IsNaN(p.CompletionPercentage) || p.CompletionPercentage < 0 || p.CompletionPercentage > 100 {
		return fmt.Errorf("%w: completion %.1f outside [0,100]", ErrInvalidCount, p.CompletionPercentage)
	}
	if p.ItemsAdded < 0 || p.ItemsRemaining < 0 {
		return fmt.Errorf("%w: negative progression counts", ErrInvalidCount)
	}

	want, stats, err := compareSnapshots(d.Left, d.Right)
	if err != nil {
		return err
	}
	if !samePartition(d.Diff.Artifacts, want.Artifacts) {
		return fmt.Errorf("%w: artifacts diff does not match left and right", ErrInvalidSnapshot)
	}
	if !samePartition(d.Diff.ExternalContext, want.ExternalContext) {
		return fmt.Errorf("%w: external context diff does not match left and right", ErrInvalidSnapshot)
	}
	if d.Stats != stats {
		return fmt.Errorf("%w: stats %+v, want %+v", ErrInvalidCount, d.Stats, stats)
	}
	if p.ItemsAdded != stats.AddedCount {
		return fmt.Errorf("%w: items added %d, want %d", ErrInvalidCount, p.ItemsAdded, stats.AddedCount)
	}
	if dir := directionFor(stats); p.Direction != dir {
		return fmt.Errorf("%w: direction %q, want %q", ErrInvalidCount, p.Direction, dir)
	}
	return nil
}

// samePartition compares each category of two comparisons as a multiset
func samePartition[V comparable](got, want models.Comparison[V]) bool {
	return sameMembers(got.Added, want.Added) &&
		sameMembers(got.Removed, want.Removed) &&
		sameMembers(got.Modified, want.Modified) &&
		sameMembers(got.Unchanged, want.Unchanged)
}

func sameMembers[V comparable](got, want []V) bool {
	if len(got) != len(want) {
		return false
	}
	counts := make(map[V]int, len(want))
	for _, v := range want {
		counts[v]++
	}
	for _, v := range got {
		if counts[v] == 0 {
			return false
		}
		counts[v]--
	}
	return true
}

func clampPercentage(p float64) (float64, error) {
	if math.IsNaN(p) {
		return 0, fmt.Errorf("%w: completion percentage is NaN", ErrInvalidCount)
	}
	return math.Max(0, math.Min(100, p)), nil
}

// normalize replaces nil collections so they encode as empty arrays
func normalize(s models.Snapshot) models.Snapshot {
	if s.Artifacts == nil {
		s.Artifacts = []string{}
	}
	if s.ExternalContext == nil {
		s.ExternalContext = []models.ContextFile{}
	}
	return s
}
