package progression

import (
	"fmt"
	"strings"

	"github.com/pders01/reflexion/internal/models"
)

// Aggregation selects how per-collection ratios combine into one percentage
type Aggregation string

const (
	// AggregateWeighted divides all completed items by all target items
	AggregateWeighted Aggregation = "weighted"
	// AggregateUnweighted averages the per-collection completion ratios
	AggregateUnweighted Aggregation = "unweighted"
)

// ParseAggregation parses a configured aggregation name
func ParseAggregation(s string) (Aggregation, error) {
	switch a := Aggregation(strings.ToLower(strings.TrimSpace(s))); a {
	case AggregateWeighted, AggregateUnweighted:
		return a, nil
	case "":
		return AggregateWeighted, nil
	default:
		return "", fmt.Errorf("unknown aggregation %q (must be: weighted, unweighted)", s)
	}
}

// NewCount builds a collection count, deriving remaining = total - completed
func NewCount(completed, total int) (models.Count, error) {
	if completed < 0 || total < 0 {
		return models.Count{}, fmt.Errorf("%w: negative count (completed=%d, total=%d)", ErrInvalidCount, completed, total)
	}
	if completed > total {
		return models.Count{}, fmt.Errorf("%w: completed %d exceeds total %d", ErrInvalidCount, completed, total)
	}
	return models.Count{
		Completed: completed,
		Total:     total,
		Remaining: total - completed,
	}, nil
}

// Completion combines collection counts into a percentage in [0,100].
// Collections with no target items are left out; when every collection is
// left out there is nothing to gather and the result is 100.
func Completion(aggregation Aggregation, counts ...models.Count) float64 {
	var completed, total, ratios float64
	included := 0
	for _, c := range counts {
		if c.Total <= 0 {
			continue
		}
		included++
		completed += float64(c.Completed)
		total += float64(c.Total)
		ratios += float64(c.Completed) / float64(c.Total)
	}
	if included == 0 {
		return 100
	}

	var pct float64
	if aggregation == AggregateUnweighted {
		pct = ratios / float64(included) * 100
	} else {
		pct = completed / total * 100
	}
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// Aggregate validates both collection counts and builds hydration metadata
// without labels.
func Aggregate(aggregation Aggregation, artifacts, externalContext models.Count) (models.HydrationMetadata, error) {
	a, err := NewCount(artifacts.Completed, artifacts.Total)
	if err != nil {
		return models.HydrationMetadata{}, fmt.Errorf("artifacts: %w", err)
	}
	e, err := NewCount(externalContext.Completed, externalContext.Total)
	if err != nil {
		return models.HydrationMetadata{}, fmt.Errorf("external context: %w", err)
	}
	return models.HydrationMetadata{
		CompletionPercentage: Completion(aggregation, a, e),
		Artifacts:            a,
		ExternalContext:      e,
	}, nil
}

// ProgressToward measures current against a target snapshot. A target item
// counts as completed when current holds the same artifact id or context
// path.
func ProgressToward(current, target models.Snapshot, aggregation Aggregation) (Progress, models.Count, models.Count, error) {
	if err := ValidateSnapshot(current); err != nil {
		return Progress{}, models.Count{}, models.Count{}, fmt.Errorf("current: %w", err)
	}
	if err := ValidateSnapshot(target); err != nil {
		return Progress{}, models.Count{}, models.Count{}, fmt.Errorf("target: %w", err)
	}

	have := make(map[string]struct{}, len(current.Artifacts))
	for _, id := range current.Artifacts {
		have[id] = struct{}{}
	}
	doneArtifacts := 0
	for _, id := range target.Artifacts {
		if _, ok := have[id]; ok {
			doneArtifacts++
		}
	}

	havePaths := make(map[string]struct{}, len(current.ExternalContext))
	for _, f := range current.ExternalContext {
		havePaths[f.Path] = struct{}{}
	}
	doneContext := 0
	for _, f := range target.ExternalContext {
		if _, ok := havePaths[f.Path]; ok {
			doneContext++
		}
	}

	artifacts, err := NewCount(doneArtifacts, len(target.Artifacts))
	if err != nil {
		return Progress{}, models.Count{}, models.Count{}, err
	}
	external, err := NewCount(doneContext, len(target.ExternalContext))
	if err != nil {
		return Progress{}, models.Count{}, models.Count{}, err
	}

	return Progress{
		CompletionPercentage: Completion(aggregation, artifacts, external),
		ItemsRemaining:       artifacts.Remaining + external.Remaining,
	}, artifacts, external, nil
}
