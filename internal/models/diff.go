package models

// Direction tells whether the right side of a diff represents more progress
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// DiffTypeProgression is the type tag carried by progression diffs and hydration views
const DiffTypeProgression = "progression"

// Comparison classifies every item of a left/right collection pair into
// exactly one of four disjoint categories. Modified entries hold the
// right-side value.
type Comparison[T any] struct {
	Added     []T `json:"added"`
	Removed   []T `json:"removed"`
	Modified  []T `json:"modified"`
	Unchanged []T `json:"unchanged"`
}

// Len returns the number of classified items
func (c Comparison[T]) Len() int {
	return len(c.Added) + len(c.Removed) + len(c.Modified) + len(c.Unchanged)
}

// CollectionDiffs holds the comparison for each tracked collection
type CollectionDiffs struct {
	Artifacts       Comparison[string]      `json:"artifacts"`
	ExternalContext Comparison[ContextFile] `json:"external_context"`
}

// DiffStats sums comparison counts across all tracked collections
type DiffStats struct {
	TotalLeft      int `json:"totalLeft"`
	TotalRight     int `json:"totalRight"`
	AddedCount     int `json:"addedCount"`
	RemovedCount   int `json:"removedCount"`
	ModifiedCount  int `json:"modifiedCount"`
	UnchangedCount int `json:"unchangedCount"`
}

// DiffLabels are the descriptive labels of a progression diff
type DiffLabels struct {
	Title       string `json:"title" validate:"required"`
	LeftLabel   string `json:"leftLabel" validate:"required"`
	RightLabel  string `json:"rightLabel" validate:"required"`
	Description string `json:"description"`
}

// ProgressionMetrics is the progression block of a diff's metadata
type ProgressionMetrics struct {
	CompletionPercentage float64   `json:"completionPercentage"`
	ItemsAdded           int       `json:"itemsAdded"`
	ItemsRemaining       int       `json:"itemsRemaining"`
	Direction            Direction `json:"direction"`
}

// DiffMetadata combines labels with progression metrics
type DiffMetadata struct {
	DiffLabels
	Progression ProgressionMetrics `json:"progression"`
}

// ProgressionDiff is the structured comparison of two snapshots
type ProgressionDiff struct {
	Type     string          `json:"type"`
	Left     Snapshot        `json:"left"`
	Right    Snapshot        `json:"right"`
	Diff     CollectionDiffs `json:"diff"`
	Stats    DiffStats       `json:"stats"`
	Metadata DiffMetadata    `json:"metadata"`
}
