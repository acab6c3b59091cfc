package ranking

import "fmt"

// Bucket classifies a compliance score for display
type Bucket struct {
	Level string
	Color string
}

var (
	BucketHigh   = Bucket{Level: "high", Color: "green"}
	BucketMedium = Bucket{Level: "medium", Color: "yellow"}
	BucketLow    = Bucket{Level: "low", Color: "red"}
)

func (b Bucket) String() string {
	return b.Level + "/" + b.Color
}

// BucketFor buckets score; a missing score counts as 0
func BucketFor(score *float64) Bucket {
	s := scoreOf(score)
	switch {
	case s >= 0.8:
		return BucketHigh
	case s >= 0.5:
		return BucketMedium
	default:
		return BucketLow
	}
}

// ComplianceLabel formats score as "80% compliance"
func ComplianceLabel(score *float64) string {
	return fmt.Sprintf("%.0f%% compliance", scoreOf(score)*100)
}

func scoreOf(score *float64) float64 {
	if score == nil {
		return 0
	}
	return *score
}
