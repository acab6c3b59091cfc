package progression

import (
	"fmt"

	"github.com/pders01/reflexion/internal/models"
)

// Tone buckets a completion percentage for display
type Tone string

const (
	ToneHigh   Tone = "high"
	ToneMedium Tone = "medium"
	ToneLow    Tone = "low"
)

// CompletionLabel formats a percentage as "75.0% Complete"
func CompletionLabel(pct float64) string {
	return fmt.Sprintf("%.1f%% Complete", pct)
}

// CountLabel formats a count as "completed / total"
func CountLabel(c models.Count) string {
	return fmt.Sprintf("%d / %d", c.Completed, c.Total)
}

// RemainingLabel formats a count as "N remaining"
func RemainingLabel(c models.Count) string {
	return fmt.Sprintf("%d remaining", c.Remaining)
}

// CompletionTone returns high at 80% and above, medium from 50%, low below
func CompletionTone(pct float64) Tone {
	switch {
	case pct >= 80:
		return ToneHigh
	case pct >= 50:
		return ToneMedium
	default:
		return ToneLow
	}
}
