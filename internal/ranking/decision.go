package ranking

// Verdict is the outcome of a concept brief decision
type Verdict string

const (
	VerdictApproved Verdict = "approved"
	VerdictRejected Verdict = "rejected"
)

// Decision is what gets sent to the backend apply endpoint
type Decision struct {
	Verdict Verdict
	Index   int
}

// Approved reports whether the decision accepts an option
func (d Decision) Approved() bool {
	return d.Verdict == VerdictApproved
}

// Payload builds the apply payload. Rejections carry no option index.
func (d Decision) Payload() map[string]any {
	if !d.Approved() {
		return map[string]any{"approved": false}
	}
	return map[string]any{
		"approved":              true,
		"selected_option_index": d.Index,
	}
}
