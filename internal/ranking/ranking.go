// Package ranking mediates a single user choice among generated concept
// brief options.
package ranking

import (
	"errors"
	"fmt"
	"math"

	"github.com/pders01/reflexion/internal/models"
)

var (
	// ErrIndexOutOfRange reports a selection or recommendation outside the options
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidMetadata reports a view whose metadata disagrees with its options
	ErrInvalidMetadata = errors.New("invalid metadata")
)

// Model holds the options of one concept brief and the user's selection.
// A Model is owned by a single flow and is not safe for concurrent use.
type Model struct {
	view     models.ConceptBriefDiffView
	selected int
	hasSel   bool
}

// New validates view and returns a model with nothing selected
func New(view models.ConceptBriefDiffView) (*Model, error) {
	if err := Validate(view); err != nil {
		return nil, err
	}
	opts := make([]models.BriefOption, len(view.Options))
	copy(opts, view.Options)
	view.Options = opts
	return &Model{view: view}, nil
}

// Validate checks the recommended index, option count and score range
func Validate(view models.ConceptBriefDiffView) error {
	if len(view.Options) == 0 {
		return fmt.Errorf("%w: no options", ErrInvalidMetadata)
	}
	if view.Metadata.NumOptions != len(view.Options) {
		return fmt.Errorf("%w: num_options %d, have %d options",
			ErrInvalidMetadata, view.Metadata.NumOptions, len(view.Options))
	}
	if err := checkIndex(view.RecommendedIndex, len(view.Options)); err != nil {
		return fmt.Errorf("recommended: %w", err)
	}
	for i, o := range view.Options {
		if o.ComplianceScore == nil {
			continue
		}
		if s := *o.ComplianceScore; math.IsNaN(s) || s < 0 || s > 1 {
			return fmt.Errorf("%w: option %d compliance score %v outside [0,1]", ErrInvalidMetadata, i, s)
		}
	}
	return nil
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d (have %d options)", ErrIndexOutOfRange, i, n)
	}
	return nil
}

// Select overrides the recommended option
func (m *Model) Select(i int) error {
	if err := checkIndex(i, len(m.view.Options)); err != nil {
		return err
	}
	m.selected = i
	m.hasSel = true
	return nil
}

// Selected returns the explicitly selected index, if any
func (m *Model) Selected() (int, bool) {
	return m.selected, m.hasSel
}

// Effective returns the selected index, or the recommended one when the
// user has not chosen.
func (m *Model) Effective() int {
	if m.hasSel {
		return m.selected
	}
	return m.view.RecommendedIndex
}

// Approve returns the effective index. It does not change the model; the
// caller sends the decision and waits for a fresh view.
func (m *Model) Approve() int {
	return m.Effective()
}

// Reject signals that every option is discarded
func (m *Model) Reject() Decision {
	return Decision{Verdict: VerdictRejected}
}

// Decide is Approve wrapped as a Decision
func (m *Model) Decide() Decision {
	return Decision{Verdict: VerdictApproved, Index: m.Approve()}
}

// Options returns a copy of the options
func (m *Model) Options() []models.BriefOption {
	out := make([]models.BriefOption, len(m.view.Options))
	copy(out, m.view.Options)
	return out
}

// Recommended returns the system-suggested index
func (m *Model) Recommended() int {
	return m.view.RecommendedIndex
}

// Metadata returns the view metadata
func (m *Model) Metadata() models.BriefMetadata {
	return m.view.Metadata
}
