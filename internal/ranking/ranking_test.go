package ranking

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pders01/reflexion/internal/models"
)

func score(v float64) *float64 { return &v }

func twoOptions() models.ConceptBriefDiffView {
	return models.ConceptBriefDiffView{
		Options: []models.BriefOption{
			{Summary: "Brief A", ComplianceScore: score(0.9)},
			{Summary: "Brief B", ComplianceScore: score(0.6)},
		},
		RecommendedIndex: 0,
		Metadata: models.BriefMetadata{
			Title:      "Concept Briefs",
			NumOptions: 2,
		},
	}
}

func TestApproveDefaultsToRecommended(t *testing.T) {
	m, err := New(twoOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := m.Approve(); got != 0 {
		t.Errorf("Approve() = %d, want 0", got)
	}
	if _, ok := m.Selected(); ok {
		t.Error("Selected() reports a selection before Select was called")
	}
}

func TestSelectThenApprove(t *testing.T) {
	m, err := New(twoOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Select(1); err != nil {
		t.Fatalf("Select(1): %v", err)
	}
	if got := m.Approve(); got != 1 {
		t.Errorf("Approve() = %d, want 1", got)
	}
	// approve does not consume the selection
	if got := m.Approve(); got != 1 {
		t.Errorf("second Approve() = %d, want 1", got)
	}
	if got := m.Recommended(); got != 0 {
		t.Errorf("Recommended() = %d, want 0", got)
	}
}

func TestSelectOutOfRange(t *testing.T) {
	m, err := New(twoOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, i := range []int{-1, 2, 10} {
		if err := m.Select(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Select(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
	}
	if _, ok := m.Selected(); ok {
		t.Error("failed Select changed the selection")
	}
	if got := m.Effective(); got != 0 {
		t.Errorf("Effective() = %d, want 0", got)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *models.ConceptBriefDiffView)
		want   error
	}{
		{
			name:   "recommended out of range",
			mutate: func(v *models.ConceptBriefDiffView) { v.RecommendedIndex = 2 },
			want:   ErrIndexOutOfRange,
		},
		{
			name:   "negative recommended",
			mutate: func(v *models.ConceptBriefDiffView) { v.RecommendedIndex = -1 },
			want:   ErrIndexOutOfRange,
		},
		{
			name:   "num_options mismatch",
			mutate: func(v *models.ConceptBriefDiffView) { v.Metadata.NumOptions = 3 },
			want:   ErrInvalidMetadata,
		},
		{
			name: "no options",
			mutate: func(v *models.ConceptBriefDiffView) {
				v.Options = nil
				v.Metadata.NumOptions = 0
			},
			want: ErrInvalidMetadata,
		},
		{
			name:   "score above one",
			mutate: func(v *models.ConceptBriefDiffView) { v.Options[1].ComplianceScore = score(1.5) },
			want:   ErrInvalidMetadata,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := twoOptions()
			tt.mutate(&v)
			if _, err := New(v); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOptionsAreCopied(t *testing.T) {
	v := twoOptions()
	m, err := New(v)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	v.Options[0].Summary = "changed"
	opts := m.Options()
	opts[1].Summary = "changed too"

	want := []string{"Brief A", "Brief B"}
	var got []string
	for _, o := range m.Options() {
		got = append(got, o.Summary)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("options mutated (-want +got):\n%s", diff)
	}
}

func TestDecisionPayload(t *testing.T) {
	m, err := New(twoOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Select(1); err != nil {
		t.Fatalf("Select: %v", err)
	}

	approve := m.Decide()
	if !approve.Approved() {
		t.Error("Decide() is not an approval")
	}
	want := map[string]any{"approved": true, "selected_option_index": 1}
	if diff := cmp.Diff(want, approve.Payload()); diff != "" {
		t.Errorf("approve payload mismatch (-want +got):\n%s", diff)
	}

	reject := m.Reject()
	if reject.Approved() {
		t.Error("Reject() is an approval")
	}
	if diff := cmp.Diff(map[string]any{"approved": false}, reject.Payload()); diff != "" {
		t.Errorf("reject payload mismatch (-want +got):\n%s", diff)
	}
}
