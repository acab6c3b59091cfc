package backend

import (
	"encoding/json"
	"fmt"

	"github.com/pders01/reflexion/internal/models"
	"github.com/pders01/reflexion/internal/progression"
	"github.com/pders01/reflexion/internal/ranking"
	"github.com/tidwall/gjson"
)

// DecodeHydrationView parses and validates a hydration view from backend JSON
func DecodeHydrationView(data []byte) (models.HydrationDiffView, error) {
	var v models.HydrationDiffView
	if !gjson.ValidBytes(data) {
		return v, fmt.Errorf("%w: hydration view is not valid JSON", progression.ErrInvalidSnapshot)
	}
	if !gjson.GetBytes(data, "progress_diff").IsObject() || !gjson.GetBytes(data, "remaining_diff").IsObject() {
		return v, fmt.Errorf("%w: hydration view needs progress_diff and remaining_diff", progression.ErrInvalidSnapshot)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return models.HydrationDiffView{}, fmt.Errorf("%w: %v", progression.ErrInvalidSnapshot, err)
	}
	if err := progression.ValidateHydrationView(v); err != nil {
		return models.HydrationDiffView{}, err
	}
	return v, nil
}

// DecodeConceptBrief parses and validates a concept brief view from backend JSON
func DecodeConceptBrief(data []byte) (models.ConceptBriefDiffView, error) {
	var v models.ConceptBriefDiffView
	if !gjson.ValidBytes(data) {
		return v, fmt.Errorf("%w: concept brief is not valid JSON", ranking.ErrInvalidMetadata)
	}
	if !gjson.GetBytes(data, "options").IsArray() {
		return v, fmt.Errorf("%w: concept brief needs an options array", ranking.ErrInvalidMetadata)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return models.ConceptBriefDiffView{}, fmt.Errorf("%w: %v", ranking.ErrInvalidMetadata, err)
	}
	if err := ranking.Validate(v); err != nil {
		return models.ConceptBriefDiffView{}, err
	}
	return v, nil
}

// SniffPreview reports which view model a preview diff holds
func SniffPreview(diff gjson.Result) models.PreviewKind {
	switch {
	case !diff.IsObject():
		return models.PreviewNone
	case diff.Get("progress_diff").Exists():
		return models.PreviewHydration
	case diff.Get("options").IsArray():
		return models.PreviewConceptBrief
	default:
		return models.PreviewNone
	}
}

// DecodePreview projects a decision record into a preview item. The summary
// falls back to "<type> ready to apply"; a diff in args.preview_data.diff is
// decoded when its shape is recognised.
func DecodePreview(r models.DecisionRecord, threadID string) (models.PreviewItem, error) {
	args := gjson.ParseBytes(r.Args)

	summary := args.Get("model_summary").String()
	if summary == "" {
		summary = r.Type + " ready to apply"
	}

	item := models.PreviewItem{
		ID:       r.ID,
		Type:     r.Type,
		Title:    r.Title,
		Summary:  summary,
		Status:   models.DecisionStatusPending,
		ThreadID: threadID,
	}

	diff := args.Get("preview_data.diff")
	switch kind := SniffPreview(diff); kind {
	case models.PreviewHydration:
		v, err := DecodeHydrationView([]byte(diff.Raw))
		if err != nil {
			return item, err
		}
		item.Kind = kind
		item.Hydration = &v
	case models.PreviewConceptBrief:
		v, err := DecodeConceptBrief([]byte(diff.Raw))
		if err != nil {
			return item, err
		}
		item.Kind = kind
		item.ConceptBrief = &v
	}
	return item, nil
}
