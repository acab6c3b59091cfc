package models

import "encoding/json"

// DecisionStatusPending marks a decision awaiting approval
const DecisionStatusPending = "pending"

// DecisionRecord is a persisted decision as returned by the backend
type DecisionRecord struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Status    string          `json:"status"`
	Args      json.RawMessage `json:"args,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

// PreviewKind identifies which view model a preview diff decodes into
type PreviewKind string

const (
	PreviewNone         PreviewKind = ""
	PreviewHydration    PreviewKind = "hydration"
	PreviewConceptBrief PreviewKind = "concept_brief"
)

// PreviewItem is a pending decision ready to be shown to the user
type PreviewItem struct {
	ID           string                `json:"id"`
	Type         string                `json:"type"`
	Title        string                `json:"title"`
	Summary      string                `json:"summary"`
	Status       string                `json:"status"`
	ThreadID     string                `json:"thread_id,omitempty"`
	Kind         PreviewKind           `json:"kind,omitempty"`
	Hydration    *HydrationDiffView    `json:"hydration,omitempty"`
	ConceptBrief *ConceptBriefDiffView `json:"concept_brief,omitempty"`
	PreviewError string                `json:"preview_error,omitempty"`
}

// ApplyRequest is the body sent to the backend to apply a decision
type ApplyRequest struct {
	DecisionID   string         `json:"decision_id" binding:"required"`
	ProposalType string         `json:"proposal_type" binding:"required"`
	Payload      map[string]any `json:"payload" binding:"required"`
}
