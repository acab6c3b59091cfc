package models

// Count is the completed/total breakdown of one collection
type Count struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Remaining int `json:"remaining"`
}

// HydrationMetadata summarises overall hydration progress
type HydrationMetadata struct {
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	CompletionPercentage float64 `json:"completion_percentage"`
	Artifacts            Count   `json:"artifacts"`
	ExternalContext      Count   `json:"external_context"`
}

// HydrationDiffView pairs the work done so far with the work remaining
type HydrationDiffView struct {
	Type          string            `json:"type"`
	ProgressDiff  ProgressionDiff   `json:"progress_diff"`
	RemainingDiff ProgressionDiff   `json:"remaining_diff"`
	Metadata      HydrationMetadata `json:"metadata"`
}

// BriefOption is one generated concept brief candidate
type BriefOption struct {
	Summary         string   `json:"summary"`
	ComplianceScore *float64 `json:"compliance_score,omitempty"`
}

// BriefMetadata describes a set of concept brief options
type BriefMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	NumOptions  int    `json:"num_options"`
}

// ConceptBriefDiffView holds mutually exclusive options with one recommended
type ConceptBriefDiffView struct {
	Options          []BriefOption `json:"options"`
	RecommendedIndex int           `json:"recommended_index"`
	Metadata         BriefMetadata `json:"metadata"`
}
