package models

import "time"

// Metadata represents the meta.json structure for a stored snapshot
type Metadata struct {
	CreatedAt       time.Time `json:"created_at"`
	Topic           string    `json:"topic"`
	Root            string    `json:"root"`
	RelatedBranch   string    `json:"related_branch,omitempty"`
	MainCommit      string    `json:"main_commit"`
	Tags            []string  `json:"tags,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Artifacts       int       `json:"artifacts"`
	ExternalContext int       `json:"external_context"`
}
