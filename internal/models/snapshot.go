package models

import (
	"fmt"
	"path"
	"time"
)

// TimestampLayout is the timestamp format used in snapshot branch names
const TimestampLayout = "2006-01-02T1504"

// ContextFile describes an external context file attached to a project
type ContextFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Snapshot is one state of a project's knowledge base.
// Artifact ids are unique and external context files are unique by path.
type Snapshot struct {
	Artifacts       []string      `json:"artifacts"`
	ExternalContext []ContextFile `json:"external_context"`
}

// Size returns the number of tracked items across all collections
func (s Snapshot) Size() int {
	return len(s.Artifacts) + len(s.ExternalContext)
}

// StoredSnapshot is a snapshot persisted on a snapshot branch
type StoredSnapshot struct {
	Timestamp time.Time
	Topic     string
	Branch    string
	Metadata  *Metadata
}

// BranchName generates the branch name from timestamp and topic
// Format: snapshot/YYYY-MM-DDTHHMM/topic-slug
func BranchName(timestamp time.Time, topic string) string {
	return fmt.Sprintf("snapshot/%s/%s",
		timestamp.Format(TimestampLayout),
		topic,
	)
}

// StorePath generates the directory holding a stored snapshot
// Format: <dir>/YYYY-MM-DDTHHMM/topic-slug
func StorePath(dir string, timestamp time.Time, topic string) string {
	return path.Join(dir, timestamp.Format(TimestampLayout), topic)
}

// SnapshotPath returns the path to snapshot.json for a stored snapshot
func SnapshotPath(dir string, timestamp time.Time, topic string) string {
	return path.Join(StorePath(dir, timestamp, topic), "snapshot.json")
}

// MetadataPath returns the path to meta.json for a stored snapshot
func MetadataPath(dir string, timestamp time.Time, topic string) string {
	return path.Join(StorePath(dir, timestamp, topic), "meta.json")
}
