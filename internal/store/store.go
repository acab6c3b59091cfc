// Package store keeps snapshots on immutable git branches named
// snapshot/YYYY-MM-DDTHHMM/topic.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pders01/reflexion/internal/git"
	"github.com/pders01/reflexion/internal/models"
	"github.com/pders01/reflexion/internal/progression"
)

// ErrNotFound reports a snapshot branch that does not exist
var ErrNotFound = errors.New("snapshot not found")

// ErrExists reports an attempt to overwrite a snapshot
var ErrExists = errors.New("snapshot already exists")

// timeNow is replaced in tests
var timeNow = time.Now

// Store reads and writes snapshots in the git repository of the working directory
type Store struct {
	Dir string
}

// New creates a store keeping files under dir on each snapshot branch
func New(dir string) *Store {
	if dir == "" {
		dir = "snapshots"
	}
	return &Store{Dir: dir}
}

// SaveOptions carries the optional metadata of a new snapshot
type SaveOptions struct {
	Tags  []string
	Notes string
}

// Save validates snap and commits it to a new snapshot branch.
// The working tree of the current branch is not touched.
func (s *Store) Save(topic string, snap models.Snapshot, opts SaveOptions) (*models.StoredSnapshot, error) {
	if !git.IsGitRepo() {
		return nil, fmt.Errorf("not a git repository")
	}
	topic = Slugify(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if err := progression.ValidateSnapshot(snap); err != nil {
		return nil, err
	}

	currentBranch, err := git.GetCurrentBranch()
	if err != nil {
		return nil, err
	}
	currentCommit, err := git.GetCurrentCommit()
	if err != nil {
		return nil, err
	}

	timestamp := timeNow().Truncate(time.Minute)
	branch := models.BranchName(timestamp, topic)
	if git.BranchExists(branch) {
		return nil, fmt.Errorf("%w: %s (snapshots are immutable)", ErrExists, branch)
	}

	if err := git.CreateBranch(branch); err != nil {
		return nil, err
	}

	meta := &models.Metadata{
		CreatedAt:       timestamp,
		Topic:           topic,
		Root:            branch,
		RelatedBranch:   currentBranch,
		MainCommit:      currentCommit,
		Tags:            opts.Tags,
		Notes:           opts.Notes,
		Artifacts:       len(snap.Artifacts),
		ExternalContext: len(snap.ExternalContext),
	}

	if err := s.commit(branch, timestamp, topic, snap, meta); err != nil {
		if delErr := git.DeleteBranch(branch, true); delErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove branch %s: %v\n", branch, delErr)
		}
		return nil, err
	}

	return &models.StoredSnapshot{
		Timestamp: timestamp,
		Topic:     topic,
		Branch:    branch,
		Metadata:  meta,
	}, nil
}

func (s *Store) commit(branch string, timestamp time.Time, topic string, snap models.Snapshot, meta *models.Metadata) error {
	worktreePath, err := os.MkdirTemp("", "reflexion-snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create worktree directory: %w", err)
	}
	if err := git.CreateWorktree(worktreePath, branch); err != nil {
		os.RemoveAll(worktreePath)
		return err
	}
	defer func() {
		if err := git.RemoveWorktree(worktreePath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove worktree: %v\n", err)
		}
	}()

	// snapshot branches only carry snapshot files
	if err := git.RemoveAllFilesFromIndexInDir(worktreePath); err != nil {
		return err
	}

	storePath := models.StorePath(s.Dir, timestamp, topic)
	if err := os.MkdirAll(filepath.Join(worktreePath, storePath), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	if err := writeJSON(filepath.Join(worktreePath, models.SnapshotPath(s.Dir, timestamp, topic)), snap); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(worktreePath, models.MetadataPath(s.Dir, timestamp, topic)), meta); err != nil {
		return err
	}

	if err := git.AddFilesInDir(worktreePath, storePath); err != nil {
		return err
	}

	msg := fmt.Sprintf("snapshot: %s\n\nFrom: %s @ %s\nArtifacts: %d\nExternal context: %d",
		topic, meta.RelatedBranch, shortCommit(meta.MainCommit), meta.Artifacts, meta.ExternalContext)
	return git.CommitInDirNoVerify(worktreePath, msg)
}

// Load reads the snapshot stored on the branch for timestamp and topic
func (s *Store) Load(timestamp time.Time, topic string) (models.Snapshot, error) {
	branch := models.BranchName(timestamp, topic)
	if !git.BranchExists(branch) {
		return models.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, branch)
	}

	data, err := git.ShowFile(branch, models.SnapshotPath(s.Dir, timestamp, topic))
	if err != nil {
		return models.Snapshot{}, err
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %s: %v", progression.ErrInvalidSnapshot, branch, err)
	}
	if err := progression.ValidateSnapshot(snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", branch, err)
	}
	return snap, nil
}

// LoadRef loads a snapshot from a "YYYY-MM-DDTHHMM/topic" reference
func (s *Store) LoadRef(ref string) (models.Snapshot, error) {
	timestamp, topic, err := ParseRef(ref)
	if err != nil {
		return models.Snapshot{}, err
	}
	return s.Load(timestamp, topic)
}

// Metadata reads meta.json of a stored snapshot
func (s *Store) Metadata(timestamp time.Time, topic string) (*models.Metadata, error) {
	branch := models.BranchName(timestamp, topic)
	if !git.BranchExists(branch) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, branch)
	}

	data, err := git.ShowFile(branch, models.MetadataPath(s.Dir, timestamp, topic))
	if err != nil {
		return nil, err
	}

	var meta models.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &meta, nil
}

// List returns all stored snapshots, newest first. Metadata is nil when it
// cannot be read.
func (s *Store) List() ([]models.StoredSnapshot, error) {
	branches, err := git.ListBranches("snapshot/*")
	if err != nil {
		return nil, err
	}

	var snapshots []models.StoredSnapshot
	for _, branch := range branches {
		info, err := ParseBranch(branch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to parse branch %s: %v\n", branch, err)
			continue
		}
		if meta, err := s.Metadata(info.Timestamp, info.Topic); err == nil {
			info.Metadata = meta
		}
		snapshots = append(snapshots, info)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})
	return snapshots, nil
}

// ParseBranch parses snapshot/YYYY-MM-DDTHHMM/topic
func ParseBranch(branch string) (models.StoredSnapshot, error) {
	parts := strings.Split(branch, "/")
	if len(parts) != 3 {
		return models.StoredSnapshot{}, fmt.Errorf("invalid snapshot branch format")
	}
	if parts[0] != "snapshot" {
		return models.StoredSnapshot{}, fmt.Errorf("not a snapshot branch")
	}

	timestamp, err := time.Parse(models.TimestampLayout, parts[1])
	if err != nil {
		return models.StoredSnapshot{}, fmt.Errorf("invalid timestamp format: %w", err)
	}

	return models.StoredSnapshot{
		Timestamp: timestamp,
		Topic:     parts[2],
		Branch:    branch,
	}, nil
}

// ParseRef parses a "YYYY-MM-DDTHHMM/topic" snapshot reference
func ParseRef(ref string) (time.Time, string, error) {
	ts, topic, ok := strings.Cut(strings.TrimPrefix(ref, "snapshot/"), "/")
	if !ok || topic == "" || strings.Contains(topic, "/") {
		return time.Time{}, "", fmt.Errorf("invalid snapshot reference %q (use YYYY-MM-DDTHHMM/topic)", ref)
	}
	timestamp, err := time.Parse(models.TimestampLayout, ts)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid timestamp format (use YYYY-MM-DDTHHMM): %w", err)
	}
	return timestamp, topic, nil
}

// IsRef reports whether arg looks like a snapshot reference rather than a file
func IsRef(arg string) bool {
	if _, err := os.Stat(arg); err == nil {
		return false
	}
	_, _, err := ParseRef(arg)
	return err == nil
}

// Slugify lowercases s and keeps only letters, digits and hyphens
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func shortCommit(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}
