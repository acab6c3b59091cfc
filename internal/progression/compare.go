package progression

import (
	"fmt"

	"github.com/pders01/reflexion/internal/models"
)

// DiffCollection classifies every item of left and right by key.
//
// A key only in right is added, only in left is removed, in both with
// equal values is unchanged, and in both with differing values is
// modified (the right value is kept). A duplicate key on either side
// fails with ErrInvalidSnapshot.
//
// Output order follows the scan: left order for removed/unchanged/modified,
// right order for added.
func DiffCollection[K comparable, V comparable](left, right []V, key func(V) K) (models.Comparison[V], error) {
	result := models.Comparison[V]{
		Added:     []V{},
		Removed:   []V{},
		Modified:  []V{},
		Unchanged: []V{},
	}

	rightByKey := make(map[K]V, len(right))
	for _, item := range right {
		k := key(item)
		if _, dup := rightByKey[k]; dup {
			return models.Comparison[V]{}, fmt.Errorf("%w: duplicate key %v on right side", ErrInvalidSnapshot, k)
		}
		rightByKey[k] = item
	}

	leftKeys := make(map[K]struct{}, len(left))
	for _, item := range left {
		k := key(item)
		if _, dup := leftKeys[k]; dup {
			return models.Comparison[V]{}, fmt.Errorf("%w: duplicate key %v on left side", ErrInvalidSnapshot, k)
		}
		leftKeys[k] = struct{}{}

		other, ok := rightByKey[k]
		switch {
		case !ok:
			result.Removed = append(result.Removed, item)
		case other == item:
			result.Unchanged = append(result.Unchanged, item)
		default:
			result.Modified = append(result.Modified, other)
		}
	}

	for _, item := range right {
		if _, ok := leftKeys[key(item)]; !ok {
			result.Added = append(result.Added, item)
		}
	}

	return result, nil
}

// DiffArtifacts compares artifact ids. Artifacts are never modified.
func DiffArtifacts(left, right []string) (models.Comparison[string], error) {
	return DiffCollection(left, right, artifactKey)
}

// DiffExternalContext compares context files keyed by path
func DiffExternalContext(left, right []models.ContextFile) (models.Comparison[models.ContextFile], error) {
	return DiffCollection(left, right, contextKey)
}

func artifactKey(id string) string { return id }

func contextKey(f models.ContextFile) string { return f.Path }

// ValidateSnapshot checks the uniqueness invariants of a snapshot and
// rejects empty artifact ids and context paths.
func ValidateSnapshot(s models.Snapshot) error {
	seen := make(map[string]struct{}, len(s.Artifacts))
	for _, id := range s.Artifacts {
		if id == "" {
			return fmt.Errorf("%w: empty artifact id", ErrInvalidSnapshot)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate artifact %q", ErrInvalidSnapshot, id)
		}
		seen[id] = struct{}{}
	}

	paths := make(map[string]struct{}, len(s.ExternalContext))
	for _, f := range s.ExternalContext {
		if f.Path == "" {
			return fmt.Errorf("%w: context file %q has no path", ErrInvalidSnapshot, f.Name)
		}
		if _, dup := paths[f.Path]; dup {
			return fmt.Errorf("%w: duplicate context path %q", ErrInvalidSnapshot, f.Path)
		}
		paths[f.Path] = struct{}{}
	}

	return nil
}
