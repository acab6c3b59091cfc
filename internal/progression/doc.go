// Package progression computes structured diffs between two knowledge-base
// snapshots and derives the completion metrics shown for hydration.
//
// The pipeline runs leaves first: DiffCollection classifies one keyed
// collection, BuildProgressionDiff combines the collections of a snapshot
// pair into a ProgressionDiff, and the aggregator turns per-collection
// completed/total counts into a single completion percentage.
// BuildHydrationView ties them together for a start, current and target
// snapshot.
//
// Everything here is a pure function over immutable values.
package progression
