package store

import (
	"context"

	"github.com/rcliao/learning-tracker/internal/model"
)

// MergeResult reports the outcome of merging one scope into another.
type MergeResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// NewEntries returns the events of src whose id is absent from dst, in src
// order. Repeated ids within src are taken once.
func NewEntries(dst, src []model.LearningEvent) []model.LearningEvent {
	seen := make(map[string]bool, len(dst))
	for _, e := range dst {
		seen[e.ID] = true
	}
	var fresh []model.LearningEvent
	for _, e := range src {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		fresh = append(fresh, e)
	}
	return fresh
}

// Merge appends the events of src that dst does not hold yet. Merging the
// same source twice imports nothing the second time.
func Merge(ctx context.Context, dst, src Store) (MergeResult, error) {
	srcEvents, err := src.Events(ctx)
	if err != nil {
		return MergeResult{}, err
	}
	return Import(ctx, dst, srcEvents)
}

// Import appends the given events to dst, skipping ids it already holds.
func Import(ctx context.Context, dst Store, events []model.LearningEvent) (MergeResult, error) {
	dstEvents, err := dst.Events(ctx)
	if err != nil {
		return MergeResult{}, err
	}
	for i := range events {
		ensureID(&events[i])
	}

	fresh := NewEntries(dstEvents, events)
	res := MergeResult{Imported: len(fresh), Skipped: len(events) - len(fresh)}
	if len(fresh) == 0 {
		return res, nil
	}
	return res, dst.AppendMany(ctx, fresh)
}
