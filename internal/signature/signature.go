// Package signature builds the grouping keys that bucket learning events
// into candidate patterns.
package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/rcliao/learning-tracker/internal/model"
)

const (
	// PatternIDLength is the number of hex characters kept from a
	// signature hash.
	PatternIDLength = 12

	// contextKeys is how many sorted context keys take part in a signature.
	contextKeys = 3
)

// Of returns the signature of an event: its category followed by the first
// three context keys in sorted order. Events with an empty context are
// grouped by category alone.
func Of(e model.LearningEvent) string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > contextKeys {
		keys = keys[:contextKeys]
	}
	return e.Category + "_" + strings.Join(keys, "_")
}

// PatternID hashes a signature into a short stable identifier.
func PatternID(sig string) string {
	sum := sha256.Sum256([]byte(sig))
	return hex.EncodeToString(sum[:])[:PatternIDLength]
}

// Key returns the rolling insight key for an agent and category.
func Key(agent, category string) string {
	return agent + "_" + category
}

// Bucket is a group of events sharing a key.
type Bucket struct {
	Key    string
	Events []model.LearningEvent
}

// Group buckets events by keyFn. Buckets appear in the order their first
// event was seen and keep their events in input order.
func Group(events []model.LearningEvent, keyFn func(model.LearningEvent) string) []Bucket {
	index := map[string]int{}
	var buckets []Bucket
	for _, e := range events {
		k := keyFn(e)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, Bucket{Key: k})
		}
		buckets[i].Events = append(buckets[i].Events, e)
	}
	return buckets
}

// BySignature groups events by Of.
func BySignature(events []model.LearningEvent) []Bucket {
	return Group(events, Of)
}

// ByAgentCategory groups events by Key.
func ByAgentCategory(events []model.LearningEvent) []Bucket {
	return Group(events, func(e model.LearningEvent) string {
		return Key(e.Agent, e.Category)
	})
}
