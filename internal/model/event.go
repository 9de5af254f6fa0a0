// Package model defines the core learning data types.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// IDLength is the number of hex characters kept from an event's content hash.
// Shorter ids are easier to read but collide sooner.
const IDLength = 16

// Context describes the circumstances of a learning event.
type Context map[string]any

// LearningEvent is a single recorded learning event. Events are never
// mutated after they are appended to a store.
type LearningEvent struct {
	ID         string    `json:"hash_id"`
	Timestamp  time.Time `json:"timestamp"`
	Agent      string    `json:"agent"`
	Project    string    `json:"project"`
	Category   string    `json:"pattern_type"`
	Context    Context   `json:"context"`
	Outcome    string    `json:"outcome"`
	Confidence float64   `json:"confidence"`
	Tags       []string  `json:"tags"`
}

// UnmarshalJSON accepts RFC 3339 timestamps and the zone-less local
// ISO-8601 timestamps written by older trackers.
func (e *LearningEvent) UnmarshalJSON(b []byte) error {
	type alias LearningEvent
	aux := struct {
		*alias
		Timestamp string `json:"timestamp"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	ts, err := ParseTimestamp(aux.Timestamp)
	if err != nil {
		return err
	}
	e.Timestamp = ts
	return nil
}

// MarshalJSON writes the timestamp with nanosecond precision in UTC.
func (e LearningEvent) MarshalJSON() ([]byte, error) {
	type alias LearningEvent
	return json.Marshal(struct {
		alias
		Timestamp string `json:"timestamp"`
	}{alias: alias(e), Timestamp: FormatTimestamp(e.Timestamp)})
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
}

// Older trackers wrote local wall-clock time without a zone.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses a persisted event timestamp and returns it in UTC.
// Zone-less values are interpreted in the host's local zone.
func ParseTimestamp(s string) (time.Time, error) {
	return parseTimestampIn(s, time.Local)
}

func parseTimestampIn(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// FormatTimestamp renders t in the canonical persisted form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// EventID computes the content hash of an event from its timestamp, agent,
// category, context and outcome. Events that agree on all five share an id.
func EventID(ts time.Time, agent, category string, ctx Context, outcome string) string {
	h := sha256.New()
	h.Write([]byte(FormatTimestamp(ts)))
	h.Write([]byte(agent))
	h.Write([]byte(category))
	h.Write(ctx.Canonical())
	h.Write([]byte(outcome))
	return hex.EncodeToString(h.Sum(nil))[:IDLength]
}

// Canonical returns the context encoded as JSON with sorted keys.
func (c Context) Canonical() []byte {
	if len(c) == 0 {
		return []byte("{}")
	}
	b, err := json.Marshal(map[string]any(c))
	if err != nil {
		return []byte(fmt.Sprint(map[string]any(c)))
	}
	return b
}

// Clone returns a shallow copy of the context.
func (c Context) Clone() Context {
	if c == nil {
		return nil
	}
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
