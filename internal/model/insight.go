package model

import "time"

// PatternInsight summarises a bucket of events sharing a signature.
type PatternInsight struct {
	PatternID       string    `json:"pattern_id"`
	Category        string    `json:"pattern_type"`
	Signature       string    `json:"signature"`
	Frequency       int       `json:"frequency"`
	SuccessRate     float64   `json:"success_rate"`
	Contexts        []Context `json:"contexts"`
	Agents          []string  `json:"agents"`
	Projects        []string  `json:"projects"`
	Recommendations []string  `json:"recommendations"`
	LastSeen        time.Time `json:"last_seen"`
}

// Example is a raw sample kept in a rolling insight record.
type Example struct {
	Context    Context `json:"context"`
	Outcome    string  `json:"outcome"`
	Confidence float64 `json:"confidence"`
}

// SourceGlobal marks rolling records imported from the global scope.
const SourceGlobal = "global"

// InsightRecord is the incrementally maintained summary for one
// agent+category pair. Records imported from the global scope additionally
// carry the projects and success rate they were promoted with.
type InsightRecord struct {
	Count        int       `json:"count"`
	SuccessCount int       `json:"success_count"`
	LastUpdated  time.Time `json:"last_updated"`
	Examples     []Example `json:"examples"`
	Source       string    `json:"source,omitempty"`
	Projects     []string  `json:"projects,omitempty"`
	SuccessRate  float64   `json:"success_rate,omitempty"`
}

// GlobalInsight is a cross-project pattern computed during sync.
type GlobalInsight struct {
	Key          string    `json:"key"`
	Agent        string    `json:"agent"`
	Category     string    `json:"pattern_type"`
	Frequency    int       `json:"frequency"`
	SuccessCount int       `json:"success_count"`
	Projects     []string  `json:"projects"`
	SuccessRate  float64   `json:"success_rate"`
	LastSeen     time.Time `json:"last_seen"`
}
