// Package insight scores buckets of learning events and maintains the
// rolling per-agent, per-category insight index.
package insight

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/rcliao/learning-tracker/internal/config"
	"github.com/rcliao/learning-tracker/internal/logging"
	"github.com/rcliao/learning-tracker/internal/model"
	"github.com/rcliao/learning-tracker/internal/signature"
	"github.com/rcliao/learning-tracker/internal/store"
)

// successMarker in an outcome marks the event successful regardless of
// its confidence.
const successMarker = "success"

// trigger maps an outcome keyword to the recommendation it yields.
type trigger struct {
	keyword        string
	recommendation string
}

var triggers = []trigger{
	{"refactor", "Consider refactoring similar code patterns"},
	{"test", "Add comprehensive tests for this pattern"},
	{"performance", "Monitor performance impact of similar changes"},
	{"documentation", "Document this pattern for future reference"},
}

// Generator scores event buckets and keeps the rolling insight index of one
// store up to date.
type Generator struct {
	cfg    config.AnalysisConfig
	store  store.Store
	logger *zap.Logger
}

// New creates a generator persisting rolling records into s.
func New(cfg config.AnalysisConfig, s store.Store, logger *zap.Logger) *Generator {
	return &Generator{
		cfg:    cfg,
		store:  s,
		logger: logging.OrNop(logger).Named("insight"),
	}
}

// IsSuccess reports whether an event counts as successful: its outcome
// mentions success or its confidence exceeds the success threshold.
func (g *Generator) IsSuccess(e model.LearningEvent) bool {
	return strings.Contains(strings.ToLower(e.Outcome), successMarker) ||
		e.Confidence > g.cfg.SuccessConfidence
}

// Score summarises a bucket of events sharing sig.
func (g *Generator) Score(sig string, events []model.LearningEvent) model.PatternInsight {
	in := model.PatternInsight{
		PatternID: signature.PatternID(sig),
		Signature: sig,
		Frequency: len(events),
		Contexts:  make([]model.Context, 0, len(events)),
	}
	if len(events) == 0 {
		return in
	}
	in.Category = events[0].Category

	var successful []model.LearningEvent
	agents := map[string]bool{}
	projects := map[string]bool{}
	for _, e := range events {
		if g.IsSuccess(e) {
			successful = append(successful, e)
		}
		agents[e.Agent] = true
		projects[e.Project] = true
		in.Contexts = append(in.Contexts, e.Context)
		if e.Timestamp.After(in.LastSeen) {
			in.LastSeen = e.Timestamp
		}
	}

	in.SuccessRate = float64(len(successful)) / float64(len(events))
	in.Agents = sortedKeys(agents)
	in.Projects = sortedKeys(projects)
	in.Recommendations = Recommendations(successful)
	return in
}

// Recommendations derives distinct recommendation strings from the outcomes
// of successful events.
func Recommendations(successful []model.LearningEvent) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, e := range successful {
		outcome := strings.ToLower(e.Outcome)
		for _, t := range triggers {
			if seen[t.recommendation] || !strings.Contains(outcome, t.keyword) {
				continue
			}
			seen[t.recommendation] = true
			out = append(out, t.recommendation)
		}
	}
	return out
}

// Apply folds e into rec and returns the updated record. The example ring
// keeps the most recent ExampleRingSize entries.
func (g *Generator) Apply(rec model.InsightRecord, e model.LearningEvent) model.InsightRecord {
	rec.Count++
	rec.LastUpdated = e.Timestamp
	if e.Confidence > g.cfg.SuccessConfidence {
		rec.SuccessCount++
	}

	examples := make([]model.Example, 0, len(rec.Examples)+1)
	examples = append(examples, rec.Examples...)
	examples = append(examples, model.Example{
		Context:    e.Context.Clone(),
		Outcome:    e.Outcome,
		Confidence: e.Confidence,
	})
	if n := g.cfg.ExampleRingSize; n > 0 && len(examples) > n {
		examples = examples[len(examples)-n:]
	}
	rec.Examples = examples
	return rec
}

// Update applies e to its rolling record without rescanning the event log
// and persists the index.
func (g *Generator) Update(ctx context.Context, e model.LearningEvent) (model.InsightRecord, error) {
	records, err := g.store.Insights(ctx)
	if err != nil {
		return model.InsightRecord{}, fmt.Errorf("load insights: %w", err)
	}

	key := signature.Key(e.Agent, e.Category)
	rec := g.Apply(records[key], e)
	records[key] = rec

	if err := g.store.SaveInsights(ctx, records); err != nil {
		return rec, err
	}
	g.logger.Debug("updated rolling insight",
		zap.String("key", key),
		zap.Int("count", rec.Count),
		zap.Int("success_count", rec.SuccessCount))
	return rec, nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
