// Package analyzer turns the event log into ranked pattern insights.
package analyzer

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/learning-tracker/internal/config"
	"github.com/rcliao/learning-tracker/internal/insight"
	"github.com/rcliao/learning-tracker/internal/logging"
	"github.com/rcliao/learning-tracker/internal/model"
	"github.com/rcliao/learning-tracker/internal/signature"
	"github.com/rcliao/learning-tracker/internal/store"
)

// Filter narrows the events considered by Analyze.
type Filter struct {
	Agent    string
	Category string
	DaysBack int // 0 means the configured default
}

// Analyzer ranks recurring patterns of one store.
type Analyzer struct {
	cfg       config.AnalysisConfig
	store     store.Store
	generator *insight.Generator
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock overrides the clock used for the time window.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New creates an analyzer over s.
func New(cfg config.AnalysisConfig, s store.Store, g *insight.Generator, logger *zap.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		cfg:       cfg,
		store:     s,
		generator: g,
		logger:    logging.OrNop(logger).Named("analyzer"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns insights for buckets that are frequent and successful
// enough, ordered by frequency then success rate, both descending. Ties keep
// the order in which their signature was first seen. The log is reloaded on
// every call.
func (a *Analyzer) Analyze(ctx context.Context, f Filter) ([]model.PatternInsight, error) {
	events, err := a.store.Events(ctx)
	if err != nil {
		return nil, err
	}

	days := f.DaysBack
	if days <= 0 {
		days = a.cfg.DaysBack
	}
	cutoff := a.now().Add(-time.Duration(days) * 24 * time.Hour)

	filtered := make([]model.LearningEvent, 0, len(events))
	for _, e := range events {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		if f.Agent != "" && e.Agent != f.Agent {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		filtered = append(filtered, e)
	}

	buckets := signature.BySignature(filtered)
	insights := []model.PatternInsight{}
	for _, b := range buckets {
		if len(b.Events) < a.cfg.MinPatternFrequency {
			continue
		}
		in := a.generator.Score(b.Key, b.Events)
		if in.SuccessRate < a.cfg.MinConfidenceThreshold {
			continue
		}
		insights = append(insights, in)
	}

	sort.SliceStable(insights, func(i, j int) bool {
		if insights[i].Frequency != insights[j].Frequency {
			return insights[i].Frequency > insights[j].Frequency
		}
		return insights[i].SuccessRate > insights[j].SuccessRate
	})

	a.logger.Debug("analyzed patterns",
		zap.Int("events", len(filtered)),
		zap.Int("buckets", len(buckets)),
		zap.Int("insights", len(insights)))
	return insights, nil
}
