// Package recommend matches a runtime context against learned patterns and
// returns their recommendations.
package recommend

import (
	"context"

	"go.uber.org/zap"

	"github.com/rcliao/learning-tracker/internal/analyzer"
	"github.com/rcliao/learning-tracker/internal/config"
	"github.com/rcliao/learning-tracker/internal/logging"
	"github.com/rcliao/learning-tracker/internal/model"
)

// Ranker produces ranked insights; *analyzer.Analyzer satisfies it.
type Ranker interface {
	Analyze(ctx context.Context, f analyzer.Filter) ([]model.PatternInsight, error)
}

// Engine serves recommendations for an agent in a given context.
type Engine struct {
	cfg    config.AnalysisConfig
	ranker Ranker
	logger *zap.Logger
}

// New creates an engine backed by r.
func New(cfg config.AnalysisConfig, r Ranker, logger *zap.Logger) *Engine {
	return &Engine{cfg: cfg, ranker: r, logger: logging.OrNop(logger).Named("recommend")}
}

// Recommend returns up to MaxRecommendations distinct recommendations from
// the agent's ranked insights whose stored contexts match query, in rank
// order.
func (e *Engine) Recommend(ctx context.Context, agent string, query model.Context) ([]string, error) {
	insights, err := e.ranker.Analyze(ctx, analyzer.Filter{Agent: agent})
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	out := []string{}
	for _, in := range insights {
		if !AnyMatch(query, in.Contexts, e.cfg.ContextMatchRatio) {
			continue
		}
		for _, r := range in.Recommendations {
			if seen[r] {
				continue
			}
			seen[r] = true
			out = append(out, r)
		}
	}
	if len(out) > e.cfg.MaxRecommendations {
		out = out[:e.cfg.MaxRecommendations]
	}

	e.logger.Debug("served recommendations",
		zap.String("agent", agent),
		zap.Int("insights", len(insights)),
		zap.Int("recommendations", len(out)))
	return out, nil
}

// MatchRatio returns the share of pattern's keys present in query with an
// equal value. ok is false for an empty pattern, whose ratio is undefined.
func MatchRatio(query, pattern model.Context) (ratio float64, ok bool) {
	if len(pattern) == 0 {
		return 0, false
	}
	matches := 0
	for k, v := range pattern {
		if qv, found := query[k]; found && model.ValuesEqual(qv, v) {
			matches++
		}
	}
	return float64(matches) / float64(len(pattern)), true
}

// Matches reports whether query covers at least threshold of pattern.
func Matches(query, pattern model.Context, threshold float64) bool {
	ratio, ok := MatchRatio(query, pattern)
	return ok && ratio >= threshold
}

// AnyMatch reports whether query matches any of the patterns.
func AnyMatch(query model.Context, patterns []model.Context, threshold float64) bool {
	for _, p := range patterns {
		if Matches(query, p, threshold) {
			return true
		}
	}
	return false
}
