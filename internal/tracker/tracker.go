// Package tracker wires the learning components for one project scope and
// the shared global scope.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/learning-tracker/internal/analyzer"
	"github.com/rcliao/learning-tracker/internal/config"
	"github.com/rcliao/learning-tracker/internal/globalsync"
	"github.com/rcliao/learning-tracker/internal/insight"
	"github.com/rcliao/learning-tracker/internal/logging"
	"github.com/rcliao/learning-tracker/internal/metrics"
	"github.com/rcliao/learning-tracker/internal/model"
	"github.com/rcliao/learning-tracker/internal/recommend"
	"github.com/rcliao/learning-tracker/internal/store"
)

// ErrInvalidConfidence is returned for confidences outside [0, 1].
var ErrInvalidConfidence = errors.New("confidence must be within [0, 1]")

// RecordParams holds parameters for recording a learning event.
type RecordParams struct {
	Agent      string
	Category   string
	Context    model.Context
	Outcome    string
	Confidence float64
	Tags       []string
}

// Tracker records learning events and answers pattern queries.
type Tracker struct {
	cfg     *config.Config
	project string
	local   store.Store
	global  store.Store

	generator *insight.Generator
	analyzer  *analyzer.Analyzer
	engine    *recommend.Engine
	syncer    *globalsync.Coordinator

	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the clock used to stamp events and window analyses.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// WithProject overrides the project name stamped on recorded events.
func WithProject(name string) Option {
	return func(t *Tracker) { t.project = name }
}

// Open opens the local and global stores described by cfg.
func Open(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Tracker, error) {
	local, err := store.Open(cfg.Storage.Backend, cfg.ProjectMemoryDir(), store.ScopeLocal, logger)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	global, err := store.Open(cfg.Storage.Backend, cfg.GlobalMemoryDir(), store.ScopeGlobal, logger)
	if err != nil {
		local.Close()
		return nil, fmt.Errorf("open global store: %w", err)
	}
	return New(cfg, local, global, logger, opts...), nil
}

// New creates a tracker over already opened stores.
func New(cfg *config.Config, local, global store.Store, logger *zap.Logger, opts ...Option) *Tracker {
	base := logging.OrNop(logger)
	t := &Tracker{
		cfg:     cfg,
		project: cfg.ProjectName(),
		local:   local,
		global:  global,
		logger:  base.Named("tracker"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.generator = insight.New(cfg.Analysis, local, base)
	t.analyzer = analyzer.New(cfg.Analysis, local, t.generator, base, analyzer.WithClock(t.now))
	t.engine = recommend.New(cfg.Analysis, t.analyzer, base)
	t.syncer = globalsync.New(cfg, local, global, base, t.metrics)
	return t
}

// Record appends a learning event to the local log and updates its rolling
// insight record. The id is returned even when persisting fails; the
// storage error is returned alongside it and nothing is rolled back.
func (t *Tracker) Record(ctx context.Context, p RecordParams) (string, error) {
	if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 1 {
		return "", fmt.Errorf("%w: got %v", ErrInvalidConfidence, p.Confidence)
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	ctxMap := p.Context
	if ctxMap == nil {
		ctxMap = model.Context{}
	}

	e := model.LearningEvent{
		Timestamp:  t.now().UTC(),
		Agent:      p.Agent,
		Project:    t.project,
		Category:   p.Category,
		Context:    ctxMap,
		Outcome:    p.Outcome,
		Confidence: p.Confidence,
		Tags:       tags,
	}
	e.ID = model.EventID(e.Timestamp, e.Agent, e.Category, e.Context, e.Outcome)

	var errs []error
	if _, err := t.local.Append(ctx, e); err != nil {
		t.metrics.StorageError("write")
		errs = append(errs, err)
	}
	if _, err := t.generator.Update(ctx, e); err != nil {
		t.metrics.StorageError("write")
		errs = append(errs, err)
	}
	t.metrics.RecordEvent(e.Agent, e.Category)

	if family, ok := t.cfg.Taxonomy.FamilyOf(e.Category); ok {
		t.logger.Debug("recorded learning event",
			zap.String("id", e.ID), zap.String("agent", e.Agent),
			zap.String("category", e.Category), zap.String("family", family))
	} else {
		t.logger.Debug("recorded learning event outside the taxonomy",
			zap.String("id", e.ID), zap.String("agent", e.Agent),
			zap.String("category", e.Category))
	}
	return e.ID, errors.Join(errs...)
}

// Analyze returns ranked pattern insights of the local log.
func (t *Tracker) Analyze(ctx context.Context, f analyzer.Filter) ([]model.PatternInsight, error) {
	insights, err := t.analyzer.Analyze(ctx, f)
	if err != nil {
		return nil, err
	}
	t.metrics.Ranked(len(insights))
	return insights, nil
}

// Recommend returns recommendations for agent in the given context.
func (t *Tracker) Recommend(ctx context.Context, agent string, query model.Context) ([]string, error) {
	recs, err := t.engine.Recommend(ctx, agent, query)
	if err != nil {
		return nil, err
	}
	t.metrics.Served(len(recs))
	return recs, nil
}

// Sync merges the local log into the global log and imports relevant
// global insights.
func (t *Tracker) Sync(ctx context.Context) (globalsync.Report, error) {
	return t.syncer.Sync(ctx)
}

// Insights returns the local rolling insight index.
func (t *Tracker) Insights(ctx context.Context) (map[string]model.InsightRecord, error) {
	return t.local.Insights(ctx)
}

// Local returns the project-local store.
func (t *Tracker) Local() store.Store { return t.local }

// Global returns the global store.
func (t *Tracker) Global() store.Store { return t.global }

// Project returns the project name stamped on recorded events.
func (t *Tracker) Project() string { return t.project }

// Close closes both stores.
func (t *Tracker) Close() error {
	return errors.Join(t.local.Close(), t.global.Close())
}
