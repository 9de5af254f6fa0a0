// Package globalsync merges a project-local learning log into the shared
// global log and imports globally validated insights back into the project.
package globalsync

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/rcliao/learning-tracker/internal/config"
	"github.com/rcliao/learning-tracker/internal/logging"
	"github.com/rcliao/learning-tracker/internal/metrics"
	"github.com/rcliao/learning-tracker/internal/model"
	"github.com/rcliao/learning-tracker/internal/signature"
	"github.com/rcliao/learning-tracker/internal/store"
)

// Report summarises one sync run.
type Report struct {
	RunID       string `json:"run_id"`
	Uploaded    int    `json:"uploaded"`
	Downloaded  int    `json:"downloaded"`
	TotalGlobal int    `json:"total_global"`
	TotalLocal  int    `json:"total_local"`
}

// Coordinator syncs one local scope with one global scope.
type Coordinator struct {
	cfg               config.SyncConfig
	successConfidence float64
	local             store.Store
	global            store.Store
	logger            *zap.Logger
	metrics           *metrics.Metrics
	entropy           *rand.Rand
}

// New creates a coordinator. m may be nil.
func New(cfg *config.Config, local, global store.Store, logger *zap.Logger, m *metrics.Metrics) *Coordinator {
	return &Coordinator{
		cfg:               cfg.Sync,
		successConfidence: cfg.Analysis.SuccessConfidence,
		local:             local,
		global:            global,
		logger:            logging.OrNop(logger).Named("sync"),
		metrics:           m,
		entropy:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *Coordinator) newRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), c.entropy).String()
}

// Sync uploads local events missing from the global log, recomputes global
// insights and imports the relevant ones into the local insight index.
//
// Sync is not transactional. When a write fails the report still carries
// the attempted counts and the error is returned alongside it; running Sync
// again is safe because uploads are deduplicated by event id.
func (c *Coordinator) Sync(ctx context.Context) (Report, error) {
	rep := Report{RunID: c.newRunID()}
	logger := c.logger.With(zap.String("run_id", rep.RunID))

	localEvents, err := c.local.Events(ctx)
	if err != nil {
		return rep, fmt.Errorf("load local events: %w", err)
	}
	globalEvents, err := c.global.Events(ctx)
	if err != nil {
		return rep, fmt.Errorf("load global events: %w", err)
	}
	rep.TotalLocal = len(localEvents)

	var errs []error
	fresh := store.NewEntries(globalEvents, localEvents)
	rep.Uploaded = len(fresh)
	if len(fresh) > 0 {
		if err := c.global.AppendMany(ctx, fresh); err != nil {
			logger.Error("global upload failed", zap.Int("attempted", len(fresh)), zap.Error(err))
			c.metrics.StorageError("write")
			errs = append(errs, fmt.Errorf("upload: %w", err))
		}
	}
	globalEvents = append(globalEvents, fresh...)
	rep.TotalGlobal = len(globalEvents)

	records, err := c.local.Insights(ctx)
	if err != nil {
		return rep, errors.Join(append(errs, fmt.Errorf("load local insights: %w", err))...)
	}
	for _, gi := range c.GlobalInsights(globalEvents) {
		if !c.Relevant(gi) {
			continue
		}
		records[gi.Key] = model.InsightRecord{
			Count:        gi.Frequency,
			SuccessCount: gi.SuccessCount,
			LastUpdated:  gi.LastSeen,
			Examples:     []model.Example{},
			Source:       model.SourceGlobal,
			Projects:     gi.Projects,
			SuccessRate:  gi.SuccessRate,
		}
		rep.Downloaded++
	}
	if err := c.local.SaveInsights(ctx, records); err != nil {
		logger.Error("saving imported insights failed", zap.Error(err))
		c.metrics.StorageError("write")
		errs = append(errs, fmt.Errorf("import: %w", err))
	}

	c.metrics.Synced(rep.Uploaded, rep.Downloaded)
	logger.Info("sync complete",
		zap.Int("uploaded", rep.Uploaded),
		zap.Int("downloaded", rep.Downloaded),
		zap.Int("total_global", rep.TotalGlobal),
		zap.Int("total_local", rep.TotalLocal))
	return rep, errors.Join(errs...)
}

// GlobalInsights groups events by agent and category and summarises every
// group holding at least GlobalMinFrequency events. Success here counts
// confidence alone.
func (c *Coordinator) GlobalInsights(events []model.LearningEvent) []model.GlobalInsight {
	var out []model.GlobalInsight
	for _, b := range signature.ByAgentCategory(events) {
		if len(b.Events) < c.cfg.GlobalMinFrequency {
			continue
		}
		gi := model.GlobalInsight{
			Key:       b.Key,
			Agent:     b.Events[0].Agent,
			Category:  b.Events[0].Category,
			Frequency: len(b.Events),
		}
		projects := map[string]bool{}
		for _, e := range b.Events {
			projects[e.Project] = true
			if e.Confidence > c.successConfidence {
				gi.SuccessCount++
			}
			if e.Timestamp.After(gi.LastSeen) {
				gi.LastSeen = e.Timestamp
			}
		}
		for p := range projects {
			gi.Projects = append(gi.Projects, p)
		}
		sort.Strings(gi.Projects)
		gi.SuccessRate = float64(gi.SuccessCount) / float64(gi.Frequency)
		out = append(out, gi)
	}
	return out
}

// Relevant reports whether a global insight should be imported: it must
// both exceed the success rate threshold and span more than the minimum
// number of projects.
func (c *Coordinator) Relevant(gi model.GlobalInsight) bool {
	return gi.SuccessRate > c.cfg.RelevanceSuccessRate &&
		len(gi.Projects) > c.cfg.RelevanceMinProjects
}
