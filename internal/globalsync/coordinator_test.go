package globalsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/rcliao/learning-tracker/internal/config"
	"github.com/rcliao/learning-tracker/internal/logging"
	"github.com/rcliao/learning-tracker/internal/metrics"
	"github.com/rcliao/learning-tracker/internal/model"
	"github.com/rcliao/learning-tracker/internal/store"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ev(i int, agent, category, project string, confidence float64) model.LearningEvent {
	return model.LearningEvent{
		Timestamp:  base.Add(time.Duration(i) * time.Minute),
		Agent:      agent,
		Project:    project,
		Category:   category,
		Context:    model.Context{"i": float64(i)},
		Outcome:    "done",
		Confidence: confidence,
	}
}

type fixture struct {
	local, global store.Store
	coord         *Coordinator
	metrics       *metrics.Metrics
	logger        *logging.TestLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		local:   store.NewJSONStore(store.JSONPaths(t.TempDir(), store.ScopeLocal), nil),
		global:  store.NewJSONStore(store.JSONPaths(t.TempDir(), store.ScopeGlobal), nil),
		metrics: metrics.New(prometheus.NewRegistry()),
		logger:  logging.NewTestLogger(),
	}
	f.coord = New(config.Default(), f.local, f.global, f.logger.Logger, f.metrics)
	return f
}

func TestSync_UploadsOnlyMissing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var local []model.LearningEvent
	for i := 0; i < 5; i++ {
		e := ev(i, "sherlock", "bug_fix", "webapp", 0.9)
		e.ID = model.EventID(e.Timestamp, e.Agent, e.Category, e.Context, e.Outcome)
		local = append(local, e)
	}
	require.NoError(t, f.local.AppendMany(ctx, local))
	require.NoError(t, f.global.AppendMany(ctx, local[1:3]))

	rep, err := f.coord.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Uploaded)
	assert.Equal(t, 5, rep.TotalLocal)
	assert.Equal(t, 5, rep.TotalGlobal)
	assert.Len(t, rep.RunID, 26)

	global, _ := f.global.Events(ctx)
	assert.Len(t, global, 5)
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.SyncUploaded))
}

func TestSync_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 0; i < 4; i++ {
		f.local.Append(ctx, ev(i, "sherlock", "bug_fix", "webapp", 0.9))
	}

	first, err := f.coord.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Uploaded)

	second, err := f.coord.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Uploaded)
	assert.Equal(t, 4, second.TotalGlobal)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestSync_ImportsRelevantGlobalInsights(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Relevant: 6 events across 3 projects, all confident.
	var global []model.LearningEvent
	for i := 0; i < 6; i++ {
		global = append(global, ev(i, "sherlock", "bug_fix", fmt.Sprintf("p%d", i%3), 0.9))
	}
	// Too few projects.
	for i := 0; i < 6; i++ {
		global = append(global, ev(100+i, "leonardo", "refactor", fmt.Sprintf("p%d", i%2), 0.9))
	}
	// Success rate too low: 4/5 = 0.8 is not above 0.8.
	for i := 0; i < 5; i++ {
		c := 0.9
		if i == 0 {
			c = 0.1
		}
		global = append(global, ev(200+i, "edison", "automation", fmt.Sprintf("p%d", i), c))
	}
	// Too infrequent.
	for i := 0; i < 4; i++ {
		global = append(global, ev(300+i, "ada", "insight", fmt.Sprintf("p%d", i), 0.9))
	}
	require.NoError(t, f.global.AppendMany(ctx, global))

	require.NoError(t, f.local.SaveInsights(ctx, map[string]model.InsightRecord{
		"sherlock_bug_fix":  {Count: 1, SuccessCount: 1, Examples: []model.Example{{Outcome: "local"}}},
		"leonardo_refactor": {Count: 2},
	}))

	rep, err := f.coord.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Downloaded)
	assert.Equal(t, 0, rep.Uploaded)

	records, _ := f.local.Insights(ctx)
	imported := records["sherlock_bug_fix"]
	assert.Equal(t, model.SourceGlobal, imported.Source)
	assert.Equal(t, 6, imported.Count)
	assert.Equal(t, 6, imported.SuccessCount)
	assert.Equal(t, []string{"p0", "p1", "p2"}, imported.Projects)
	assert.Equal(t, 1.0, imported.SuccessRate)
	assert.Empty(t, imported.Examples, "import overwrites the local record")
	assert.Equal(t, 2, records["leonardo_refactor"].Count, "irrelevant insights leave local records alone")
	assert.NotContains(t, records, "edison_automation")
}

func TestGlobalInsights(t *testing.T) {
	f := newFixture(t)
	var events []model.LearningEvent
	for i, c := range []float64{0.5, 0.6, 0.7, 0.8, 0.9} {
		events = append(events, ev(i, "sherlock", "bug_fix", fmt.Sprintf("p%d", i%2), c))
	}
	events = append(events, ev(9, "x", "y", "p", 1))

	insights := f.coord.GlobalInsights(events)
	require.Len(t, insights, 1)
	gi := insights[0]
	assert.Equal(t, "sherlock_bug_fix", gi.Key)
	assert.Equal(t, 5, gi.Frequency)
	// Confidences 0.8 and 0.9 exceed 0.7.
	assert.Equal(t, 2, gi.SuccessCount)
	assert.InDelta(t, 0.4, gi.SuccessRate, 1e-9)
	assert.Equal(t, []string{"p0", "p1"}, gi.Projects)
	assert.Equal(t, base.Add(4*time.Minute), gi.LastSeen)
}

func TestRelevant_RequiresBoth(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name     string
		rate     float64
		projects []string
		want     bool
	}{
		{"both", 0.9, []string{"a", "b", "c"}, true},
		{"rate only", 0.9, []string{"a", "b"}, false},
		{"projects only", 0.8, []string{"a", "b", "c"}, false},
		{"neither", 0.5, []string{"a"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.coord.Relevant(model.GlobalInsight{SuccessRate: tt.rate, Projects: tt.projects}))
		})
	}
}

func TestSync_GlobalWriteFailureReportsAttempt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	f.global = store.NewJSONStore(store.JSONPaths(filepath.Join(blocker, "memory"), store.ScopeGlobal), nil)
	f.coord = New(config.Default(), f.local, f.global, f.logger.Logger, f.metrics)

	for i := 0; i < 3; i++ {
		f.local.Append(ctx, ev(i, "sherlock", "bug_fix", "webapp", 0.9))
	}

	rep, err := f.coord.Sync(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrStorageWrite))
	assert.Equal(t, 3, rep.Uploaded)
	assert.Equal(t, 3, rep.TotalGlobal)
	f.logger.AssertLogged(t, zapcore.ErrorLevel, "global upload failed")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StorageErrors.WithLabelValues("write")))
}

type tracedStore struct {
	store.Store
	name  string
	trace *[]string
	err   error
}

func (s *tracedStore) Events(ctx context.Context) ([]model.LearningEvent, error) {
	*s.trace = append(*s.trace, s.name+":start")
	defer func() { *s.trace = append(*s.trace, s.name+":end") }()
	if s.err != nil {
		return nil, s.err
	}
	return s.Store.Events(ctx)
}

func TestSync_LoadsScopesInOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.local.AppendMany(ctx, []model.LearningEvent{ev(0, "sherlock", "bug_fix", "webapp", 0.9)}))

	var trace []string
	local := &tracedStore{Store: f.local, name: "local", trace: &trace}
	global := &tracedStore{Store: f.global, name: "global", trace: &trace}
	_, err := New(config.Default(), local, global, nil, nil).Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"local:start", "local:end", "global:start", "global:end"}, trace)

	trace = nil
	local.err = errors.New("disk gone")
	_, err = New(config.Default(), local, global, nil, nil).Sync(ctx)
	require.Error(t, err)
	assert.Equal(t, []string{"local:start", "local:end"}, trace, "a failed local load leaves the global scope untouched")
}
