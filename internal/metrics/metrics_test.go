package metrics

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordEvent("sherlock", "bug_fix")
	m.RecordEvent("sherlock", "bug_fix")
	m.StorageError("write")
	m.Synced(3, 1)
	m.Ranked(4)
	m.Served(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsRecorded.WithLabelValues("sherlock", "bug_fix")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageErrors.WithLabelValues("write")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SyncUploaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncDownloaded))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.InsightsRanked))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecommendationsServed))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordEvent("a", "b")
	m.StorageError("read")
	m.Synced(1, 1)
	m.Ranked(1)
	m.Served(1)
	assert.NoError(t, m.WriteText(&bytes.Buffer{}))
}

func TestMetrics_WriteText(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Synced(5, 0)

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))
	assert.Contains(t, buf.String(), "learning_sync_uploaded_total 5")
}
