package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventID(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)
	ctx := Context{"file_type": "javascript", "error_type": "undefined_variable"}
	id := EventID(ts, "sherlock", "bug_fix", ctx, "fixed")

	assert.Len(t, id, IDLength)
	assert.Equal(t, id, EventID(ts, "sherlock", "bug_fix", ctx.Clone(), "fixed"))
	assert.Equal(t, id, EventID(ts.In(time.FixedZone("PST", -8*3600)), "sherlock", "bug_fix", ctx, "fixed"),
		"the same instant in another zone hashes the same")

	assert.NotEqual(t, id, EventID(ts.Add(time.Nanosecond), "sherlock", "bug_fix", ctx, "fixed"))
	assert.NotEqual(t, id, EventID(ts, "edison", "bug_fix", ctx, "fixed"))
	assert.NotEqual(t, id, EventID(ts, "sherlock", "refactor", ctx, "fixed"))
	assert.NotEqual(t, id, EventID(ts, "sherlock", "bug_fix", Context{"file_type": "go"}, "fixed"))
	assert.NotEqual(t, id, EventID(ts, "sherlock", "bug_fix", ctx, "failed"))
}

func TestContextCanonical(t *testing.T) {
	a := Context{"b": 1, "a": "x"}
	b := Context{"a": "x", "b": 1}
	assert.Equal(t, string(a.Canonical()), string(b.Canonical()))
	assert.Equal(t, `{"a":"x","b":1}`, string(a.Canonical()))
	assert.Equal(t, "{}", string(Context(nil).Canonical()))
	assert.Equal(t, "{}", string(Context{}.Canonical()))
}

func TestContextClone(t *testing.T) {
	c := Context{"a": 1}
	cl := c.Clone()
	cl["b"] = 2
	assert.NotContains(t, c, "b")
	assert.Nil(t, Context(nil).Clone())
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 3, 1, 12, 30, 45, 123456000, time.UTC)
	for _, s := range []string{
		"2025-03-01T12:30:45.123456Z",
		"2025-03-01T14:30:45.123456+02:00",
		"2025-03-01T13:30:45.123456+0100",
	} {
		got, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), "%s parsed as %s", s, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
	_, err = ParseTimestamp("")
	assert.Error(t, err)
}

func TestParseTimestamp_ZonelessIsLocal(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	want := time.Date(2025, 3, 1, 3, 30, 45, 123456000, time.UTC)
	for _, s := range []string{
		"2025-03-01T12:30:45.123456",
		"2025-03-01 12:30:45.123456",
	} {
		got, err := parseTimestampIn(s, tokyo)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), "%s parsed as %s", s, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	got, err := ParseTimestamp("2025-03-01T12:30:45")
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 3, 1, 12, 30, 45, 0, time.Local).Equal(got))
}

func TestLearningEventJSON(t *testing.T) {
	raw := `{
		"hash_id": "abc123",
		"timestamp": "2025-03-01T12:30:45.5Z",
		"agent": "sherlock",
		"project": "webapp",
		"pattern_type": "bug_fix",
		"context": {"file_type": "javascript", "lines": 3},
		"outcome": "fixed",
		"confidence": 0.9,
		"tags": ["debugging"]
	}`
	var e LearningEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, "abc123", e.ID)
	assert.Equal(t, "bug_fix", e.Category)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 30, 45, 500000000, time.UTC), e.Timestamp)
	assert.Equal(t, 3.0, e.Context["lines"])

	b, err := json.Marshal(e)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "2025-03-01T12:30:45.5Z", m["timestamp"])
	assert.Equal(t, "bug_fix", m["pattern_type"])
	assert.Equal(t, "abc123", m["hash_id"])

	assert.Error(t, json.Unmarshal([]byte(`{"timestamp":"soon"}`), &LearningEvent{}))
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{"JavaScript", "javascript", true},
		{3.0, 3, true},
		{json.Number("3"), 3.0, true},
		{true, "TRUE", true},
		{nil, "null", true},
		{"3", 3.0, true},
		{1.5, 1.25, false},
		{"go", "golang", false},
		{[]any{1, 2}, []any{1, 2}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValuesEqual(tt.a, tt.b), "%v vs %v", tt.a, tt.b)
	}
}

func TestTaxonomy(t *testing.T) {
	tax := DefaultTaxonomy()
	assert.Equal(t, []string{"architecture", "code_quality", "collaboration", "learning", "workflow"}, tax.Families())

	family, ok := tax.FamilyOf("refactor")
	assert.True(t, ok)
	assert.Equal(t, "code_quality", family)

	_, ok = tax.FamilyOf("knitting")
	assert.False(t, ok)
}
