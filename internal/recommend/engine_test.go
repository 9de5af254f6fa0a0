package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/learning-tracker/internal/analyzer"
	"github.com/rcliao/learning-tracker/internal/config"
	"github.com/rcliao/learning-tracker/internal/model"
)

type fakeRanker struct {
	insights []model.PatternInsight
	err      error
	got      analyzer.Filter
}

func (f *fakeRanker) Analyze(ctx context.Context, filter analyzer.Filter) ([]model.PatternInsight, error) {
	f.got = filter
	return f.insights, f.err
}

func TestMatchRatio(t *testing.T) {
	pattern := model.Context{"a": "1", "b": "2", "c": "3", "d": "4", "e": "5"}
	tests := []struct {
		name  string
		query model.Context
		want  float64
		match bool
	}{
		{"exactly 60 percent", model.Context{"a": "1", "b": "2", "c": "3"}, 0.6, true},
		{"below threshold", model.Context{"a": "1", "b": "2"}, 0.4, false},
		{"all", model.Context{"a": "1", "b": "2", "c": "3", "d": "4", "e": "5", "z": "extra"}, 1.0, true},
		{"wrong values", model.Context{"a": "9", "b": "9", "c": "9"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio, ok := MatchRatio(tt.query, pattern)
			require.True(t, ok)
			assert.InDelta(t, tt.want, ratio, 1e-9)
			assert.Equal(t, tt.match, Matches(tt.query, pattern, 0.6))
		})
	}
}

func TestMatches_JustBelowThreshold(t *testing.T) {
	// 5 of 9 keys is 0.555…, strictly below 0.6.
	pattern := model.Context{}
	query := model.Context{}
	for i := 0; i < 9; i++ {
		pattern[fmt.Sprint(i)] = i
		if i < 5 {
			query[fmt.Sprint(i)] = i
		}
	}
	assert.False(t, Matches(query, pattern, 0.6))

	// 6 of 10 is exactly 0.6.
	pattern["9"] = 9
	query["5"] = 5
	assert.True(t, Matches(query, pattern, 0.6))
}

func TestMatchRatio_EmptyPattern(t *testing.T) {
	_, ok := MatchRatio(model.Context{"a": 1}, model.Context{})
	assert.False(t, ok)
	assert.False(t, Matches(model.Context{}, nil, 0))
}

func TestMatches_TypedComparison(t *testing.T) {
	pattern := model.Context{"lang": "JavaScript", "retries": float64(3), "strict": true}
	query := model.Context{"lang": "javascript", "retries": 3, "strict": "TRUE"}
	ratio, ok := MatchRatio(query, pattern)
	require.True(t, ok)
	assert.Equal(t, 1.0, ratio)
}

func TestRecommend(t *testing.T) {
	ranker := &fakeRanker{insights: []model.PatternInsight{
		{
			Contexts:        []model.Context{{"lang": "go", "kind": "nil"}},
			Recommendations: []string{"A", "B"},
		},
		{
			Contexts:        []model.Context{{"lang": "rust"}},
			Recommendations: []string{"skip me"},
		},
		{
			Contexts:        []model.Context{{}, {"lang": "GO"}},
			Recommendations: []string{"B", "C"},
		},
	}}
	e := New(config.Default().Analysis, ranker, nil)

	recs, err := e.Recommend(context.Background(), "sherlock", model.Context{"lang": "go", "kind": "nil"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, recs)
	assert.Equal(t, "sherlock", ranker.got.Agent)
}

func TestRecommend_CappedAndDistinct(t *testing.T) {
	var insights []model.PatternInsight
	for i := 0; i < 4; i++ {
		insights = append(insights, model.PatternInsight{
			Contexts:        []model.Context{{"lang": "go"}},
			Recommendations: []string{fmt.Sprintf("r%d", i), fmt.Sprintf("r%d", i+1), "shared"},
		})
	}
	e := New(config.Default().Analysis, &fakeRanker{insights: insights}, nil)

	recs, err := e.Recommend(context.Background(), "sherlock", model.Context{"lang": "go"})
	require.NoError(t, err)
	assert.Len(t, recs, 5)
	assert.Equal(t, []string{"r0", "r1", "shared", "r2", "r3"}, recs)

	seen := map[string]bool{}
	for _, r := range recs {
		assert.False(t, seen[r], "duplicate %q", r)
		seen[r] = true
	}
}

func TestRecommend_Error(t *testing.T) {
	e := New(config.Default().Analysis, &fakeRanker{err: errors.New("boom")}, nil)
	_, err := e.Recommend(context.Background(), "sherlock", nil)
	assert.Error(t, err)
}
