package store

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/rcliao/learning-tracker/internal/model"
)

// Stats holds scope statistics.
type Stats struct {
	Location       string         `json:"location"`
	SizeBytes      int64          `json:"size_bytes"`
	TotalEvents    int            `json:"total_events"`
	UniqueIDs      int            `json:"unique_ids"`
	InsightRecords int            `json:"insight_records"`
	Oldest         *time.Time     `json:"oldest,omitempty"`
	Newest         *time.Time     `json:"newest,omitempty"`
	Agents         []CountStats   `json:"agents"`
	Categories     []CountStats   `json:"categories"`
	Projects       []ProjectStats `json:"projects"`
}

// CountStats is a name with an event count.
type CountStats struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ProjectStats holds per-project counts.
type ProjectStats struct {
	Project string `json:"project"`
	Count   int    `json:"count"`
	Agents  int    `json:"agents"`
}

// ComputeStats returns statistics for a store.
func ComputeStats(ctx context.Context, s Store) (*Stats, error) {
	st := &Stats{Location: s.Location()}
	if info, err := os.Stat(s.Location()); err == nil {
		st.SizeBytes = info.Size()
	}

	events, err := s.Events(ctx)
	if err != nil {
		return st, err
	}
	records, err := s.Insights(ctx)
	if err != nil {
		return st, err
	}
	st.TotalEvents = len(events)
	st.InsightRecords = len(records)

	ids := map[string]bool{}
	agents := map[string]int{}
	categories := map[string]int{}
	for i, e := range events {
		ids[e.ID] = true
		agents[e.Agent]++
		categories[e.Category]++
		if st.Oldest == nil || e.Timestamp.Before(*st.Oldest) {
			st.Oldest = &events[i].Timestamp
		}
		if st.Newest == nil || e.Timestamp.After(*st.Newest) {
			st.Newest = &events[i].Timestamp
		}
	}
	st.UniqueIDs = len(ids)
	st.Agents = sortedCounts(agents)
	st.Categories = sortedCounts(categories)
	st.Projects = projectStats(events)
	return st, nil
}

// Projects returns per-project counts, largest first.
func Projects(ctx context.Context, s Store) ([]ProjectStats, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return nil, err
	}
	return projectStats(events), nil
}

func projectStats(events []model.LearningEvent) []ProjectStats {
	counts := map[string]int{}
	agents := map[string]map[string]bool{}
	for _, e := range events {
		counts[e.Project]++
		if agents[e.Project] == nil {
			agents[e.Project] = map[string]bool{}
		}
		agents[e.Project][e.Agent] = true
	}
	out := make([]ProjectStats, 0, len(counts))
	for p, n := range counts {
		out = append(out, ProjectStats{Project: p, Count: n, Agents: len(agents[p])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Project < out[j].Project
	})
	return out
}

func sortedCounts(m map[string]int) []CountStats {
	out := make([]CountStats, 0, len(m))
	for name, n := range m {
		out = append(out, CountStats{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
