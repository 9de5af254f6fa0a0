package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/learning-tracker/internal/model"
)

// SearchParams holds parameters for searching events.
type SearchParams struct {
	Agent    string
	Category string
	Project  string
	Tag      string
	Query    string // case-insensitive substring of outcome or context values
	Limit    int
}

// Search returns matching events, newest first.
func Search(ctx context.Context, s Store, p SearchParams) ([]model.LearningEvent, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	events, err := s.Events(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(p.Query)
	results := []model.LearningEvent{}
	for i := len(events) - 1; i >= 0 && len(results) < limit; i-- {
		e := events[i]
		if p.Agent != "" && e.Agent != p.Agent {
			continue
		}
		if p.Category != "" && e.Category != p.Category {
			continue
		}
		if p.Project != "" && e.Project != p.Project {
			continue
		}
		if p.Tag != "" && !hasTag(e.Tags, p.Tag) {
			continue
		}
		if query != "" && !matchesQuery(e, query) {
			continue
		}
		results = append(results, e)
	}
	return results, nil
}

// Get returns the event with the given id.
func Get(ctx context.Context, s Store, id string) (*model.LearningEvent, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].ID == id {
			return &events[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func matchesQuery(e model.LearningEvent, query string) bool {
	if strings.Contains(strings.ToLower(e.Outcome), query) {
		return true
	}
	for k, v := range e.Context {
		if strings.Contains(strings.ToLower(k), query) ||
			strings.Contains(strings.ToLower(model.FormatValue(v)), query) {
			return true
		}
	}
	return false
}
