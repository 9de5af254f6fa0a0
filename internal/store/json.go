package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rcliao/learning-tracker/internal/logging"
	"github.com/rcliao/learning-tracker/internal/model"
)

// Paths names the two collection files of a JSON scope.
type Paths struct {
	Events   string
	Insights string
}

// JSONPaths returns the conventional file names for a scope under dir.
func JSONPaths(dir string, scope Scope) Paths {
	if scope == ScopeGlobal {
		return Paths{
			Events:   filepath.Join(dir, "global_learning_patterns.json"),
			Insights: filepath.Join(dir, "global_pattern_insights.json"),
		}
	}
	return Paths{
		Events:   filepath.Join(dir, "learning_patterns.json"),
		Insights: filepath.Join(dir, "pattern_insights.json"),
	}
}

// JSONStore implements Store on two JSON files. Every write rewrites the
// whole collection.
type JSONStore struct {
	paths  Paths
	logger *zap.Logger
}

// NewJSONStore creates a store over the given files. Nothing is touched on
// disk until the first write.
func NewJSONStore(paths Paths, logger *zap.Logger) *JSONStore {
	return &JSONStore{paths: paths, logger: logging.OrNop(logger).Named("store")}
}

func (s *JSONStore) Append(ctx context.Context, e model.LearningEvent) (string, error) {
	ensureID(&e)
	if err := s.AppendMany(ctx, []model.LearningEvent{e}); err != nil {
		return e.ID, err
	}
	return e.ID, nil
}

// AppendMany adds events to the end of the log. Records already on disk are
// carried over verbatim, including ones Events cannot decode.
func (s *JSONStore) AppendMany(ctx context.Context, events []model.LearningEvent) error {
	var raw []json.RawMessage
	if !s.read(s.paths.Events, &raw) {
		raw = nil
	}
	for _, e := range events {
		ensureID(&e)
		b, err := json.Marshal(e)
		if err != nil {
			serr := &StorageError{Op: "write", Path: s.paths.Events, Err: fmt.Errorf("encode event %s: %w", e.ID, err)}
			s.logger.Error("could not save collection", zap.Error(serr))
			return serr
		}
		raw = append(raw, b)
	}
	return s.write(s.paths.Events, raw)
}

func (s *JSONStore) Events(ctx context.Context) ([]model.LearningEvent, error) {
	var raw []json.RawMessage
	if !s.read(s.paths.Events, &raw) {
		return []model.LearningEvent{}, nil
	}

	events := make([]model.LearningEvent, 0, len(raw))
	for i, r := range raw {
		var e model.LearningEvent
		if err := json.Unmarshal(r, &e); err != nil {
			s.logger.Warn("skipping unreadable event",
				zap.String("path", s.paths.Events),
				zap.Error(&ScanError{Index: i, Err: err}))
			continue
		}
		ensureID(&e)
		events = append(events, e)
	}
	return events, nil
}

func (s *JSONStore) Insights(ctx context.Context) (map[string]model.InsightRecord, error) {
	var raw map[string]json.RawMessage
	records := map[string]model.InsightRecord{}
	if !s.read(s.paths.Insights, &raw) {
		return records, nil
	}

	for key, r := range raw {
		var rec model.InsightRecord
		if err := json.Unmarshal(r, &rec); err != nil {
			s.logger.Warn("skipping unreadable insight record",
				zap.String("path", s.paths.Insights),
				zap.String("key", key),
				zap.Error(err))
			continue
		}
		records[key] = rec
	}
	return records, nil
}

func (s *JSONStore) SaveInsights(ctx context.Context, records map[string]model.InsightRecord) error {
	if records == nil {
		records = map[string]model.InsightRecord{}
	}
	return s.write(s.paths.Insights, records)
}

func (s *JSONStore) Location() string { return s.paths.Events }

func (s *JSONStore) Close() error { return nil }

// read decodes path into v. It reports false when the file is missing or
// unreadable; the latter is logged as a warning.
func (s *JSONStore) read(path string, v any) bool {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false
	}
	if err == nil {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		s.logger.Warn("could not load collection, using empty default",
			zap.Error(&StorageError{Op: "read", Path: path, Err: err}))
		return false
	}
	return true
}

// write atomically replaces path with the JSON encoding of v.
func (s *JSONStore) write(path string, v any) error {
	if err := s.writeFile(path, v); err != nil {
		serr := &StorageError{Op: "write", Path: path, Err: err}
		s.logger.Error("could not save collection", zap.Error(serr))
		return serr
	}
	return nil
}

func (s *JSONStore) writeFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
