package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/rcliao/learning-tracker/internal/logging"
	"github.com/rcliao/learning-tracker/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		path:   dbPath,
		logger: logging.OrNop(logger).Named("store"),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL,
		timestamp   TEXT NOT NULL,
		agent       TEXT NOT NULL,
		project     TEXT NOT NULL,
		category    TEXT NOT NULL,
		context     TEXT NOT NULL DEFAULT '{}',
		outcome     TEXT NOT NULL,
		confidence  REAL NOT NULL,
		tags        TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_id ON events(id);
	CREATE INDEX IF NOT EXISTS idx_events_agent_category ON events(agent, category);
	CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);

	CREATE TABLE IF NOT EXISTS insights (
		key         TEXT PRIMARY KEY,
		record      TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Append(ctx context.Context, e model.LearningEvent) (string, error) {
	ensureID(&e)
	return e.ID, s.AppendMany(ctx, []model.LearningEvent{e})
}

func (s *SQLiteStore) AppendMany(ctx context.Context, events []model.LearningEvent) error {
	if err := s.appendMany(ctx, events); err != nil {
		serr := &StorageError{Op: "write", Path: s.path, Err: err}
		s.logger.Error("could not append events", zap.Error(serr))
		return serr
	}
	return nil
}

func (s *SQLiteStore) appendMany(ctx context.Context, events []model.LearningEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		ensureID(&e)
		ctxJSON := e.Context.Canonical()
		var tagsJSON *string
		if len(e.Tags) > 0 {
			b, _ := json.Marshal(e.Tags)
			t := string(b)
			tagsJSON = &t
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, timestamp, agent, project, category, context, outcome, confidence, tags)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, model.FormatTimestamp(e.Timestamp), e.Agent, e.Project, e.Category,
			string(ctxJSON), e.Outcome, e.Confidence, tagsJSON)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Events(ctx context.Context) ([]model.LearningEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, agent, project, category, context, outcome, confidence, tags
		 FROM events ORDER BY seq`)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("could not load events, using empty default",
			zap.Error(&StorageError{Op: "read", Path: s.path, Err: err}))
		return []model.LearningEvent{}, nil
	}
	defer rows.Close()

	events := []model.LearningEvent{}
	for i := 0; rows.Next(); i++ {
		e, err := scanEvent(rows)
		if err != nil {
			s.logger.Warn("skipping unreadable event",
				zap.String("path", s.path),
				zap.Error(&ScanError{Index: i, Err: err}))
			continue
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLiteStore) Insights(ctx context.Context) (map[string]model.InsightRecord, error) {
	records := map[string]model.InsightRecord{}
	rows, err := s.db.QueryContext(ctx, `SELECT key, record FROM insights`)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("could not load insights, using empty default",
			zap.Error(&StorageError{Op: "read", Path: s.path, Err: err}))
		return records, nil
	}
	defer rows.Close()

	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return records, err
		}
		var rec model.InsightRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			s.logger.Warn("skipping unreadable insight record",
				zap.String("key", key), zap.Error(err))
			continue
		}
		records[key] = rec
	}
	return records, rows.Err()
}

func (s *SQLiteStore) SaveInsights(ctx context.Context, records map[string]model.InsightRecord) error {
	if err := s.saveInsights(ctx, records); err != nil {
		serr := &StorageError{Op: "write", Path: s.path, Err: err}
		s.logger.Error("could not save insights", zap.Error(serr))
		return serr
	}
	return nil
}

func (s *SQLiteStore) saveInsights(ctx context.Context, records map[string]model.InsightRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM insights`); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for key, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO insights (key, record, updated_at) VALUES (?, ?, ?)`,
			key, string(b), now); err != nil {
			return fmt.Errorf("insert insight: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Location() string { return s.path }

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row scanner) (model.LearningEvent, error) {
	var e model.LearningEvent
	var ts, ctxJSON string
	var tagsJSON sql.NullString

	err := row.Scan(&e.ID, &ts, &e.Agent, &e.Project, &e.Category,
		&ctxJSON, &e.Outcome, &e.Confidence, &tagsJSON)
	if err != nil {
		return e, err
	}

	if e.Timestamp, err = model.ParseTimestamp(ts); err != nil {
		return e, err
	}
	if err := json.Unmarshal([]byte(ctxJSON), &e.Context); err != nil {
		return e, fmt.Errorf("decode context: %w", err)
	}
	e.Tags = []string{}
	if tagsJSON.Valid {
		if err := json.Unmarshal([]byte(tagsJSON.String), &e.Tags); err != nil {
			return e, fmt.Errorf("decode tags: %w", err)
		}
	}
	return e, nil
}
