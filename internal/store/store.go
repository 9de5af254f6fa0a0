// Package store provides the learning event storage interface and its
// JSON-file and SQLite implementations.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rcliao/learning-tracker/internal/model"
)

// Store is the append-only event log and rolling insight index of one scope.
type Store interface {
	// Append adds one event and returns its id.
	Append(ctx context.Context, e model.LearningEvent) (string, error)

	// AppendMany adds events in one write.
	AppendMany(ctx context.Context, events []model.LearningEvent) error

	// Events returns every event in insertion order. Unreadable data
	// degrades to an empty collection.
	Events(ctx context.Context) ([]model.LearningEvent, error)

	// Insights returns the rolling insight index keyed by agent_category.
	Insights(ctx context.Context) (map[string]model.InsightRecord, error)

	// SaveInsights replaces the rolling insight index.
	SaveInsights(ctx context.Context, records map[string]model.InsightRecord) error

	// Location describes where the scope is persisted.
	Location() string

	// Close closes the store.
	Close() error
}

// Backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Backends lists the backend names Open accepts.
var Backends = []string{BackendJSON, BackendSQLite}

// IsBackend reports whether Open accepts name.
func IsBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

// Scope identifies a logically isolated store.
type Scope string

const (
	ScopeLocal  Scope = "local"
	ScopeGlobal Scope = "global"
)

var (
	ErrStorageRead  = errors.New("storage read failed")
	ErrStorageWrite = errors.New("storage write failed")
	ErrNotFound     = errors.New("event not found")
)

// StorageError reports a failed read or write of a backing collection.
type StorageError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is matches ErrStorageRead or ErrStorageWrite according to Op.
func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrStorageRead:
		return e.Op == "read"
	case ErrStorageWrite:
		return e.Op == "write"
	}
	return false
}

// ScanError reports a single record that could not be decoded. The record is
// skipped and the scan continues.
type ScanError struct {
	Index int
	Err   error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// Open opens the store for a scope rooted at dir.
func Open(backend, dir string, scope Scope, logger *zap.Logger) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONStore(JSONPaths(dir, scope), logger), nil
	case BackendSQLite:
		name := "learning.db"
		if scope == ScopeGlobal {
			name = "global_learning.db"
		}
		return NewSQLiteStore(filepath.Join(dir, name), logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// ensureID fills in the content hash when the caller did not.
func ensureID(e *model.LearningEvent) {
	if e.ID == "" {
		e.ID = model.EventID(e.Timestamp, e.Agent, e.Category, e.Context, e.Outcome)
	}
}
