// Package config provides configuration loading for the learning tracker.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcliao/learning-tracker/internal/logging"
	"github.com/rcliao/learning-tracker/internal/model"
	"github.com/rcliao/learning-tracker/internal/store"
)

// Config is the complete tracker configuration. It is passed explicitly to
// every component; nothing reads it from package state.
type Config struct {
	Paths    PathsConfig    `koanf:"paths"`
	Storage  StorageConfig  `koanf:"storage"`
	Analysis AnalysisConfig `koanf:"analysis"`
	Sync     SyncConfig     `koanf:"sync"`
	Logging  logging.Config `koanf:"logging"`
	Taxonomy model.Taxonomy `koanf:"taxonomy"`
}

// PathsConfig locates the project-local and global scopes.
type PathsConfig struct {
	ProjectDir string `koanf:"project_dir"`
	GlobalDir  string `koanf:"global_dir"`
}

// StorageConfig selects the event store backend.
type StorageConfig struct {
	Backend string `koanf:"backend"`
}

// AnalysisConfig holds the local pattern thresholds.
type AnalysisConfig struct {
	MinPatternFrequency    int     `koanf:"min_pattern_frequency"`
	MinConfidenceThreshold float64 `koanf:"min_confidence_threshold"`
	SuccessConfidence      float64 `koanf:"success_confidence"`
	DaysBack               int     `koanf:"days_back"`
	ContextMatchRatio      float64 `koanf:"context_match_ratio"`
	MaxRecommendations     int     `koanf:"max_recommendations"`
	ExampleRingSize        int     `koanf:"example_ring_size"`
}

// SyncConfig holds the global promotion thresholds.
type SyncConfig struct {
	GlobalMinFrequency   int     `koanf:"global_min_frequency"`
	RelevanceSuccessRate float64 `koanf:"relevance_success_rate"`
	RelevanceMinProjects int     `koanf:"relevance_min_projects"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Paths:   PathsConfig{ProjectDir: ".", GlobalDir: "~/.paired"},
		Storage: StorageConfig{Backend: store.BackendJSON},
		Analysis: AnalysisConfig{
			MinPatternFrequency:    3,
			MinConfidenceThreshold: 0.7,
			SuccessConfidence:      0.7,
			DaysBack:               30,
			ContextMatchRatio:      0.6,
			MaxRecommendations:     5,
			ExampleRingSize:        5,
		},
		Sync: SyncConfig{
			GlobalMinFrequency:   5,
			RelevanceSuccessRate: 0.8,
			RelevanceMinProjects: 2,
		},
		Logging:  logging.DefaultConfig(),
		Taxonomy: model.DefaultTaxonomy(),
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if !store.IsBackend(c.Storage.Backend) {
		return fmt.Errorf("storage.backend must be one of %s, got %q", strings.Join(store.Backends, ", "), c.Storage.Backend)
	}
	a := c.Analysis
	if a.MinPatternFrequency < 1 {
		return fmt.Errorf("analysis.min_pattern_frequency must be >= 1, got %d", a.MinPatternFrequency)
	}
	for name, v := range map[string]float64{
		"analysis.min_confidence_threshold": a.MinConfidenceThreshold,
		"analysis.success_confidence":       a.SuccessConfidence,
		"analysis.context_match_ratio":      a.ContextMatchRatio,
		"sync.relevance_success_rate":       c.Sync.RelevanceSuccessRate,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", name, v)
		}
	}
	if a.DaysBack < 1 {
		return fmt.Errorf("analysis.days_back must be >= 1, got %d", a.DaysBack)
	}
	if a.MaxRecommendations < 1 {
		return fmt.Errorf("analysis.max_recommendations must be >= 1, got %d", a.MaxRecommendations)
	}
	if a.ExampleRingSize < 1 {
		return fmt.Errorf("analysis.example_ring_size must be >= 1, got %d", a.ExampleRingSize)
	}
	if c.Sync.GlobalMinFrequency < 1 {
		return fmt.Errorf("sync.global_min_frequency must be >= 1, got %d", c.Sync.GlobalMinFrequency)
	}
	if c.Sync.RelevanceMinProjects < 0 {
		return fmt.Errorf("sync.relevance_min_projects must be >= 0, got %d", c.Sync.RelevanceMinProjects)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// ProjectName is the base name of the project directory.
func (c *Config) ProjectName() string {
	dir, err := filepath.Abs(ExpandHome(c.Paths.ProjectDir))
	if err != nil {
		return filepath.Base(c.Paths.ProjectDir)
	}
	return filepath.Base(dir)
}

// ProjectMemoryDir is where the project-local scope is persisted.
func (c *Config) ProjectMemoryDir() string {
	return filepath.Join(ExpandHome(c.Paths.ProjectDir), ".paired", "memory")
}

// GlobalMemoryDir is where the global scope is persisted.
func (c *Config) GlobalMemoryDir() string {
	return filepath.Join(ExpandHome(c.Paths.GlobalDir), "memory")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
