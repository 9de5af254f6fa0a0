// Package cli implements the learning-tracker CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/learning-tracker/internal/config"
	"github.com/rcliao/learning-tracker/internal/logging"
	"github.com/rcliao/learning-tracker/internal/metrics"
	"github.com/rcliao/learning-tracker/internal/store"
	"github.com/rcliao/learning-tracker/internal/tracker"
)

var (
	configPath  string
	projectDir  string
	globalDir   string
	backendFlag string
	formatFlag  string
	logLevel    string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "learning-tracker",
	Short: "Cross-project learning tracker for agents",
	Long: "Record what agents did and how it went, mine recurring patterns, " +
		"recommend actions for a new context and share patterns across projects.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.paired/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", "", "Project directory (default: current directory)")
	RootCmd.PersistentFlags().StringVarP(&globalDir, "global", "g", "", "Global directory (default: ~/.paired)")
	RootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storage backend: json or sqlite")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "", "Output format: json or text (default depends on the command)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig resolves configuration and applies flag overrides on top.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if projectDir != "" {
		cfg.Paths.ProjectDir = projectDir
	}
	if globalDir != "" {
		cfg.Paths.GlobalDir = globalDir
	}
	if backendFlag != "" {
		cfg.Storage.Backend = backendFlag
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session bundles what a command needs for one invocation.
type session struct {
	cfg     *config.Config
	tracker *tracker.Tracker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func (s *session) Close() {
	s.tracker.Close()
	s.logger.Sync()
}

func openSession() *session {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		exitErr("init logger", err)
	}
	m := metrics.New(prometheus.NewRegistry())
	t, err := tracker.Open(cfg, logger, tracker.WithMetrics(m))
	if err != nil {
		exitErr("open store", err)
	}
	return &session{cfg: cfg, tracker: t, metrics: m, logger: logger}
}

// wantText reports whether the text format was selected, falling back to
// def when --format is unset.
func wantText(def string) bool {
	f := formatFlag
	if f == "" {
		f = def
	}
	return strings.EqualFold(f, "text")
}

// scopeStore picks the local or global store of a session.
func (s *session) scopeStore(scope string) store.Store {
	switch scope {
	case "", string(store.ScopeLocal):
		return s.tracker.Local()
	case string(store.ScopeGlobal):
		return s.tracker.Global()
	}
	exitErr("scope", fmt.Errorf("unknown scope %q, want local or global", scope))
	return nil
}

func printJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
