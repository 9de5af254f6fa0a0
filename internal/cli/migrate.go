package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/learning-tracker/internal/logging"
	"github.com/rcliao/learning-tracker/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy a scope into another storage backend",
		Long: "Merge the events and insight records of a scope from the configured backend into " +
			"another backend in the same directory. Events already present are skipped.",
		Args: cobra.NoArgs,
		Run:  runMigrate,
	}

	cmd.Flags().String("to", "", "Target backend: json or sqlite (required)")
	cmd.Flags().String("scope", "local", "Scope: local or global")

	cmd.MarkFlagRequired("to")

	RootCmd.AddCommand(cmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	to, _ := cmd.Flags().GetString("to")
	scope, _ := cmd.Flags().GetString("scope")

	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	if to == cfg.Storage.Backend {
		exitErr("migrate", fmt.Errorf("scope already uses the %s backend", to))
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		exitErr("init logger", err)
	}
	defer logger.Sync()

	dir := cfg.ProjectMemoryDir()
	switch store.Scope(scope) {
	case store.ScopeLocal:
	case store.ScopeGlobal:
		dir = cfg.GlobalMemoryDir()
	default:
		exitErr("scope", fmt.Errorf("unknown scope %q, want local or global", scope))
	}

	src, err := store.Open(cfg.Storage.Backend, dir, store.Scope(scope), logger)
	if err != nil {
		exitErr("open source store", err)
	}
	defer src.Close()
	dst, err := store.Open(to, dir, store.Scope(scope), logger)
	if err != nil {
		exitErr("open target store", err)
	}
	defer dst.Close()

	res, err := store.Merge(cmd.Context(), dst, src)
	if err != nil {
		exitErr("migrate events", err)
	}

	// Records already in the target win.
	srcRecords, err := src.Insights(cmd.Context())
	if err != nil {
		exitErr("migrate insights", err)
	}
	dstRecords, err := dst.Insights(cmd.Context())
	if err != nil {
		exitErr("migrate insights", err)
	}
	copied := 0
	for k, rec := range srcRecords {
		if _, ok := dstRecords[k]; ok {
			continue
		}
		dstRecords[k] = rec
		copied++
	}
	if copied > 0 {
		if err := dst.SaveInsights(cmd.Context(), dstRecords); err != nil {
			exitErr("migrate insights", err)
		}
	}

	printJSON(cmd.OutOrStdout(), map[string]any{
		"imported": res.Imported,
		"skipped":  res.Skipped,
		"insights": copied,
		"target":   dst.Location(),
	})
}
