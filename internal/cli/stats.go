package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/learning-tracker/internal/analyzer"
	"github.com/rcliao/learning-tracker/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show scope statistics",
		Long: "Show scope statistics. With --metrics, print the Prometheus metrics of this invocation " +
			"instead: every command runs in its own process, so counters start at zero and only the " +
			"learning_insights_ranked gauge, refreshed from the current log, carries state.",
		Args: cobra.NoArgs,
		Run:  runStats,
	}

	cmd.Flags().String("scope", "local", "Scope: local or global")
	cmd.Flags().Bool("metrics", false, "Print this invocation's metrics in Prometheus text format (counters are per process)")

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	scope, _ := cmd.Flags().GetString("scope")
	withMetrics, _ := cmd.Flags().GetBool("metrics")

	s := openSession()
	defer s.Close()

	if withMetrics {
		// Populate the ranking gauge from the current log.
		if _, err := s.tracker.Analyze(cmd.Context(), analyzer.Filter{}); err != nil {
			exitErr("analyze", err)
		}
		if err := s.metrics.WriteText(cmd.OutOrStdout()); err != nil {
			exitErr("metrics", err)
		}
		return
	}

	stats, err := store.ComputeStats(cmd.Context(), s.scopeStore(scope))
	if err != nil {
		exitErr("stats", err)
	}
	printJSON(cmd.OutOrStdout(), stats)
}
