package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/learning-tracker/internal/analyzer"
	"github.com/rcliao/learning-tracker/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Rank recurring patterns",
		Long:  "Group recent local events by signature and print the most frequent successful patterns.",
		Args:  cobra.NoArgs,
		Run:   runAnalyze,
	}

	cmd.Flags().StringP("agent", "a", "", "Filter by agent")
	cmd.Flags().String("category", "", "Filter by category")
	cmd.Flags().Int("days", 0, "Window in days (default: analysis.days_back)")
	cmd.Flags().IntP("limit", "l", 3, "Patterns to print in text format")

	RootCmd.AddCommand(cmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	agent, _ := cmd.Flags().GetString("agent")
	category, _ := cmd.Flags().GetString("category")
	days, _ := cmd.Flags().GetInt("days")
	limit, _ := cmd.Flags().GetInt("limit")

	s := openSession()
	defer s.Close()

	insights, err := s.tracker.Analyze(cmd.Context(), analyzer.Filter{
		Agent:    agent,
		Category: category,
		DaysBack: days,
	})
	if err != nil {
		exitErr("analyze", err)
	}

	if !wantText("text") {
		printJSON(cmd.OutOrStdout(), insights)
		return
	}
	printInsights(cmd, insights, limit)
}

func printInsights(cmd *cobra.Command, insights []model.PatternInsight, limit int) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Found %d patterns:\n", len(insights))
	for i, in := range insights {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(w, "- %s: %d occurrences, %.1f%% success\n", in.Category, in.Frequency, in.SuccessRate*100)
	}
}
