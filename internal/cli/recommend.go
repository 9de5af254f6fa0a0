package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend actions for a context",
		Long:  "Suggest actions from the agent's successful patterns whose contexts resemble the given one.",
		Args:  cobra.NoArgs,
		Run:   runRecommend,
	}

	cmd.Flags().StringP("agent", "a", "", "Agent name (required)")
	cmd.Flags().StringArray("ctx", nil, "Context entry as key=value (repeatable)")

	cmd.MarkFlagRequired("agent")

	RootCmd.AddCommand(cmd)
}

func runRecommend(cmd *cobra.Command, args []string) {
	agent, _ := cmd.Flags().GetString("agent")
	pairs, _ := cmd.Flags().GetStringArray("ctx")

	query, err := parseContext(pairs)
	if err != nil {
		exitErr("recommend", err)
	}

	s := openSession()
	defer s.Close()

	recs, err := s.tracker.Recommend(cmd.Context(), agent, query)
	if err != nil {
		exitErr("recommend", err)
	}

	if wantText("json") {
		for _, r := range recs {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", r)
		}
		return
	}
	printJSON(cmd.OutOrStdout(), recs)
}
