package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/learning-tracker/internal/model"
	"github.com/rcliao/learning-tracker/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List learning events",
		Args:  cobra.NoArgs,
		Run:   runList,
	}

	cmd.Flags().StringP("agent", "a", "", "Filter by agent")
	cmd.Flags().String("category", "", "Filter by category")
	cmd.Flags().String("in-project", "", "Filter by project name")
	cmd.Flags().StringP("tag", "t", "", "Filter by tag")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().String("scope", "local", "Scope: local or global")
	cmd.Flags().Bool("ids-only", false, "Only output event ids")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	agent, _ := cmd.Flags().GetString("agent")
	category, _ := cmd.Flags().GetString("category")
	project, _ := cmd.Flags().GetString("in-project")
	tag, _ := cmd.Flags().GetString("tag")
	limit, _ := cmd.Flags().GetInt("limit")
	scope, _ := cmd.Flags().GetString("scope")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s := openSession()
	defer s.Close()

	events, err := store.Search(cmd.Context(), s.scopeStore(scope), store.SearchParams{
		Agent:    agent,
		Category: category,
		Project:  project,
		Tag:      tag,
		Limit:    limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, e := range events {
			fmt.Fprintln(cmd.OutOrStdout(), e.ID)
		}
		return
	}
	printEvents(cmd, events)
}

func printEvents(cmd *cobra.Command, events []model.LearningEvent) {
	if !wantText("json") {
		printJSON(cmd.OutOrStdout(), events)
		return
	}
	w := cmd.OutOrStdout()
	for _, e := range events {
		fmt.Fprintf(w, "%s %s %s/%s [%s] %.2f %s\n",
			e.ID, model.FormatTimestamp(e.Timestamp), e.Agent, e.Category, e.Project, e.Confidence, e.Outcome)
	}
}
