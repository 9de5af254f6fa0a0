package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/learning-tracker/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search learning events by keyword",
		Long:  "Search event outcomes and context values for matching text.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("agent", "a", "", "Filter by agent")
	cmd.Flags().String("category", "", "Filter by category")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().String("scope", "local", "Scope: local or global")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	agent, _ := cmd.Flags().GetString("agent")
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")
	scope, _ := cmd.Flags().GetString("scope")
	query := strings.Join(args, " ")

	s := openSession()
	defer s.Close()

	results, err := store.Search(cmd.Context(), s.scopeStore(scope), store.SearchParams{
		Agent:    agent,
		Category: category,
		Query:    query,
		Limit:    limit,
	})
	if err != nil {
		exitErr("search", err)
	}
	printEvents(cmd, results)
}
