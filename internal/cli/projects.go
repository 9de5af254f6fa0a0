package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/learning-tracker/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects that contributed events",
		Args:  cobra.NoArgs,
		Run:   runProjects,
	}

	cmd.Flags().String("scope", "global", "Scope: local or global")

	RootCmd.AddCommand(cmd)
}

func runProjects(cmd *cobra.Command, args []string) {
	scope, _ := cmd.Flags().GetString("scope")

	s := openSession()
	defer s.Close()

	rows, err := store.Projects(cmd.Context(), s.scopeStore(scope))
	if err != nil {
		exitErr("list projects", err)
	}

	if wantText("json") {
		for _, p := range rows {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d events, %d agents\n", p.Project, p.Count, p.Agents)
		}
		return
	}
	printJSON(cmd.OutOrStdout(), rows)
}
