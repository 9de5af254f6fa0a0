package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export learning events as JSON",
		Long:  "Export every event of a scope as a JSON array in log order, readable by import.",
		Args:  cobra.NoArgs,
		Run:   runExport,
	}

	cmd.Flags().String("scope", "local", "Scope: local or global")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	scope, _ := cmd.Flags().GetString("scope")

	s := openSession()
	defer s.Close()

	events, err := s.scopeStore(scope).Events(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}
	printJSON(cmd.OutOrStdout(), events)
}
