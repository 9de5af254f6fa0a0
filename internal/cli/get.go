package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/learning-tracker/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Retrieve a learning event by id",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().String("scope", "local", "Scope: local or global")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	scope, _ := cmd.Flags().GetString("scope")

	s := openSession()
	defer s.Close()

	e, err := store.Get(cmd.Context(), s.scopeStore(scope), args[0])
	if err != nil {
		exitErr("get", err)
	}
	printJSON(cmd.OutOrStdout(), e)
}
