package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Share patterns with the global scope",
		Long: "Upload local events missing from the global log, then import global " +
			"patterns that proved themselves across projects into the local insight index.",
		Args: cobra.NoArgs,
		Run:  runSync,
	}

	RootCmd.AddCommand(cmd)
}

func runSync(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.Close()

	rep, err := s.tracker.Sync(cmd.Context())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	if !wantText("text") {
		printJSON(cmd.OutOrStdout(), rep)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sync complete: uploaded=%d downloaded=%d total_global=%d total_local=%d\n",
		rep.Uploaded, rep.Downloaded, rep.TotalGlobal, rep.TotalLocal)
}
