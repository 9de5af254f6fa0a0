package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/learning-tracker/internal/model"
	"github.com/rcliao/learning-tracker/internal/tracker"
)

func init() {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Record a sample learning event",
		Long:  "Record one canned bug_fix event for agent sherlock and print its id.",
		Args:  cobra.NoArgs,
		Run:   runTest,
	}

	RootCmd.AddCommand(cmd)
}

func sampleEvent() tracker.RecordParams {
	return tracker.RecordParams{
		Agent:      "sherlock",
		Category:   "bug_fix",
		Context:    model.Context{"file_type": "javascript", "error_type": "undefined_variable"},
		Outcome:    "Successfully fixed undefined variable issue",
		Confidence: 0.9,
		Tags:       []string{"debugging", "javascript"},
	}
}

func runTest(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.Close()

	id, err := s.tracker.Record(cmd.Context(), sampleEvent())
	if id == "" {
		exitErr("record", err)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded learning event: %s\n", id)
}
