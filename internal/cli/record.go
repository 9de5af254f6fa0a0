package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/learning-tracker/internal/tracker"
)

func init() {
	cmd := &cobra.Command{
		Use:   "record [outcome]",
		Short: "Record a learning event",
		Long:  "Record a learning event. The outcome can be a positional arg or piped via stdin.",
		Run:   runRecord,
	}

	cmd.Flags().StringP("agent", "a", "", "Agent name (required)")
	cmd.Flags().String("category", "", "Pattern category (required)")
	cmd.Flags().StringArray("ctx", nil, "Context entry as key=value (repeatable)")
	cmd.Flags().Float64("confidence", 0.5, "Confidence in [0,1]")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tags")

	cmd.MarkFlagRequired("agent")
	cmd.MarkFlagRequired("category")

	RootCmd.AddCommand(cmd)
}

func runRecord(cmd *cobra.Command, args []string) {
	agent, _ := cmd.Flags().GetString("agent")
	category, _ := cmd.Flags().GetString("category")
	pairs, _ := cmd.Flags().GetStringArray("ctx")
	confidence, _ := cmd.Flags().GetFloat64("confidence")
	tagsStr, _ := cmd.Flags().GetString("tags")

	// Positional arg first, then stdin
	var outcome string
	if len(args) > 0 {
		outcome = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			outcome = string(b)
		}
	}
	if strings.TrimSpace(outcome) == "" {
		exitErr("record", fmt.Errorf("outcome is required (positional arg or stdin)"))
	}

	ctx, err := parseContext(pairs)
	if err != nil {
		exitErr("record", err)
	}

	s := openSession()
	defer s.Close()

	id, err := s.tracker.Record(cmd.Context(), tracker.RecordParams{
		Agent:      agent,
		Category:   category,
		Context:    ctx,
		Outcome:    strings.TrimSpace(outcome),
		Confidence: confidence,
		Tags:       splitTags(tagsStr),
	})
	if id == "" {
		exitErr("record", err)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	if wantText("json") {
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return
	}
	printJSON(cmd.OutOrStdout(), map[string]string{"id": id, "project": s.tracker.Project()})
}
