package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show the rolling insight index",
		Long:  "Show per agent and category counters kept up to date on every record and sync.",
		Args:  cobra.NoArgs,
		Run:   runInsights,
	}

	RootCmd.AddCommand(cmd)
}

func runInsights(cmd *cobra.Command, args []string) {
	s := openSession()
	defer s.Close()

	records, err := s.tracker.Insights(cmd.Context())
	if err != nil {
		exitErr("insights", err)
	}

	if !wantText("json") {
		printJSON(cmd.OutOrStdout(), records)
		return
	}

	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w := cmd.OutOrStdout()
	for _, k := range keys {
		rec := records[k]
		source := "local"
		if rec.Source != "" {
			source = rec.Source
		}
		fmt.Fprintf(w, "%s: %d events, %d successful (%s)\n", k, rec.Count, rec.SuccessCount, source)
	}
}
