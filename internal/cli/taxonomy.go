package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "taxonomy [category]",
		Short: "Show the category taxonomy",
		Long:  "Show the configured category families, or the family of one category.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runTaxonomy,
	}

	RootCmd.AddCommand(cmd)
}

func runTaxonomy(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	w := cmd.OutOrStdout()

	if len(args) == 1 {
		family, ok := cfg.Taxonomy.FamilyOf(args[0])
		if !ok {
			exitErr("taxonomy", fmt.Errorf("category %q is not in any family", args[0]))
		}
		fmt.Fprintln(w, family)
		return
	}

	if !wantText("json") {
		printJSON(w, cfg.Taxonomy)
		return
	}
	for _, family := range cfg.Taxonomy.Families() {
		fmt.Fprintf(w, "%s: %s\n", family, strings.Join(cfg.Taxonomy[family], ", "))
	}
}
