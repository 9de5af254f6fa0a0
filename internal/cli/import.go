package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/learning-tracker/internal/model"
	"github.com/rcliao/learning-tracker/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import learning events from JSON",
		Long: "Import events from a JSON array (file or stdin) in the format produced by export. " +
			"Events whose id is already present are skipped.",
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	cmd.Flags().String("scope", "local", "Scope: local or global")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	scope, _ := cmd.Flags().GetString("scope")

	var (
		data []byte
		err  error
	)
	if len(args) > 0 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		exitErr("read input", err)
	}

	var events []model.LearningEvent
	if err := json.Unmarshal(data, &events); err != nil {
		exitErr("parse json", err)
	}

	s := openSession()
	defer s.Close()

	res, err := store.Import(cmd.Context(), s.scopeStore(scope), events)
	if err != nil {
		exitErr("import", err)
	}
	printJSON(cmd.OutOrStdout(), res)
}
