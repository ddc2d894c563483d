package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all user data as JSON",
		Long:  "Export streak, progress, confidence, custom words, edits, deletions and pack decisions as one JSON snapshot.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	snap, err := a.Store.Export(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}
	printJSON(snap)
}
