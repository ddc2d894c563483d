package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rcliao/vocab-keeper/internal/dictionary"
	"github.com/rcliao/vocab-keeper/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import user data from JSON",
		Long:  "Import a snapshot (stdin or file) in the format produced by export. Records are merged into the store.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	words := &cobra.Command{
		Use:   "import-words <file.xlsx|file.csv>",
		Short: "Add custom words from a spreadsheet",
		Long:  "Add custom words from an .xlsx or .csv file. Columns: English, Mongolian, pronunciation, category.",
		Args:  cobra.ExactArgs(1),
		Run:   runImportWords,
	}
	words.Flags().String("sheet", "", "Sheet name (xlsx only, default: first sheet)")
	words.Flags().Bool("header", true, "First row is a header")

	RootCmd.AddCommand(cmd, words)
}

func runImport(cmd *cobra.Command, args []string) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		exitErr("parse json", err)
	}

	a := mustOpenApp(cmd)
	defer a.Close()

	if err := a.Store.Import(cmd.Context(), snap); err != nil {
		exitErr("import", err)
	}
	fmt.Printf(`{"ok":true,"custom_words":%d,"confidences":%d}`+"\n", len(snap.CustomWords), len(snap.Confidences))
}

func runImportWords(cmd *cobra.Command, args []string) {
	sheet, _ := cmd.Flags().GetString("sheet")
	header, _ := cmd.Flags().GetBool("header")

	a := mustOpenApp(cmd)
	defer a.Close()

	res, err := a.Dictionary.ImportFile(cmd.Context(), dictionary.ImportConfig{
		FilePath:   args[0],
		SheetName:  sheet,
		SkipHeader: header,
	})
	if err != nil {
		exitErr("import words", err)
	}
	printJSON(res)
}
