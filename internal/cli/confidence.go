package cli

import (
	"fmt"

	"github.com/rcliao/vocab-keeper/internal/confidence"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "confidence",
		Short: "Show confidence labels by word id",
		Run:   runConfidence,
	}

	set := &cobra.Command{
		Use:   "set <word-id> <learning|familiar|mastered>",
		Short: "Label a word",
		Args:  cobra.ExactArgs(2),
		Run:   runConfidenceSet,
	}

	rm := &cobra.Command{
		Use:   "rm <word-id>",
		Short: "Forget a word's label",
		Args:  cobra.ExactArgs(1),
		Run:   runConfidenceRm,
	}

	cmd.AddCommand(set, rm)
	RootCmd.AddCommand(cmd)
}

func runConfidence(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	printJSON(a.Confidence.GetAll(cmd.Context()))
}

func runConfidenceSet(cmd *cobra.Command, args []string) {
	id := parseID(args[0])
	level, err := confidence.ParseLevel(args[1])
	if err != nil {
		exitErr("confidence", err)
	}

	a := mustOpenApp(cmd)
	defer a.Close()

	all, err := a.Confidence.Update(cmd.Context(), id, level)
	if err != nil {
		exitErr("confidence", err)
	}
	printJSON(all)
}

func runConfidenceRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	a := mustOpenApp(cmd)
	defer a.Close()

	if err := a.Confidence.Delete(cmd.Context(), id); err != nil {
		exitErr("confidence", err)
	}
	fmt.Printf(`{"ok":true,"deleted":%d}`+"\n", id)
}
