package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "bundles",
		Short: "List bundles not yet accepted or dismissed",
		Run:   runBundles,
	}

	accept := &cobra.Command{
		Use:   "accept <bundle-id>",
		Short: "Add a bundle's words to the dictionary",
		Args:  cobra.ExactArgs(1),
		Run:   runBundlesAccept,
	}

	dismiss := &cobra.Command{
		Use:   "dismiss <bundle-id>",
		Short: "Decline a bundle",
		Args:  cobra.ExactArgs(1),
		Run:   runBundlesDismiss,
	}

	cmd.AddCommand(accept, dismiss)
	RootCmd.AddCommand(cmd)
}

func runBundles(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	type bundleView struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Words       int    `json:"words"`
	}
	out := []bundleView{}
	for _, b := range a.Dictionary.PendingBundles(cmd.Context()) {
		out = append(out, bundleView{ID: b.ID, Title: b.Title, Description: b.Description, Words: len(b.Words)})
	}
	printJSON(out)
}

func runBundlesAccept(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	res, err := a.Dictionary.AcceptBundle(cmd.Context(), args[0])
	if err != nil {
		exitErr("accept bundle", err)
	}
	printJSON(res)
}

func runBundlesDismiss(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	if err := a.Dictionary.DismissBundle(cmd.Context(), args[0]); err != nil {
		exitErr("dismiss bundle", err)
	}
	fmt.Printf(`{"ok":true,"bundle":%q}`+"\n", args[0])
}
