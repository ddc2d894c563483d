package cli

import (
	"fmt"
	"io"

	"github.com/rcliao/vocab-keeper/internal/app"
	"github.com/rcliao/vocab-keeper/internal/packs"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "packs",
		Short: "List content packs and their status",
		Run:   runPacks,
	}

	accept := &cobra.Command{
		Use:   "accept <pack-id>",
		Short: "Accept a pack",
		Args:  cobra.ExactArgs(1),
		Run:   runPacksAccept,
	}
	accept.Flags().IntP("version", "v", 0, "Pack version (default: latest)")

	dismiss := &cobra.Command{
		Use:   "dismiss <pack-id>",
		Short: "Dismiss a pack until its next version",
		Args:  cobra.ExactArgs(1),
		Run:   runPacksDismiss,
	}
	dismiss.Flags().IntP("version", "v", 0, "Pack version (default: latest)")

	upgrade := &cobra.Command{
		Use:   "upgrade <pack-id>",
		Short: "Upgrade an accepted pack",
		Long: "Upgrade an accepted pack to a newer version. Edited words the new version drops become custom words.\n" +
			"--mode reset also discards edits and deletions on the old words and clears confidence on changed words;\n" +
			"--mode new_words keeps them.",
		Args: cobra.ExactArgs(1),
		Run:  runPacksUpgrade,
	}
	upgrade.Flags().IntP("version", "v", 0, "Target version (default: latest)")
	upgrade.Flags().StringP("mode", "m", string(packs.ModeNewWords), "Upgrade mode: reset or new_words")

	diff := &cobra.Command{
		Use:   "diff <pack-id>",
		Short: "Show words removed, changed and added between two versions",
		Args:  cobra.ExactArgs(1),
		Run:   runPacksDiff,
	}
	diff.Flags().Int("from", 0, "Old version (default: accepted version)")
	diff.Flags().Int("to", 0, "New version (default: latest)")

	pending := &cobra.Command{
		Use:   "pending",
		Short: "Count packs awaiting a decision",
		Run:   runPacksPending,
	}

	cmd.AddCommand(accept, dismiss, upgrade, diff, pending)
	RootCmd.AddCommand(cmd)
}

// packVersion returns the --version flag or the pack's latest version.
func packVersion(cmd *cobra.Command, a *app.App, flag, id string) int {
	v, _ := cmd.Flags().GetInt(flag)
	if v > 0 {
		return v
	}
	p, ok := a.Catalog.Pack(id)
	if !ok {
		exitErr("pack", fmt.Errorf("pack %q: %w", id, packs.ErrUnknownPack))
	}
	return p.Latest().Version
}

func runPacks(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	offers := a.Packs.Offers(cmd.Context())
	output(offers, func(w io.Writer) { writeOffers(w, offers) })
}

func runPacksAccept(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	v := packVersion(cmd, a, "version", args[0])
	if err := a.Packs.Accept(cmd.Context(), args[0], v); err != nil {
		exitErr("accept", err)
	}
	fmt.Printf(`{"ok":true,"pack":%q,"version":%d}`+"\n", args[0], v)
}

func runPacksDismiss(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	v := packVersion(cmd, a, "version", args[0])
	if err := a.Packs.Dismiss(cmd.Context(), args[0], v); err != nil {
		exitErr("dismiss", err)
	}
	fmt.Printf(`{"ok":true,"pack":%q,"version":%d}`+"\n", args[0], v)
}

func runPacksUpgrade(cmd *cobra.Command, args []string) {
	modeStr, _ := cmd.Flags().GetString("mode")
	mode, err := packs.ParseMode(modeStr)
	if err != nil {
		exitErr("upgrade", err)
	}

	a := mustOpenApp(cmd)
	defer a.Close()

	v := packVersion(cmd, a, "version", args[0])
	res, err := a.Packs.Upgrade(cmd.Context(), args[0], v, mode)
	if err != nil {
		exitErr("upgrade", err)
	}
	printJSON(res)
}

func runPacksDiff(cmd *cobra.Command, args []string) {
	from, _ := cmd.Flags().GetInt("from")

	a := mustOpenApp(cmd)
	defer a.Close()

	id := args[0]
	to := packVersion(cmd, a, "to", id)
	if from == 0 {
		for _, st := range a.Packs.AcceptedPacks(cmd.Context()) {
			if st.PackID == id {
				from = st.Version
			}
		}
	}
	if from == 0 {
		exitErr("diff", fmt.Errorf("pack %q is not accepted; pass --from", id))
	}

	d, err := a.Packs.Diff(id, from, to)
	if err != nil {
		exitErr("diff", err)
	}
	printJSON(d)
}

func runPacksPending(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	fmt.Printf(`{"pending":%d}`+"\n", a.Packs.PendingCount(cmd.Context()))
}
