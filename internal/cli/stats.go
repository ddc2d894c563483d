package cli

import (
	"github.com/rcliao/vocab-keeper/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show storage statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	ctx := cmd.Context()
	path := a.Config.DBPath
	if a.Store.Kind() == store.KindKV {
		path = a.Config.KVPath
	}

	printJSON(struct {
		*store.Stats
		ResolvedWords  int `json:"resolved_words"`
		PendingPacks   int `json:"pending_packs"`
		PendingBundles int `json:"pending_bundles"`
	}{
		Stats:          a.Store.Stats(ctx, path),
		ResolvedWords:  len(a.Dictionary.Resolve(ctx)),
		PendingPacks:   a.Packs.PendingCount(ctx),
		PendingBundles: len(a.Dictionary.PendingBundles(ctx)),
	})
}
