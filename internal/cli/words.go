package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/vocab-keeper/internal/dictionary"
	"github.com/rcliao/vocab-keeper/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a custom word",
		Run:   runAdd,
	}
	addWordFlags(add)
	add.MarkFlagRequired("en")
	add.MarkFlagRequired("mn")

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a word",
		Long:  "Edit a word. Custom words are changed in place; base, pack and bundle words get an override.",
		Args:  cobra.ExactArgs(1),
		Run:   runEdit,
	}
	addWordFlags(edit)

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a word with its source and confidence",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the resolved dictionary",
		Run:   runList,
	}
	list.Flags().String("source", "", "Filter by source: base, pack, bundle, custom")
	list.Flags().IntP("limit", "l", 0, "Max results (0 = all)")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a word",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	restore := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a deleted base, pack or bundle word",
		Args:  cobra.ExactArgs(1),
		Run:   runRestore,
	}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search words in English, Mongolian or pronunciation",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}
	search.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(add, edit, get, list, rm, restore, search)
}

func addWordFlags(cmd *cobra.Command) {
	cmd.Flags().String("en", "", "English")
	cmd.Flags().String("mn", "", "Mongolian")
	cmd.Flags().StringP("pron", "p", "", "Pronunciation")
	cmd.Flags().StringP("category", "c", "", "Category")
}

func wordFlags(cmd *cobra.Command, f *model.WordFields) {
	if cmd.Flags().Changed("en") {
		f.English, _ = cmd.Flags().GetString("en")
	}
	if cmd.Flags().Changed("mn") {
		f.Mongolian, _ = cmd.Flags().GetString("mn")
	}
	if cmd.Flags().Changed("pron") {
		f.Pronunciation, _ = cmd.Flags().GetString("pron")
	}
	if cmd.Flags().Changed("category") {
		f.Category, _ = cmd.Flags().GetString("category")
	}
}

// exitWordErr reports validation problems as a prompt to fix the input.
func exitWordErr(op string, err error) {
	var ve *dictionary.ValidationError
	if errors.As(err, &ve) {
		exitErr(op, fmt.Errorf("--%s is required", map[string]string{"english": "en", "mongolian": "mn"}[ve.Field]))
	}
	exitErr(op, err)
}

func runAdd(cmd *cobra.Command, args []string) {
	var f model.WordFields
	wordFlags(cmd, &f)

	a := mustOpenApp(cmd)
	defer a.Close()

	w, err := a.Dictionary.AddWord(cmd.Context(), f)
	if err != nil {
		exitWordErr("add", err)
	}
	printJSON(w)
}

func runEdit(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	a := mustOpenApp(cmd)
	defer a.Close()

	w, ok := a.Dictionary.Lookup(cmd.Context(), id)
	if !ok {
		exitErr("edit", fmt.Errorf("word %d: %w", id, dictionary.ErrNotFound))
	}
	f := w.Fields()
	wordFlags(cmd, &f)

	updated := f.WithID(id)
	if err := a.Dictionary.UpdateWord(cmd.Context(), updated); err != nil {
		exitWordErr("edit", err)
	}
	printJSON(updated)
}

type wordView struct {
	model.Word
	Source     dictionary.Source `json:"source"`
	Confidence model.Confidence  `json:"confidence,omitempty"`
}

func runGet(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	a := mustOpenApp(cmd)
	defer a.Close()

	ctx := cmd.Context()
	w, ok := a.Dictionary.Lookup(ctx, id)
	if !ok {
		exitErr("get", fmt.Errorf("word %d: %w", id, dictionary.ErrNotFound))
	}
	level, _ := a.Confidence.Get(ctx, id)
	printJSON(wordView{Word: w, Source: a.Dictionary.SourceOf(ctx, id), Confidence: level})
}

func printWords(words []model.Word) {
	if formatFlag == "text" {
		for _, w := range words {
			fmt.Printf("%d\t%s\t%s\t%s\n", w.ID, w.English, w.Mongolian, w.Pronunciation)
		}
		return
	}
	if words == nil {
		words = []model.Word{}
	}
	printJSON(words)
}

func runList(cmd *cobra.Command, args []string) {
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	a := mustOpenApp(cmd)
	defer a.Close()

	ctx := cmd.Context()
	var out []model.Word
	for _, w := range a.Dictionary.Resolve(ctx) {
		if source != "" && string(a.Dictionary.SourceOf(ctx, w.ID).Kind) != source {
			continue
		}
		out = append(out, w)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	printWords(out)
}

func runRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	a := mustOpenApp(cmd)
	defer a.Close()

	if err := a.Dictionary.DeleteWord(cmd.Context(), id); err != nil {
		exitErr("rm", err)
	}
	fmt.Printf(`{"ok":true,"deleted":%d}`+"\n", id)
}

func runRestore(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	a := mustOpenApp(cmd)
	defer a.Close()

	if err := a.Dictionary.RestoreWord(cmd.Context(), id); err != nil {
		exitErr("restore", err)
	}
	fmt.Printf(`{"ok":true,"restored":%d}`+"\n", id)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	a := mustOpenApp(cmd)
	defer a.Close()

	printWords(a.Dictionary.Search(cmd.Context(), strings.Join(args, " "), limit))
}
