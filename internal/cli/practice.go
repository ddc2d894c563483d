package cli

import (
	"fmt"
	"io"

	"github.com/rcliao/vocab-keeper/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	today := &cobra.Command{
		Use:   "today",
		Short: "Show today's progress and daily words",
		Run:   runToday,
	}

	practice := &cobra.Command{
		Use:   "practice",
		Short: "Record practice for today",
	}

	words := &cobra.Command{
		Use:   "words <en_to_mn|mn_to_en>",
		Short: "List the session's words in practice order for a direction",
		Args:  cobra.ExactArgs(1),
		Run:   runPracticeWords,
	}
	words.Flags().Bool("extra", false, "Use the extra session")

	card := &cobra.Command{
		Use:   "card <en_to_mn|mn_to_en> <word-id>",
		Short: "Mark one card as completed",
		Args:  cobra.ExactArgs(2),
		Run:   runPracticeCard,
	}
	card.Flags().Bool("extra", false, "Record in the extra session")

	finish := &cobra.Command{
		Use:   "finish <en_to_mn|mn_to_en>",
		Short: "Mark a direction completed and update the streak",
		Args:  cobra.ExactArgs(1),
		Run:   runPracticeFinish,
	}
	finish.Flags().Bool("extra", false, "Finish the extra session's direction")

	extra := &cobra.Command{
		Use:   "extra",
		Short: "Start a new extra session, replacing any current one",
		Run:   runPracticeExtra,
	}

	clearExtra := &cobra.Command{
		Use:   "clear-extra",
		Short: "Discard today's extra session",
		Run:   runPracticeClearExtra,
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Undo today's progress and its streak credit",
		Run:   runPracticeReset,
	}

	practice.AddCommand(words, card, finish, extra, clearExtra, reset)
	RootCmd.AddCommand(today, practice)
}

func parseMode(s string) model.Mode {
	m := model.Mode(s)
	if !m.Valid() {
		exitErr("parse mode", fmt.Errorf("expected en_to_mn or mn_to_en, got %q", s))
	}
	return m
}

type todayView struct {
	Date       model.Date               `json:"date"`
	Completed  int                      `json:"completed"`
	Daily      model.DailyProgress      `json:"daily"`
	DailyWords []model.Word             `json:"daily_words"`
	Extra      *model.ExtraWordsSession `json:"extra,omitempty"`
	ExtraWords []model.Word             `json:"extra_words,omitempty"`
}

func runToday(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	ctx := cmd.Context()
	sum := a.Progress.Summary(ctx)
	v := todayView{
		Date:       sum.Date,
		Completed:  sum.Completed,
		Daily:      sum.Daily,
		DailyWords: a.Progress.DailyWords(ctx),
		Extra:      sum.Extra,
		ExtraWords: a.Progress.ExtraWords(ctx),
	}
	output(v, func(w io.Writer) { writeToday(w, v) })
}

func runPracticeWords(cmd *cobra.Command, args []string) {
	mode := parseMode(args[0])
	extra, _ := cmd.Flags().GetBool("extra")

	a := mustOpenApp(cmd)
	defer a.Close()

	printWords(a.Progress.GetWordsForMode(cmd.Context(), mode, extra))
}

func runPracticeCard(cmd *cobra.Command, args []string) {
	mode := parseMode(args[0])
	id := parseID(args[1])
	extra, _ := cmd.Flags().GetBool("extra")

	a := mustOpenApp(cmd)
	defer a.Close()

	if err := a.Progress.MarkCardCompleted(cmd.Context(), mode, id, extra); err != nil {
		exitErr("mark card", err)
	}
	fmt.Printf(`{"ok":true,"completed_today":%d}`+"\n", a.Progress.CompletedToday(cmd.Context()))
}

func runPracticeFinish(cmd *cobra.Command, args []string) {
	mode := parseMode(args[0])
	extra, _ := cmd.Flags().GetBool("extra")

	a := mustOpenApp(cmd)
	defer a.Close()

	res, err := a.Progress.MarkModeCompleted(cmd.Context(), mode, extra)
	if err != nil {
		exitErr("finish", err)
	}
	printJSON(map[string]any{
		"ok":              true,
		"completed_today": a.Progress.CompletedToday(cmd.Context()),
		"streak":          res,
	})
}

func runPracticeExtra(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	sess, err := a.Progress.StartExtraSession(cmd.Context())
	if err != nil {
		exitErr("start extra session", err)
	}
	printJSON(sess)
}

func runPracticeClearExtra(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	if err := a.Progress.ClearExtraSession(cmd.Context()); err != nil {
		exitErr("clear extra session", err)
	}
	fmt.Println(`{"ok":true}`)
}

func runPracticeReset(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	if err := a.Streak.ResetTodayProgress(cmd.Context()); err != nil {
		exitErr("reset", err)
	}
	printJSON(a.Streak.Data(cmd.Context()))
}
