package cli

import (
	"io"

	"github.com/rcliao/vocab-keeper/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Show streak state",
		Run:   runStreak,
	}

	week := &cobra.Command{
		Use:   "week",
		Short: "Show the status of each day of a week",
		Run:   runStreakWeek,
	}
	week.Flags().String("date", "", "Any day of the week to show, YYYY-MM-DD (default: today)")

	cmd.AddCommand(week)
	RootCmd.AddCommand(cmd)
}

func runStreak(cmd *cobra.Command, args []string) {
	a := mustOpenApp(cmd)
	defer a.Close()

	data := a.Streak.Data(cmd.Context())
	output(data, func(w io.Writer) { writeStreak(w, data) })
}

func runStreakWeek(cmd *cobra.Command, args []string) {
	dateStr, _ := cmd.Flags().GetString("date")

	a := mustOpenApp(cmd)
	defer a.Close()

	ref := a.Streak.Today()
	if dateStr != "" {
		d, err := model.ParseDate(dateStr)
		if err != nil {
			exitErr("week", err)
		}
		ref = d
	}
	days := a.Streak.Week(cmd.Context(), ref)
	output(days, func(w io.Writer) { writeWeek(w, days) })
}
