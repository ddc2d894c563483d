package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rcliao/vocab-keeper/internal/model"
	"github.com/rcliao/vocab-keeper/internal/packs"
	"github.com/rcliao/vocab-keeper/internal/streak"
)

// output prints v as JSON, or through text when --format=text.
func output(v any, text func(io.Writer)) {
	if formatFlag == "text" {
		text(os.Stdout)
		return
	}
	printJSON(v)
}

func writeStreak(w io.Writer, s model.StreakData) {
	freeze := "used"
	if s.StreakFreezeAvailable {
		freeze = "available"
	}
	fmt.Fprintf(w, "streak:  %d (longest %d)\n", s.CurrentStreak, s.LongestStreak)
	if !s.LastCompletedDate.IsZero() {
		fmt.Fprintf(w, "last:    %s\n", s.LastCompletedDate)
	}
	fmt.Fprintf(w, "freeze:  %s\n", freeze)
}

func writeWeek(w io.Writer, days []streak.Day) {
	for _, d := range days {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", d.Date, d.Weekday, d.Status, d.WordsCompleted)
	}
}

func writeOffers(w io.Writer, offers []packs.Offer) {
	for _, o := range offers {
		state := "new"
		if o.Status != nil {
			state = fmt.Sprintf("%s v%d", o.Status.Status, o.Status.Version)
		}
		flag := ""
		if o.Pending {
			flag = "\tpending"
		}
		fmt.Fprintf(w, "%s\t%s\tv%d\t%s%s\n", o.PackID, o.Title, o.Latest, state, flag)
	}
}

func writeToday(w io.Writer, v todayView) {
	done := func(b bool) string {
		if b {
			return "done"
		}
		return "todo"
	}
	fmt.Fprintf(w, "date:      %s\n", v.Date)
	fmt.Fprintf(w, "completed: %d\n", v.Completed)
	fmt.Fprintf(w, "en_to_mn:  %s (%d/%d)\n", done(v.Daily.EnToMnCompleted), len(v.Daily.EnToMnWordIDs), len(v.DailyWords))
	fmt.Fprintf(w, "mn_to_en:  %s (%d/%d)\n", done(v.Daily.MnToEnCompleted), len(v.Daily.MnToEnWordIDs), len(v.DailyWords))
	if v.Extra != nil {
		fmt.Fprintf(w, "extra:     %d words, session %s\n", len(v.ExtraWords), v.Extra.SessionID)
	}
}
