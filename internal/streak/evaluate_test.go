package streak

import (
	"math/rand"
	"testing"

	"github.com/rcliao/vocab-keeper/internal/model"
)

const today model.Date = "2026-10-17" // a Saturday

func history(recs ...model.DayRecord) []model.DayRecord { return recs }

func completed(d model.Date, n int) model.DayRecord {
	return model.DayRecord{Date: d, Status: model.DayCompleted, WordsCompleted: n}
}

func TestEvaluateFirstDay(t *testing.T) {
	next, res := Evaluate(model.NewStreakData(), today, 5)
	if !res.StreakIncremented || res.StreakBroken || res.NewStreak != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if next.CurrentStreak != 1 || next.LongestStreak != 1 || next.LastCompletedDate != today {
		t.Fatalf("unexpected state: %+v", next)
	}
	if r, ok := next.Record(today); !ok || r.Status != model.DayCompleted || r.WordsCompleted != 5 {
		t.Fatalf("expected completed record for today, got %+v", next.History)
	}
}

func TestEvaluateBelowThreshold(t *testing.T) {
	data := model.NewStreakData()
	next, res := Evaluate(data, today, 4)
	if res.StreakIncremented || res.NewStreak != 0 || len(next.History) != 0 {
		t.Fatalf("expected no change, got %+v %+v", res, next)
	}
}

func TestEvaluateConsecutiveDay(t *testing.T) {
	data := model.StreakData{
		CurrentStreak: 3, LongestStreak: 3, LastCompletedDate: today.AddDays(-1),
		StreakFreezeAvailable: true,
		History:               history(completed(today.AddDays(-1), 6)),
	}
	next, res := Evaluate(data, today, 5)
	if !res.StreakIncremented || next.CurrentStreak != 4 || next.LongestStreak != 4 {
		t.Fatalf("expected streak 4, got %+v %+v", res, next)
	}
	if len(data.History) != 1 {
		t.Fatal("input history must not be modified")
	}
}

func TestEvaluateSameDayReentry(t *testing.T) {
	first, _ := Evaluate(model.NewStreakData(), today, 5)

	second, res := Evaluate(first, today, 8)
	if res.StreakIncremented || second.CurrentStreak != 1 {
		t.Fatalf("re-entry must not change the streak: %+v", res)
	}
	if r, _ := second.Record(today); r.WordsCompleted != 8 {
		t.Fatalf("expected word count bumped to 8, got %d", r.WordsCompleted)
	}

	third, _ := Evaluate(second, today, 6)
	if r, _ := third.Record(today); r.WordsCompleted != 8 {
		t.Fatalf("word count must only move upward, got %d", r.WordsCompleted)
	}
}

func twoDayGap() model.StreakData {
	return model.StreakData{
		CurrentStreak: 4, LongestStreak: 6, LastCompletedDate: today.AddDays(-2),
		StreakFreezeAvailable: true,
		History:               history(completed(today.AddDays(-2), 7)),
	}
}

func TestEvaluateFreezeConsumption(t *testing.T) {
	next, res := Evaluate(twoDayGap(), today, 10)
	if !res.UsedFreeze || !res.StreakIncremented || res.StreakBroken {
		t.Fatalf("unexpected result: %+v", res)
	}
	if next.StreakFreezeAvailable || next.StreakFreezeUsedDate != today {
		t.Fatalf("freeze should be consumed: %+v", next)
	}
	if next.CurrentStreak != 5 {
		t.Fatalf("expected streak 5, got %d", next.CurrentStreak)
	}
	if r, ok := next.Record(today.AddDays(-1)); !ok || r.Status != model.DayPaused {
		t.Fatalf("expected paused record for the skipped day, got %+v", next.History)
	}
}

func TestEvaluateStreakBreak(t *testing.T) {
	tests := []struct {
		name  string
		data  func() model.StreakData
		words int
	}{
		{"below freeze threshold", twoDayGap, 5},
		{"freeze spent", func() model.StreakData {
			d := twoDayGap()
			d.StreakFreezeAvailable = false
			return d
		}, 12},
		{"gap too long", func() model.StreakData {
			d := twoDayGap()
			d.LastCompletedDate = today.AddDays(-3)
			return d
		}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.data()
			next, res := Evaluate(data, today, tt.words)
			if !res.StreakBroken || res.UsedFreeze || next.CurrentStreak != 1 {
				t.Fatalf("expected broken streak, got %+v current=%d", res, next.CurrentStreak)
			}
			if next.LongestStreak != data.LongestStreak {
				t.Errorf("longest streak must survive a break")
			}
			if next.StreakFreezeAvailable != data.StreakFreezeAvailable {
				t.Errorf("freeze must not be touched by a break")
			}
			if _, ok := next.Record(today.AddDays(-1)); ok {
				t.Errorf("no paused record expected")
			}
		})
	}
}

func TestEvaluateCapsHistory(t *testing.T) {
	data := model.NewStreakData()
	start := today.AddDays(-39)
	for i := 0; i < 40; i++ {
		data, _ = Evaluate(data, start.AddDays(i), 5)
	}
	if len(data.History) != model.HistoryLimit {
		t.Fatalf("expected %d records, got %d", model.HistoryLimit, len(data.History))
	}
	if data.History[0].Date != today.AddDays(-29) || data.History[len(data.History)-1].Date != today {
		t.Fatalf("expected the most recent days kept in order, got %s..%s",
			data.History[0].Date, data.History[len(data.History)-1].Date)
	}
	if data.CurrentStreak != 40 || data.LongestStreak != 40 {
		t.Fatalf("unexpected streak %d/%d", data.CurrentStreak, data.LongestStreak)
	}
}

func TestRefreshFreeze(t *testing.T) {
	data := model.StreakData{StreakFreezeAvailable: false, StreakFreezeUsedDate: "2026-10-14"}

	if _, changed := RefreshFreeze(data, today); changed {
		t.Error("freeze used earlier this week must stay spent")
	}
	next, changed := RefreshFreeze(data, "2026-10-18")
	if !changed || !next.StreakFreezeAvailable {
		t.Error("freeze should be available in the following week")
	}
	if _, changed := RefreshFreeze(model.NewStreakData(), today); changed {
		t.Error("available freeze needs no refresh")
	}
}

func TestRecount(t *testing.T) {
	h := history(
		completed("2026-10-10", 5),
		completed("2026-10-12", 5),
		model.DayRecord{Date: "2026-10-13", Status: model.DayPaused},
		completed("2026-10-14", 5),
		completed("2026-10-15", 5),
	)
	tests := []struct {
		end           model.Date
		want          int
		wantExhausted bool
	}{
		{"2026-10-15", 3, false},
		{"2026-10-13", 1, false},
		{"2026-10-16", 0, false},
		{"2026-10-10", 1, true},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, exhausted := Recount(h, tt.end)
		if got != tt.want || exhausted != tt.wantExhausted {
			t.Errorf("Recount(%q) = %d, %v; want %d, %v", tt.end, got, exhausted, tt.want, tt.wantExhausted)
		}
	}
}

func TestResetDay(t *testing.T) {
	before := model.StreakData{
		CurrentStreak: 2, LongestStreak: 2, LastCompletedDate: today.AddDays(-1),
		StreakFreezeAvailable: true,
		History:               history(completed(today.AddDays(-2), 5), completed(today.AddDays(-1), 5)),
	}
	after, _ := Evaluate(before, today, 6)

	reset := ResetDay(after, today)
	if reset.CurrentStreak != 2 || reset.LastCompletedDate != today.AddDays(-1) {
		t.Fatalf("expected streak back to 2 ending yesterday, got %+v", reset)
	}
	if _, ok := reset.Record(today); ok {
		t.Fatal("today's record should be removed")
	}
}

func TestResetDayRollsBackLongest(t *testing.T) {
	first, _ := Evaluate(model.NewStreakData(), today, 5)
	reset := ResetDay(first, today)
	if reset.CurrentStreak != 0 || reset.LongestStreak != 0 || len(reset.History) != 0 {
		t.Fatalf("expected a clean slate after undoing the only day, got %+v", reset)
	}

	// A record from an earlier run still in history is kept.
	before := model.StreakData{
		CurrentStreak: 1, LongestStreak: 2, LastCompletedDate: today.AddDays(-1),
		History: history(
			completed(today.AddDays(-5), 5),
			completed(today.AddDays(-4), 5),
			completed(today.AddDays(-1), 5),
		),
	}
	after, _ := Evaluate(before, today, 5)
	if after.LongestStreak != 2 {
		t.Fatalf("setup: expected longest 2, got %d", after.LongestStreak)
	}
	if reset := ResetDay(after, today); reset.LongestStreak != 2 || reset.CurrentStreak != 1 {
		t.Fatalf("expected longest 2 current 1, got %+v", reset)
	}
}

func TestResetDayRefundsFreeze(t *testing.T) {
	before := twoDayGap()
	before.History = history(
		completed(today.AddDays(-5), 5),
		completed(today.AddDays(-4), 5),
		completed(today.AddDays(-3), 5),
		completed(today.AddDays(-2), 7),
	)
	after, res := Evaluate(before, today, 10)
	if !res.UsedFreeze {
		t.Fatal("setup should spend the freeze")
	}

	reset := ResetDay(after, today)
	if !reset.StreakFreezeAvailable || !reset.StreakFreezeUsedDate.IsZero() {
		t.Fatalf("freeze should be refunded: %+v", reset)
	}
	if _, ok := reset.Record(today.AddDays(-1)); ok {
		t.Fatal("paused record should be removed with the refund")
	}
	if reset.CurrentStreak != 4 || reset.LastCompletedDate != today.AddDays(-2) {
		t.Fatalf("expected streak 4 ending two days ago, got %+v", reset)
	}

	redo, res := Evaluate(reset, today, 10)
	if !res.UsedFreeze || redo.CurrentStreak != after.CurrentStreak {
		t.Fatalf("redoing the day should reproduce the streak, got %+v", redo)
	}
}

// TestRecountAgreesWithEvaluate drives Evaluate through random practice
// schedules and checks the stored streak against a recount of the history,
// and that undoing a day restores the previous state.
func TestRecountAgreesWithEvaluate(t *testing.T) {
	wordChoices := []int{0, 0, 3, 5, 5, 7, 10, 12}
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		data := model.NewStreakData()
		day := model.Date("2026-01-01")

		for i := 0; i < 120; i++ {
			day = day.AddDays(1)
			data, _ = RefreshFreeze(data, day)
			words := wordChoices[rng.Intn(len(wordChoices))]

			prev := data
			next, _ := Evaluate(data, day, words)

			if next.LongestStreak < next.CurrentStreak {
				t.Fatalf("seed %d day %s: longest %d < current %d", seed, day, next.LongestStreak, next.CurrentStreak)
			}
			count, exhausted := Recount(next.History, next.LastCompletedDate)
			if !exhausted && count != next.CurrentStreak {
				t.Fatalf("seed %d day %s: recount %d != current %d", seed, day, count, next.CurrentStreak)
			}
			if exhausted && count > next.CurrentStreak {
				t.Fatalf("seed %d day %s: recount %d exceeds current %d", seed, day, count, next.CurrentStreak)
			}

			if words >= QualifyingWords && len(prev.History) < model.HistoryLimit-1 {
				undone := ResetDay(next, day)
				if undone.CurrentStreak != prev.CurrentStreak ||
					undone.LastCompletedDate != prev.LastCompletedDate ||
					undone.LongestStreak != prev.LongestStreak ||
					undone.StreakFreezeAvailable != prev.StreakFreezeAvailable ||
					!sameHistory(undone.History, prev.History) {
					t.Fatalf("seed %d day %s: reset gave %+v, want %+v", seed, day, undone, prev)
				}
			}
			data = next
		}
	}
}

func sameHistory(a, b []model.DayRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDayStatus(t *testing.T) {
	data := model.StreakData{History: history(
		completed(today.AddDays(-2), 5),
		model.DayRecord{Date: today.AddDays(-1), Status: model.DayPaused},
	)}
	tests := []struct {
		date model.Date
		want model.DayStatus
	}{
		{today.AddDays(1), model.DayFuture},
		{today, model.DayPending},
		{today.AddDays(-1), model.DayPaused},
		{today.AddDays(-2), model.DayCompleted},
		{today.AddDays(-3), model.DayMissed},
	}
	for _, tt := range tests {
		if got := DayStatus(tt.date, today, data); got != tt.want {
			t.Errorf("DayStatus(%s) = %s, want %s", tt.date, got, tt.want)
		}
	}
}

func TestWeekDays(t *testing.T) {
	days := WeekDays(today)
	if len(days) != 7 || days[0] != "2026-10-11" || days[6] != "2026-10-17" {
		t.Fatalf("unexpected week: %v", days)
	}
	if got := WeekDays("2026-10-11"); got[0] != "2026-10-11" {
		t.Fatalf("a Sunday starts its own week, got %v", got)
	}
}
