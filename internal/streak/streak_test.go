package streak

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/vocab-keeper/internal/model"
	"github.com/rcliao/vocab-keeper/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(days int) { c.t = c.t.AddDate(0, 0, days) }

func newTestEngine(t *testing.T, day string) (*Engine, *store.Client, *clock) {
	t.Helper()
	b, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	c := store.NewClient(b)
	t.Cleanup(func() { c.Close() })

	start, err := time.ParseInLocation("2006-01-02 15:04", day+" 09:30", time.Local)
	if err != nil {
		t.Fatal(err)
	}
	clk := &clock{t: start}
	return New(c, clk.now), c, clk
}

func TestEnginePersistsStreak(t *testing.T) {
	e, c, clk := newTestEngine(t, "2026-10-12")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := e.CheckAndUpdate(ctx, 5)
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if !res.StreakIncremented || res.NewStreak != i+1 {
			t.Fatalf("day %d: unexpected result %+v", i, res)
		}
		clk.advance(1)
	}

	got := c.Streak(ctx)
	if got.CurrentStreak != 3 || got.LastCompletedDate != "2026-10-14" || len(got.History) != 3 {
		t.Fatalf("unexpected stored streak: %+v", got)
	}

	// Below the threshold nothing is written.
	if _, err := e.CheckAndUpdate(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Streak(ctx).Record(e.Today()); ok {
		t.Fatal("no record expected for a non-qualifying day")
	}
}

func TestEngineRestoresFreezeNextWeek(t *testing.T) {
	e, c, clk := newTestEngine(t, "2026-10-12") // Monday
	ctx := context.Background()

	e.CheckAndUpdate(ctx, 5)
	clk.advance(2) // skip Tuesday
	res, err := e.CheckAndUpdate(ctx, 10)
	if err != nil || !res.UsedFreeze {
		t.Fatalf("expected freeze on Wednesday, got %+v %v", res, err)
	}
	if e.Data(ctx).StreakFreezeAvailable {
		t.Fatal("freeze should stay spent within the week")
	}

	clk.advance(4) // Sunday
	if !e.Data(ctx).StreakFreezeAvailable {
		t.Fatal("freeze should be available in the new week")
	}
	if !c.Streak(ctx).StreakFreezeAvailable {
		t.Fatal("restored freeze should be persisted")
	}
}

func TestResetTodayProgress(t *testing.T) {
	e, c, clk := newTestEngine(t, "2026-10-15")
	ctx := context.Background()

	e.CheckAndUpdate(ctx, 6)
	clk.advance(1)
	e.CheckAndUpdate(ctx, 7)

	today := e.Today()
	p := model.NewDailyProgress(today)
	p.AddWordID(model.ModeEnToMn, 1)
	c.SaveDailyProgress(ctx, p)
	c.SaveExtraSession(ctx, model.ExtraWordsSession{DailyProgress: model.NewDailyProgress(today), SessionID: "s1", WordIDs: []int{2}})

	if err := e.ResetTodayProgress(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	got := c.Streak(ctx)
	if got.CurrentStreak != 1 || got.LastCompletedDate != "2026-10-15" {
		t.Fatalf("expected streak back to yesterday, got %+v", got)
	}
	if dp := c.DailyProgress(ctx); dp == nil || len(dp.EnToMnWordIDs) != 0 || dp.Date != today {
		t.Fatalf("daily progress not cleared: %+v", dp)
	}
	if c.ExtraSession(ctx) != nil {
		t.Fatal("extra session not cleared")
	}
}

func TestWeek(t *testing.T) {
	e, _, clk := newTestEngine(t, "2026-10-13") // Tuesday
	ctx := context.Background()

	e.CheckAndUpdate(ctx, 5)
	clk.advance(1)

	week := e.Week(ctx, e.Today())
	want := []model.DayStatus{
		model.DayMissed, model.DayMissed, model.DayCompleted, model.DayPending,
		model.DayFuture, model.DayFuture, model.DayFuture,
	}
	if len(week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week))
	}
	for i, d := range week {
		if d.Status != want[i] {
			t.Errorf("%s (%s): got %s, want %s", d.Date, d.Weekday, d.Status, want[i])
		}
	}
	if week[0].Weekday != "Sun" || week[2].WordsCompleted != 5 {
		t.Errorf("unexpected week cells: %+v", week)
	}
}
