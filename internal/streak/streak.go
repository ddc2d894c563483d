package streak

import (
	"context"
	"time"

	"github.com/rcliao/vocab-keeper/internal/logger"
	"github.com/rcliao/vocab-keeper/internal/model"
	"github.com/rcliao/vocab-keeper/internal/store"
)

// Engine persists streak state. Every mutator writes before returning.
type Engine struct {
	store *store.Client
	now   func() time.Time
}

// New creates a streak engine. A nil clock means time.Now.
func New(c *store.Client, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{store: c, now: now}
}

// Today returns the current local calendar day.
func (e *Engine) Today() model.Date {
	return model.DateOf(e.now())
}

// Data returns the streak state, first restoring a freeze spent in an
// earlier week.
func (e *Engine) Data(ctx context.Context) model.StreakData {
	data := e.store.Streak(ctx)
	if next, changed := RefreshFreeze(data, e.Today()); changed {
		logger.Debug("streak freeze available again", "used", next.StreakFreezeUsedDate.String())
		e.store.SaveStreak(ctx, next)
		return next
	}
	return data
}

// CheckAndUpdate feeds today's completed word count into the streak.
func (e *Engine) CheckAndUpdate(ctx context.Context, wordsCompletedToday int) (Result, error) {
	data := e.Data(ctx)
	next, res := Evaluate(data, e.Today(), wordsCompletedToday)
	if wordsCompletedToday < QualifyingWords {
		return res, nil
	}
	if err := e.store.SaveStreak(ctx, next); err != nil {
		return res, err
	}
	if res.StreakBroken || res.UsedFreeze {
		logger.Info("streak updated", "streak", res.NewStreak, "broken", res.StreakBroken, "used_freeze", res.UsedFreeze)
	}
	return res, nil
}

// ResetTodayProgress clears today's practice: the day's streak credit, the
// daily progress and the extra session.
func (e *Engine) ResetTodayProgress(ctx context.Context) error {
	today := e.Today()
	if err := e.store.SaveStreak(ctx, ResetDay(e.Data(ctx), today)); err != nil {
		return err
	}
	if err := e.store.SaveDailyProgress(ctx, model.NewDailyProgress(today)); err != nil {
		return err
	}
	return e.store.ClearExtraSession(ctx)
}

// DayStatus derives the status of date relative to today.
func DayStatus(date, today model.Date, data model.StreakData) model.DayStatus {
	if date > today {
		return model.DayFuture
	}
	if r, ok := data.Record(date); ok {
		return r.Status
	}
	if date == today {
		return model.DayPending
	}
	return model.DayMissed
}

// WeekDays returns the Sunday to Saturday week containing ref.
func WeekDays(ref model.Date) []model.Date {
	start := ref.WeekStart()
	days := make([]model.Date, 7)
	for i := range days {
		days[i] = start.AddDays(i)
	}
	return days
}

// Day is one cell of the week view.
type Day struct {
	Date           model.Date      `json:"date"`
	Weekday        string          `json:"weekday"`
	Status         model.DayStatus `json:"status"`
	WordsCompleted int             `json:"words_completed"`
}

// Week returns the status of each day in the week containing ref.
func (e *Engine) Week(ctx context.Context, ref model.Date) []Day {
	data := e.Data(ctx)
	today := e.Today()

	out := make([]Day, 0, 7)
	for _, d := range WeekDays(ref) {
		day := Day{Date: d, Weekday: d.Weekday().String()[:3], Status: DayStatus(d, today, data)}
		if r, ok := data.Record(d); ok {
			day.WordsCompleted = r.WordsCompleted
		}
		out = append(out, day)
	}
	return out
}
