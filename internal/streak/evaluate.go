// Package streak implements the daily practice streak with its once-a-week
// freeze. Evaluate and Recount are pure; Engine persists their results.
package streak

import (
	"sort"

	"github.com/rcliao/vocab-keeper/internal/model"
)

const (
	// QualifyingWords completes a day.
	QualifyingWords = 5
	// FreezeWords must be reached on the day after a single missed day to
	// spend the freeze on it.
	FreezeWords = 10
)

// Result describes what an evaluation did to the streak.
type Result struct {
	StreakIncremented bool `json:"streak_incremented"`
	StreakBroken      bool `json:"streak_broken"`
	UsedFreeze        bool `json:"used_freeze"`
	NewStreak         int  `json:"new_streak"`
}

func clone(d model.StreakData) model.StreakData {
	h := make([]model.DayRecord, len(d.History))
	copy(h, d.History)
	d.History = h
	return d
}

// Evaluate applies today's completed word count to data and returns the new
// state. data is not modified.
func Evaluate(data model.StreakData, today model.Date, words int) (model.StreakData, Result) {
	next := clone(data)

	if rec, ok := next.Record(today); ok && rec.Status == model.DayCompleted {
		if words > rec.WordsCompleted {
			rec.WordsCompleted = words
			upsert(&next, rec)
		}
		return next, Result{NewStreak: next.CurrentStreak}
	}
	if words < QualifyingWords {
		return next, Result{NewStreak: next.CurrentStreak}
	}

	var res Result
	if next.LastCompletedDate.IsZero() {
		next.CurrentStreak = 1
		res.StreakIncremented = true
	} else {
		switch gap := model.DaysBetween(next.LastCompletedDate, today); {
		case gap == 1:
			next.CurrentStreak++
			res.StreakIncremented = true
		case gap == 2 && next.StreakFreezeAvailable && words >= FreezeWords:
			upsert(&next, model.DayRecord{Date: today.AddDays(-1), Status: model.DayPaused})
			next.StreakFreezeAvailable = false
			next.StreakFreezeUsedDate = today
			next.CurrentStreak++
			res.StreakIncremented = true
			res.UsedFreeze = true
		case gap == 0:
			// Completed today without a record for it; keep the count.
			if next.CurrentStreak < 1 {
				next.CurrentStreak = 1
			}
		case gap < 0:
			// The last completion lies in the future; the clock moved back.
			next.CurrentStreak = 1
		default:
			next.CurrentStreak = 1
			res.StreakBroken = true
		}
	}

	upsert(&next, model.DayRecord{Date: today, Status: model.DayCompleted, WordsCompleted: words})
	next.LastCompletedDate = today
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	res.NewStreak = next.CurrentStreak
	return next, res
}

// upsert replaces or inserts the record for r.Date, keeps history ordered by
// date and drops the oldest entries beyond the limit.
func upsert(d *model.StreakData, r model.DayRecord) {
	replaced := false
	for i := range d.History {
		if d.History[i].Date == r.Date {
			d.History[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		d.History = append(d.History, r)
	}
	sort.Slice(d.History, func(i, j int) bool { return d.History[i].Date < d.History[j].Date })
	if n := len(d.History); n > model.HistoryLimit {
		d.History = d.History[n-model.HistoryLimit:]
	}
}

func remove(d *model.StreakData, date model.Date) (model.DayRecord, bool) {
	for i, r := range d.History {
		if r.Date == date {
			d.History = append(d.History[:i], d.History[i+1:]...)
			return r, true
		}
	}
	return model.DayRecord{}, false
}

// RefreshFreeze makes a spent freeze available again once the week it was
// used in is over. It reports whether data changed.
func RefreshFreeze(data model.StreakData, today model.Date) (model.StreakData, bool) {
	if data.StreakFreezeAvailable || data.StreakFreezeUsedDate.IsZero() {
		return data, false
	}
	if model.SameWeek(data.StreakFreezeUsedDate, today) {
		return data, false
	}
	data.StreakFreezeAvailable = true
	return data, true
}

// Recount counts the consecutive completed days ending at end, walking
// backward through history. Paused days bridge the walk without counting.
// exhausted is true when the walk ran past the oldest record, in which case
// the count is only a lower bound.
func Recount(history []model.DayRecord, end model.Date) (count int, exhausted bool) {
	if end.IsZero() || len(history) == 0 {
		return 0, len(history) == 0 && !end.IsZero()
	}
	byDate := make(map[model.Date]model.DayStatus, len(history))
	oldest := history[0].Date
	for _, r := range history {
		byDate[r.Date] = r.Status
		if r.Date < oldest {
			oldest = r.Date
		}
	}

	for d := end; ; d = d.AddDays(-1) {
		if d < oldest {
			return count, true
		}
		switch byDate[d] {
		case model.DayCompleted:
			count++
		case model.DayPaused:
		default:
			return count, false
		}
	}
}

// lastCompletedBefore returns the latest completed date earlier than day.
func lastCompletedBefore(history []model.DayRecord, day model.Date) model.Date {
	var last model.Date
	for _, r := range history {
		if r.Status == model.DayCompleted && r.Date < day && r.Date > last {
			last = r.Date
		}
	}
	return last
}

// ResetDay undoes today's completion: today's record is removed, a freeze
// spent today is refunded along with the paused day it covered, and the
// streak is recounted back from the previous completed day. A longest streak
// set today is rolled back too.
func ResetDay(data model.StreakData, today model.Date) model.StreakData {
	next := clone(data)

	if next.StreakFreezeUsedDate == today {
		if r, ok := next.Record(today.AddDays(-1)); ok && r.Status == model.DayPaused {
			remove(&next, r.Date)
		}
		next.StreakFreezeAvailable = true
		next.StreakFreezeUsedDate = ""
	}

	rec, ok := remove(&next, today)
	if !ok || rec.Status != model.DayCompleted {
		return next
	}

	next.LastCompletedDate = lastCompletedBefore(next.History, today)
	count, exhausted := Recount(next.History, next.LastCompletedDate)
	if exhausted && data.CurrentStreak-1 > count {
		count = data.CurrentStreak - 1
	}
	next.CurrentStreak = count

	// Today may have raised the record. The previous record is then one less,
	// unless an equal run is still visible in history.
	if data.LongestStreak == data.CurrentStreak {
		next.LongestStreak = max(count, data.LongestStreak-1, longestRun(next.History))
	}
	return next
}

// longestRun returns the longest streak ending on any completed day of history.
func longestRun(history []model.DayRecord) int {
	best := 0
	for _, r := range history {
		if r.Status != model.DayCompleted {
			continue
		}
		n, _ := Recount(history, r.Date)
		best = max(best, n)
	}
	return best
}
