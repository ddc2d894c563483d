package model

// HistoryLimit caps StreakData.History.
const HistoryLimit = 30

// DayStatus is the streak state of a single day.
type DayStatus string

const (
	DayCompleted DayStatus = "completed"
	DayPaused    DayStatus = "paused" // missed, covered by a freeze
	DayMissed    DayStatus = "missed"
	DayPending   DayStatus = "pending"
	DayFuture    DayStatus = "future"
)

// DayRecord is one entry of the streak history.
type DayRecord struct {
	Date           Date      `json:"date" db:"date"`
	Status         DayStatus `json:"status" db:"status"`
	WordsCompleted int       `json:"words_completed" db:"words_completed"`
}

// StreakData is the persisted streak state.
type StreakData struct {
	CurrentStreak         int         `json:"current_streak"`
	LongestStreak         int         `json:"longest_streak"`
	LastCompletedDate     Date        `json:"last_completed_date,omitempty"`
	StreakFreezeAvailable bool        `json:"streak_freeze_available"`
	StreakFreezeUsedDate  Date        `json:"streak_freeze_used_date,omitempty"`
	History               []DayRecord `json:"history"`
}

// NewStreakData returns the state of a user who has never practiced.
func NewStreakData() StreakData {
	return StreakData{StreakFreezeAvailable: true, History: []DayRecord{}}
}

// Record returns the history entry for d, if any.
func (s StreakData) Record(d Date) (DayRecord, bool) {
	for _, r := range s.History {
		if r.Date == d {
			return r, true
		}
	}
	return DayRecord{}, false
}
