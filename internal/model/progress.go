package model

import "slices"

// Mode is a practice direction.
type Mode string

const (
	ModeEnToMn Mode = "en_to_mn"
	ModeMnToEn Mode = "mn_to_en"
)

// Modes lists every practice direction.
var Modes = []Mode{ModeEnToMn, ModeMnToEn}

// Valid reports whether m is a known practice direction.
func (m Mode) Valid() bool { return m == ModeEnToMn || m == ModeMnToEn }

// DailyProgress is today's completion state for both practice directions.
// A record whose Date is not today is stale.
type DailyProgress struct {
	Date            Date  `json:"date"`
	EnToMnCompleted bool  `json:"en_to_mn_completed"`
	MnToEnCompleted bool  `json:"mn_to_en_completed"`
	EnToMnWordIDs   []int `json:"en_to_mn_word_ids"`
	MnToEnWordIDs   []int `json:"mn_to_en_word_ids"`
}

// NewDailyProgress returns empty progress for date d.
func NewDailyProgress(d Date) DailyProgress {
	return DailyProgress{Date: d, EnToMnWordIDs: []int{}, MnToEnWordIDs: []int{}}
}

// Completed reports whether mode has been finished.
func (p *DailyProgress) Completed(mode Mode) bool {
	if mode == ModeMnToEn {
		return p.MnToEnCompleted
	}
	return p.EnToMnCompleted
}

// SetCompleted marks mode as finished.
func (p *DailyProgress) SetCompleted(mode Mode) {
	if mode == ModeMnToEn {
		p.MnToEnCompleted = true
		return
	}
	p.EnToMnCompleted = true
}

// WordIDs returns the ids completed in mode.
func (p *DailyProgress) WordIDs(mode Mode) []int {
	if mode == ModeMnToEn {
		return p.MnToEnWordIDs
	}
	return p.EnToMnWordIDs
}

// AddWordID records id as completed in mode. It returns false when the id
// was already present.
func (p *DailyProgress) AddWordID(mode Mode, id int) bool {
	if slices.Contains(p.WordIDs(mode), id) {
		return false
	}
	if mode == ModeMnToEn {
		p.MnToEnWordIDs = append(p.MnToEnWordIDs, id)
	} else {
		p.EnToMnWordIDs = append(p.EnToMnWordIDs, id)
	}
	return true
}

// MaxModeCount is the larger of the two per-direction completion counts.
// A word practiced in both directions counts once.
func (p *DailyProgress) MaxModeCount() int {
	return max(len(p.EnToMnWordIDs), len(p.MnToEnWordIDs))
}

// ExtraWordsSession is an optional second practice set for the day.
type ExtraWordsSession struct {
	DailyProgress
	SessionID string `json:"session_id"`
	WordIDs   []int  `json:"word_ids"`
}
