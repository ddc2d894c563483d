// Package progress tracks today's practice: the daily word set, an optional
// extra session, and per-direction completion. Every mutation is written to
// storage before it returns.
package progress

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/vocab-keeper/internal/logger"
	"github.com/rcliao/vocab-keeper/internal/model"
	"github.com/rcliao/vocab-keeper/internal/store"
	"github.com/rcliao/vocab-keeper/internal/streak"
)

var (
	ErrInvalidMode    = errors.New("invalid practice mode")
	ErrNoExtraSession = errors.New("no extra session today")
)

// WordSource provides the resolved dictionary.
type WordSource interface {
	Resolve(ctx context.Context) []model.Word
}

// ConfidenceSource provides per-word mastery labels.
type ConfidenceSource interface {
	GetAll(ctx context.Context) map[int]model.Confidence
}

// StreakChecker receives the day's completed word count.
type StreakChecker interface {
	CheckAndUpdate(ctx context.Context, wordsCompletedToday int) (streak.Result, error)
}

// Options configures a Tracker.
type Options struct {
	DailyWords int
	ExtraWords int
	Now        func() time.Time
}

// Tracker owns today's DailyProgress and ExtraWordsSession.
type Tracker struct {
	store  *store.Client
	words  WordSource
	conf   ConfidenceSource
	streak StreakChecker

	dailyWords int
	extraWords int
	now        func() time.Time
	entropy    *rand.Rand
}

// New creates a progress tracker.
func New(c *store.Client, words WordSource, conf ConfidenceSource, sc StreakChecker, opts Options) *Tracker {
	if opts.DailyWords <= 0 {
		opts.DailyWords = streak.QualifyingWords
	}
	if opts.ExtraWords <= 0 {
		opts.ExtraWords = streak.QualifyingWords
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Tracker{
		store:      c,
		words:      words,
		conf:       conf,
		streak:     sc,
		dailyWords: opts.DailyWords,
		extraWords: opts.ExtraWords,
		now:        opts.Now,
		entropy:    rand.New(rand.NewSource(opts.Now().UnixNano())),
	}
}

// Today returns the current local calendar day.
func (t *Tracker) Today() model.Date {
	return model.DateOf(t.now())
}

func (t *Tracker) newSessionID() string {
	return ulid.MustNew(ulid.Timestamp(t.now()), t.entropy).String()
}

// GetDailyProgress returns today's progress. A record from another day is
// stale and replaced by an empty one for today.
func (t *Tracker) GetDailyProgress(ctx context.Context) model.DailyProgress {
	today := t.Today()
	p := t.store.DailyProgress(ctx)
	if p == nil || p.Date != today {
		return model.NewDailyProgress(today)
	}
	return *p
}

func (t *Tracker) SaveDailyProgress(ctx context.Context, p model.DailyProgress) error {
	return t.store.SaveDailyProgress(ctx, p)
}

// GetExtraSession returns today's extra session, or nil if there is none.
func (t *Tracker) GetExtraSession(ctx context.Context) *model.ExtraWordsSession {
	s := t.store.ExtraSession(ctx)
	if s == nil || s.Date != t.Today() {
		return nil
	}
	return s
}

func (t *Tracker) SaveExtraSession(ctx context.Context, s model.ExtraWordsSession) error {
	return t.store.SaveExtraSession(ctx, s)
}

func (t *Tracker) ClearExtraSession(ctx context.Context) error {
	return t.store.ClearExtraSession(ctx)
}

// StartExtraSession replaces any extra session with a fresh word set drawn
// from words outside today's daily set, unmastered words first.
func (t *Tracker) StartExtraSession(ctx context.Context) (model.ExtraWordsSession, error) {
	today := t.Today()
	id := t.newSessionID()
	words := t.pickExtra(ctx, today, id)

	sess := model.ExtraWordsSession{
		DailyProgress: model.NewDailyProgress(today),
		SessionID:     id,
		WordIDs:       wordIDs(words),
	}
	if err := t.store.SaveExtraSession(ctx, sess); err != nil {
		return sess, err
	}
	logger.Debug("extra session started", "session", id, "words", len(sess.WordIDs))
	return sess, nil
}

// MarkCardCompleted records a practiced word. Repeating a call changes nothing.
func (t *Tracker) MarkCardCompleted(ctx context.Context, mode model.Mode, wordID int, isExtra bool) error {
	if !mode.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidMode, mode)
	}
	if isExtra {
		s := t.GetExtraSession(ctx)
		if s == nil {
			return ErrNoExtraSession
		}
		if !s.AddWordID(mode, wordID) {
			return nil
		}
		return t.store.SaveExtraSession(ctx, *s)
	}

	p := t.GetDailyProgress(ctx)
	if !p.AddWordID(mode, wordID) {
		return nil
	}
	return t.store.SaveDailyProgress(ctx, p)
}

// MarkModeCompleted marks a direction finished and feeds today's total into
// the streak once it qualifies. The result is nil below the threshold.
func (t *Tracker) MarkModeCompleted(ctx context.Context, mode model.Mode, isExtra bool) (*streak.Result, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidMode, mode)
	}

	if isExtra {
		s := t.GetExtraSession(ctx)
		if s == nil {
			return nil, ErrNoExtraSession
		}
		s.SetCompleted(mode)
		if err := t.store.SaveExtraSession(ctx, *s); err != nil {
			return nil, err
		}
	} else {
		p := t.GetDailyProgress(ctx)
		p.SetCompleted(mode)
		if err := t.store.SaveDailyProgress(ctx, p); err != nil {
			return nil, err
		}
	}

	total := t.CompletedToday(ctx)
	if total < streak.QualifyingWords {
		return nil, nil
	}
	res, err := t.streak.CheckAndUpdate(ctx, total)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CompletedToday counts today's practiced words. Within a session a word
// practiced in both directions counts once.
func (t *Tracker) CompletedToday(ctx context.Context) int {
	p := t.GetDailyProgress(ctx)
	total := p.MaxModeCount()
	if s := t.GetExtraSession(ctx); s != nil {
		total += s.MaxModeCount()
	}
	return total
}

// Summary is a read-only view of today's practice.
type Summary struct {
	Date      model.Date               `json:"date"`
	Daily     model.DailyProgress      `json:"daily"`
	Extra     *model.ExtraWordsSession `json:"extra,omitempty"`
	Completed int                      `json:"completed"`
}

// Summary returns today's progress.
func (t *Tracker) Summary(ctx context.Context) Summary {
	return Summary{
		Date:      t.Today(),
		Daily:     t.GetDailyProgress(ctx),
		Extra:     t.GetExtraSession(ctx),
		Completed: t.CompletedToday(ctx),
	}
}
