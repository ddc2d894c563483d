package progress

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sort"

	"github.com/rcliao/vocab-keeper/internal/model"
)

func seedOf(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return int64(h.Sum64())
}

// orderOffset gives each (mode, isExtra) pair its own fixed shuffle.
func orderOffset(mode model.Mode, isExtra bool) int64 {
	off := int64(1)
	if mode == model.ModeMnToEn {
		off = 2
	}
	if isExtra {
		off += 2
	}
	return off
}

func shuffled(words []model.Word, seed int64) []model.Word {
	out := append([]model.Word(nil), words...)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func byID(words []model.Word) []model.Word {
	out := append([]model.Word(nil), words...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func wordIDs(words []model.Word) []int {
	ids := make([]int, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}
	return ids
}

// pickDaily chooses the day's words. The same dictionary and date always
// yield the same set.
func pickDaily(all []model.Word, day model.Date, n int) []model.Word {
	out := shuffled(byID(all), seedOf(day.String()))
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// DailyWords returns today's word set.
func (t *Tracker) DailyWords(ctx context.Context) []model.Word {
	return t.DailyWordsFor(ctx, t.Today())
}

// DailyWordsFor returns the word set of day.
func (t *Tracker) DailyWordsFor(ctx context.Context, day model.Date) []model.Word {
	return pickDaily(t.words.Resolve(ctx), day, t.dailyWords)
}

func (t *Tracker) pickExtra(ctx context.Context, day model.Date, sessionID string) []model.Word {
	all := t.words.Resolve(ctx)
	daily := map[int]bool{}
	for _, w := range pickDaily(all, day, t.dailyWords) {
		daily[w.ID] = true
	}
	conf := t.conf.GetAll(ctx)

	var fresh, mastered []model.Word
	for _, w := range byID(all) {
		switch {
		case daily[w.ID]:
		case conf[w.ID] == model.ConfidenceMastered:
			mastered = append(mastered, w)
		default:
			fresh = append(fresh, w)
		}
	}

	seed := seedOf(sessionID)
	out := append(shuffled(fresh, seed), shuffled(mastered, seed+1)...)
	if len(out) > t.extraWords {
		out = out[:t.extraWords]
	}
	return out
}

// ExtraWords returns the words of today's extra session in stored order.
// Ids that no longer resolve are skipped.
func (t *Tracker) ExtraWords(ctx context.Context) []model.Word {
	s := t.GetExtraSession(ctx)
	if s == nil {
		return nil
	}
	index := map[int]model.Word{}
	for _, w := range t.words.Resolve(ctx) {
		index[w.ID] = w
	}
	var out []model.Word
	for _, id := range s.WordIDs {
		if w, ok := index[id]; ok {
			out = append(out, w)
		}
	}
	return out
}

// GetWordsForMode returns the session's words in a fixed order for mode.
// Each direction has its own order so positions cannot be memorized.
func (t *Tracker) GetWordsForMode(ctx context.Context, mode model.Mode, isExtra bool) []model.Word {
	if isExtra {
		s := t.GetExtraSession(ctx)
		if s == nil {
			return nil
		}
		return shuffled(t.ExtraWords(ctx), seedOf(s.SessionID)+orderOffset(mode, isExtra))
	}
	today := t.Today()
	return shuffled(t.DailyWordsFor(ctx, today), seedOf(today.String())+orderOffset(mode, isExtra))
}
