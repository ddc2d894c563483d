package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/rcliao/vocab-keeper/internal/model"
)

var kvBucket = []byte("vocab")

// Keys of the flat store. Each holds one JSON document.
const (
	keyStreak         = "@vocab/streak"
	keyConfidence     = "@vocab/word_confidence"
	keyUserDictionary = "@vocab/user_dictionary"
	keyUserDictSeq    = "@vocab/user_dictionary_seq"
	keyBundleWords    = "@vocab/bundle_words"
	keyOverrides      = "@vocab/word_overrides"
	keyDeletedIDs     = "@vocab/deleted_word_ids"
	keyAcceptedPacks  = "@vocab/accepted_packs"
	keyDismissedPacks = "@vocab/dismissed_packs"
	keyBundles        = "@vocab/bundle_status"
	keyDailyProgress  = "@vocab/daily_progress"
	keyExtraSession   = "@vocab/extra_session"
)

type acceptedPack struct {
	PackID  string `json:"packId"`
	Version int    `json:"version"`
}

type dismissedPack struct {
	PackID      string    `json:"packId"`
	Version     int       `json:"version"`
	DismissedAt time.Time `json:"dismissedAt"`
}

// KVStore implements Backend on a single bbolt bucket of JSON documents.
// It is the fallback when SQLite is unavailable and the source of the
// one-time legacy migration.
type KVStore struct {
	db  *bolt.DB
	now func() time.Time
}

// NewKVStore opens or creates the flat store at path.
func NewKVStore(path string) (*KVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create kv dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open kv: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(kvBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &KVStore{db: db, now: time.Now}, nil
}

func (s *KVStore) Kind() string { return KindKV }

func (s *KVStore) Close() error { return s.db.Close() }

// kvTx is a bucket scoped to one bolt transaction.
type kvTx struct {
	b *bolt.Bucket
}

// get decodes key into v. It returns false when the key is absent.
func (t kvTx) get(key string, v any) (bool, error) {
	raw := t.b.Get([]byte(key))
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (t kvTx) put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return t.b.Put([]byte(key), raw)
}

func (t kvTx) del(key string) error {
	return t.b.Delete([]byte(key))
}

func (s *KVStore) view(fn func(t kvTx) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(kvTx{b: tx.Bucket(kvBucket)})
	})
}

func (s *KVStore) update(fn func(t kvTx) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(kvTx{b: tx.Bucket(kvBucket)})
	})
}

// --- streak ---

func (s *KVStore) Streak(ctx context.Context) (model.StreakData, error) {
	data := model.NewStreakData()
	err := s.view(func(t kvTx) error {
		_, err := t.get(keyStreak, &data)
		return err
	})
	if err != nil {
		return model.NewStreakData(), err
	}
	if data.History == nil {
		data.History = []model.DayRecord{}
	}
	return data, nil
}

func (s *KVStore) SaveStreak(ctx context.Context, data model.StreakData) error {
	return s.update(func(t kvTx) error { return t.put(keyStreak, data) })
}

// --- confidence ---

func (t kvTx) confidences() (map[int]model.Confidence, error) {
	out := map[int]model.Confidence{}
	if _, err := t.get(keyConfidence, &out); err != nil {
		return map[int]model.Confidence{}, err
	}
	return out, nil
}

func (s *KVStore) Confidences(ctx context.Context) (map[int]model.Confidence, error) {
	var out map[int]model.Confidence
	err := s.view(func(t kvTx) error {
		var err error
		out, err = t.confidences()
		return err
	})
	return out, err
}

func (s *KVStore) SetConfidence(ctx context.Context, wordID int, c model.Confidence) error {
	return s.update(func(t kvTx) error {
		m, err := t.confidences()
		if err != nil {
			return err
		}
		m[wordID] = c
		return t.put(keyConfidence, m)
	})
}

func (s *KVStore) DeleteConfidence(ctx context.Context, wordID int) error {
	return s.update(func(t kvTx) error {
		_, err := t.deleteConfidence(wordID)
		return err
	})
}

func (t kvTx) deleteConfidence(wordID int) (bool, error) {
	m, err := t.confidences()
	if err != nil {
		return false, err
	}
	if _, ok := m[wordID]; !ok {
		return false, nil
	}
	delete(m, wordID)
	return true, t.put(keyConfidence, m)
}

// --- word lists ---

func (t kvTx) words(key string) ([]model.Word, error) {
	var out []model.Word
	if _, err := t.get(key, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *KVStore) CustomWords(ctx context.Context) ([]model.Word, error) {
	var out []model.Word
	err := s.view(func(t kvTx) error {
		var err error
		out, err = t.words(keyUserDictionary)
		return err
	})
	return out, err
}

// seq returns the highest custom id ever handed out. Like SQLite
// AUTOINCREMENT it only grows, so ids of deleted words are never reused.
func (t kvTx) seq(words []model.Word) (int, error) {
	last := model.CustomIDShift
	if _, err := t.get(keyUserDictSeq, &last); err != nil {
		return 0, err
	}
	for _, w := range words {
		last = max(last, w.ID)
	}
	return last, nil
}

func (t kvTx) addCustomWord(f model.WordFields) (model.Word, error) {
	words, err := t.words(keyUserDictionary)
	if err != nil {
		return model.Word{}, err
	}
	last, err := t.seq(words)
	if err != nil {
		return model.Word{}, err
	}
	next := last + 1
	if next > model.CustomIDMax {
		return model.Word{}, ErrCustomIDsExhausted
	}
	w := f.WithID(next)
	if err := t.put(keyUserDictSeq, next); err != nil {
		return model.Word{}, err
	}
	return w, t.put(keyUserDictionary, append(words, w))
}

func (t kvTx) putCustomWord(w model.Word) error {
	words, err := t.words(keyUserDictionary)
	if err != nil {
		return err
	}
	last, err := t.seq(words)
	if err != nil {
		return err
	}
	if w.ID > last {
		if err := t.put(keyUserDictSeq, w.ID); err != nil {
			return err
		}
	}
	return t.putWord(keyUserDictionary, w)
}

func (s *KVStore) AddCustomWord(ctx context.Context, f model.WordFields) (model.Word, error) {
	var w model.Word
	err := s.update(func(t kvTx) error {
		var err error
		w, err = t.addCustomWord(f)
		return err
	})
	return w, err
}

func (t kvTx) putWord(key string, w model.Word) error {
	words, err := t.words(key)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(words, func(x model.Word) bool { return x.ID == w.ID })
	if i >= 0 {
		words[i] = w
	} else {
		words = append(words, w)
		sort.Slice(words, func(a, b int) bool { return words[a].ID < words[b].ID })
	}
	return t.put(key, words)
}

func (s *KVStore) PutCustomWord(ctx context.Context, w model.Word) error {
	if !model.IsCustomID(w.ID) {
		return fmt.Errorf("word id %d is outside the custom range", w.ID)
	}
	return s.update(func(t kvTx) error { return t.putCustomWord(w) })
}

func (s *KVStore) DeleteCustomWord(ctx context.Context, id int) error {
	return s.update(func(t kvTx) error {
		words, err := t.words(keyUserDictionary)
		if err != nil {
			return err
		}
		words = slices.DeleteFunc(words, func(w model.Word) bool { return w.ID == id })
		return t.put(keyUserDictionary, words)
	})
}

func (s *KVStore) BundleWords(ctx context.Context) ([]model.Word, error) {
	var out []model.Word
	err := s.view(func(t kvTx) error {
		var err error
		out, err = t.words(keyBundleWords)
		return err
	})
	return out, err
}

func (s *KVStore) PutBundleWord(ctx context.Context, w model.Word) error {
	if model.ClassifyID(w.ID) != model.RangeBundle {
		return fmt.Errorf("word id %d is outside the bundle range", w.ID)
	}
	return s.update(func(t kvTx) error { return t.putWord(keyBundleWords, w) })
}

// --- overrides ---

func (t kvTx) overrides() (map[int]model.Word, error) {
	out := map[int]model.Word{}
	if _, err := t.get(keyOverrides, &out); err != nil {
		return map[int]model.Word{}, err
	}
	return out, nil
}

func (s *KVStore) Overrides(ctx context.Context) (map[int]model.Word, error) {
	var out map[int]model.Word
	err := s.view(func(t kvTx) error {
		var err error
		out, err = t.overrides()
		return err
	})
	return out, err
}

func (s *KVStore) SetOverride(ctx context.Context, w model.Word) error {
	return s.update(func(t kvTx) error {
		m, err := t.overrides()
		if err != nil {
			return err
		}
		m[w.ID] = w
		return t.put(keyOverrides, m)
	})
}

func (t kvTx) deleteOverride(wordID int) (bool, error) {
	m, err := t.overrides()
	if err != nil {
		return false, err
	}
	if _, ok := m[wordID]; !ok {
		return false, nil
	}
	delete(m, wordID)
	return true, t.put(keyOverrides, m)
}

func (s *KVStore) DeleteOverride(ctx context.Context, wordID int) error {
	return s.update(func(t kvTx) error {
		_, err := t.deleteOverride(wordID)
		return err
	})
}

// --- deleted ids ---

func (t kvTx) deletedIDs() ([]int, error) {
	var ids []int
	if _, err := t.get(keyDeletedIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *KVStore) DeletedIDs(ctx context.Context) (map[int]bool, error) {
	out := map[int]bool{}
	err := s.view(func(t kvTx) error {
		ids, err := t.deletedIDs()
		for _, id := range ids {
			out[id] = true
		}
		return err
	})
	if err != nil {
		return map[int]bool{}, err
	}
	return out, nil
}

func (s *KVStore) AddDeletedID(ctx context.Context, wordID int) error {
	return s.update(func(t kvTx) error {
		ids, err := t.deletedIDs()
		if err != nil {
			return err
		}
		if slices.Contains(ids, wordID) {
			return nil
		}
		return t.put(keyDeletedIDs, append(ids, wordID))
	})
}

func (t kvTx) removeDeletedID(wordID int) (bool, error) {
	ids, err := t.deletedIDs()
	if err != nil {
		return false, err
	}
	if !slices.Contains(ids, wordID) {
		return false, nil
	}
	ids = slices.DeleteFunc(ids, func(id int) bool { return id == wordID })
	return true, t.put(keyDeletedIDs, ids)
}

func (s *KVStore) RemoveDeletedID(ctx context.Context, wordID int) error {
	return s.update(func(t kvTx) error {
		_, err := t.removeDeletedID(wordID)
		return err
	})
}

// --- pack and bundle status ---

func (t kvTx) packStatuses() ([]model.PackStatus, error) {
	var accepted []acceptedPack
	var dismissed []dismissedPack
	if _, err := t.get(keyAcceptedPacks, &accepted); err != nil {
		return nil, err
	}
	if _, err := t.get(keyDismissedPacks, &dismissed); err != nil {
		return nil, err
	}
	out := make([]model.PackStatus, 0, len(accepted)+len(dismissed))
	for _, a := range accepted {
		out = append(out, model.PackStatus{PackID: a.PackID, Version: a.Version, Status: model.PackAccepted})
	}
	for _, d := range dismissed {
		out = append(out, model.PackStatus{PackID: d.PackID, Version: d.Version, Status: model.PackDismissed, UpdatedAt: d.DismissedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PackID < out[j].PackID })
	return out, nil
}

func (s *KVStore) PackStatuses(ctx context.Context) ([]model.PackStatus, error) {
	var out []model.PackStatus
	err := s.view(func(t kvTx) error {
		var err error
		out, err = t.packStatuses()
		return err
	})
	return out, err
}

// setPackStatus keeps a pack in exactly one of the accepted and dismissed lists.
func (t kvTx) setPackStatus(p model.PackStatus, now time.Time) error {
	var accepted []acceptedPack
	var dismissed []dismissedPack
	if _, err := t.get(keyAcceptedPacks, &accepted); err != nil {
		return err
	}
	if _, err := t.get(keyDismissedPacks, &dismissed); err != nil {
		return err
	}
	accepted = slices.DeleteFunc(accepted, func(a acceptedPack) bool { return a.PackID == p.PackID })
	dismissed = slices.DeleteFunc(dismissed, func(d dismissedPack) bool { return d.PackID == p.PackID })

	switch p.Status {
	case model.PackAccepted:
		accepted = append(accepted, acceptedPack{PackID: p.PackID, Version: p.Version})
	case model.PackDismissed:
		at := p.UpdatedAt
		if at.IsZero() {
			at = now
		}
		dismissed = append(dismissed, dismissedPack{PackID: p.PackID, Version: p.Version, DismissedAt: at})
	default:
		return fmt.Errorf("invalid pack status %q", p.Status)
	}

	if err := t.put(keyAcceptedPacks, accepted); err != nil {
		return err
	}
	return t.put(keyDismissedPacks, dismissed)
}

func (s *KVStore) SetPackStatus(ctx context.Context, p model.PackStatus) error {
	return s.update(func(t kvTx) error { return t.setPackStatus(p, s.now()) })
}

func (t kvTx) bundleStatuses() ([]model.BundleStatus, error) {
	var out []model.BundleStatus
	if _, err := t.get(keyBundles, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *KVStore) BundleStatuses(ctx context.Context) ([]model.BundleStatus, error) {
	var out []model.BundleStatus
	err := s.view(func(t kvTx) error {
		var err error
		out, err = t.bundleStatuses()
		return err
	})
	return out, err
}

func (t kvTx) setBundleStatus(b model.BundleStatus, now time.Time) error {
	list, err := t.bundleStatuses()
	if err != nil {
		return err
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}
	list = slices.DeleteFunc(list, func(x model.BundleStatus) bool { return x.BundleID == b.BundleID })
	list = append(list, b)
	sort.Slice(list, func(i, j int) bool { return list[i].BundleID < list[j].BundleID })
	return t.put(keyBundles, list)
}

func (s *KVStore) SetBundleStatus(ctx context.Context, b model.BundleStatus) error {
	return s.update(func(t kvTx) error { return t.setBundleStatus(b, s.now()) })
}

// --- daily progress and extra session ---

func (s *KVStore) DailyProgress(ctx context.Context) (*model.DailyProgress, error) {
	var p model.DailyProgress
	var found bool
	err := s.view(func(t kvTx) error {
		var err error
		found, err = t.get(keyDailyProgress, &p)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (s *KVStore) SaveDailyProgress(ctx context.Context, p model.DailyProgress) error {
	return s.update(func(t kvTx) error { return t.put(keyDailyProgress, p) })
}

func (s *KVStore) ExtraSession(ctx context.Context) (*model.ExtraWordsSession, error) {
	var sess model.ExtraWordsSession
	var found bool
	err := s.view(func(t kvTx) error {
		var err error
		found, err = t.get(keyExtraSession, &sess)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &sess, nil
}

func (s *KVStore) SaveExtraSession(ctx context.Context, sess model.ExtraWordsSession) error {
	return s.update(func(t kvTx) error { return t.put(keyExtraSession, sess) })
}

func (s *KVStore) ClearExtraSession(ctx context.Context) error {
	return s.update(func(t kvTx) error { return t.del(keyExtraSession) })
}

// --- pack upgrade ---

func (s *KVStore) ApplyPackUpgrade(ctx context.Context, u PackUpgrade) (PackUpgradeResult, error) {
	res := PackUpgradeResult{PromotedIDs: map[int]int{}}
	err := s.update(func(t kvTx) error {
		for _, p := range u.Promotions {
			w, err := t.addCustomWord(p.Fields)
			if err != nil {
				return fmt.Errorf("promote override %d: %w", p.OverrideID, err)
			}
			res.AddedCustom++
			res.PromotedIDs[p.OverrideID] = w.ID

			if p.Confidence != "" {
				m, err := t.confidences()
				if err != nil {
					return err
				}
				m[w.ID] = p.Confidence
				delete(m, p.OverrideID)
				if err := t.put(keyConfidence, m); err != nil {
					return err
				}
			}

			removed, err := t.deleteOverride(p.OverrideID)
			if err != nil {
				return err
			}
			if removed {
				res.RemovedOverrides++
			}
		}

		for _, id := range u.DropOverrides {
			removed, err := t.deleteOverride(id)
			if err != nil {
				return err
			}
			if removed {
				res.RemovedOverrides++
			}
		}
		for _, id := range u.RestoreDeleted {
			restored, err := t.removeDeletedID(id)
			if err != nil {
				return err
			}
			if restored {
				res.RestoredDeletes++
			}
		}
		for _, id := range u.ClearConfidences {
			cleared, err := t.deleteConfidence(id)
			if err != nil {
				return err
			}
			if cleared {
				res.ResetConfidences++
			}
		}
		return t.setPackStatus(u.Accept, s.now())
	})
	if err != nil {
		return PackUpgradeResult{}, err
	}
	return res, nil
}

// --- snapshot restore ---

func (s *KVStore) Restore(ctx context.Context, snap Snapshot) error {
	now := s.now()
	return s.update(func(t kvTx) error {
		if err := t.put(keyStreak, snap.Streak); err != nil {
			return err
		}

		conf, err := t.confidences()
		if err != nil {
			return err
		}
		for id, c := range snap.Confidences {
			if c.Valid() {
				conf[id] = c
			}
		}
		if err := t.put(keyConfidence, conf); err != nil {
			return err
		}

		for _, w := range snap.CustomWords {
			if !model.IsCustomID(w.ID) {
				return fmt.Errorf("restore custom word: id %d is outside the custom range", w.ID)
			}
			if err := t.putCustomWord(w); err != nil {
				return err
			}
		}
		for _, w := range snap.BundleWords {
			if model.ClassifyID(w.ID) != model.RangeBundle {
				continue
			}
			if err := t.putWord(keyBundleWords, w); err != nil {
				return err
			}
		}

		overrides, err := t.overrides()
		if err != nil {
			return err
		}
		for _, w := range snap.Overrides {
			overrides[w.ID] = w
		}
		if err := t.put(keyOverrides, overrides); err != nil {
			return err
		}

		ids, err := t.deletedIDs()
		if err != nil {
			return err
		}
		for _, id := range snap.DeletedIDs {
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
		if err := t.put(keyDeletedIDs, ids); err != nil {
			return err
		}

		for _, p := range snap.Packs {
			if err := t.setPackStatus(p, now); err != nil {
				return err
			}
		}
		for _, b := range snap.Bundles {
			if err := t.setBundleStatus(b, now); err != nil {
				return err
			}
		}
		if snap.DailyProgress != nil {
			if err := t.put(keyDailyProgress, snap.DailyProgress); err != nil {
				return err
			}
		}
		if snap.ExtraSession != nil {
			if err := t.put(keyExtraSession, snap.ExtraSession); err != nil {
				return err
			}
		}
		return nil
	})
}
