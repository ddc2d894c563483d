package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	"github.com/rcliao/vocab-keeper/internal/model"
)

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestOpenMigratesLegacyOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	opts := Options{
		Mode:       ModeAuto,
		SQLitePath: filepath.Join(dir, "vocab.db"),
		KVPath:     filepath.Join(dir, "legacy.kv"),
	}

	legacy, err := NewKVStore(opts.KVPath)
	if err != nil {
		t.Fatalf("create legacy: %v", err)
	}
	river, _ := legacy.AddCustomWord(ctx, model.WordFields{English: "river", Mongolian: "гол"})
	legacy.SetConfidence(ctx, river.ID, model.ConfidenceMastered)
	legacy.SaveStreak(ctx, model.StreakData{CurrentStreak: 4, LongestStreak: 9, StreakFreezeAvailable: true})
	legacy.Close()

	b, err := Open(ctx, opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if b.Kind() != KindSQLite {
		t.Fatalf("expected sqlite backend, got %s", b.Kind())
	}
	words, _ := b.CustomWords(ctx)
	if len(words) != 1 || words[0].ID != river.ID {
		t.Fatalf("legacy words not migrated: %+v", words)
	}
	streak, _ := b.Streak(ctx)
	if streak.LongestStreak != 9 {
		t.Errorf("legacy streak not migrated: %+v", streak)
	}
	b.Close()

	// Data written to the flat store after migration is never copied again.
	legacy, _ = NewKVStore(opts.KVPath)
	legacy.AddCustomWord(ctx, model.WordFields{English: "lake", Mongolian: "нуур"})
	legacy.Close()

	b, err = Open(ctx, opts)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	words, _ = b.CustomWords(ctx)
	if len(words) != 1 {
		t.Errorf("migration ran twice: %+v", words)
	}
}

func TestOpenWithoutLegacySetsFlag(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := Open(ctx, Options{SQLitePath: filepath.Join(dir, "vocab.db"), KVPath: filepath.Join(dir, "none.kv")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()

	done, err := b.(*SQLiteStore).Migrated(ctx)
	if err != nil || !done {
		t.Errorf("expected migration flag set, got %v, %v", done, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "none.kv")); !os.IsNotExist(err) {
		t.Error("opening sqlite must not create the legacy store")
	}
}

func TestOpenFallsBackToKV(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("not a dir"), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := Open(ctx, Options{
		Mode:       ModeAuto,
		SQLitePath: filepath.Join(blocker, "vocab.db"),
		KVPath:     filepath.Join(dir, "fallback.kv"),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()
	if b.Kind() != KindKV {
		t.Errorf("expected kv fallback, got %s", b.Kind())
	}

	if _, err := Open(ctx, Options{Mode: ModeSQLite, SQLitePath: filepath.Join(blocker, "vocab.db")}); err == nil {
		t.Error("forced sqlite mode must not fall back")
	}
	if _, err := Open(ctx, Options{Mode: "mongo"}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestClientDegradesOnCorruptRecords(t *testing.T) {
	ctx := context.Background()

	kv := newTestKV(t)
	kv.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(kvBucket)
		b.Put([]byte(keyConfidence), []byte("{not json"))
		b.Put([]byte(keyStreak), []byte("[]"))
		return b.Put([]byte(keyDailyProgress), []byte("42"))
	})
	c := NewClient(kv)
	if got := c.Confidences(ctx); len(got) != 0 {
		t.Errorf("expected empty confidences, got %v", got)
	}
	if got := c.Streak(ctx); !got.StreakFreezeAvailable || got.CurrentStreak != 0 {
		t.Errorf("expected default streak, got %+v", got)
	}
	if got := c.DailyProgress(ctx); got != nil {
		t.Errorf("expected nil progress, got %+v", got)
	}
	// A write after a corrupt read replaces the bad record.
	if err := kv.SaveStreak(ctx, model.StreakData{CurrentStreak: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := c.Streak(ctx); got.CurrentStreak != 1 {
		t.Errorf("expected repaired streak, got %+v", got)
	}

	sq := newTestSQLite(t)
	sq.SaveDailyProgress(ctx, model.NewDailyProgress("2026-10-17"))
	sq.db.Exec(`UPDATE daily_progress SET en_to_mn_word_ids = 'oops'`)
	if got := NewClient(sq).DailyProgress(ctx); got != nil {
		t.Errorf("expected nil progress for corrupt row, got %+v", got)
	}
}

func TestClientReportsWriteFailures(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)
	c := NewClient(kv)
	kv.Close()

	// Reads fall back to defaults; writes report the failure.
	if got := c.Streak(ctx); !got.StreakFreezeAvailable {
		t.Errorf("expected default streak, got %+v", got)
	}
	if got := c.CustomWords(ctx); len(got) != 0 {
		t.Errorf("expected no words, got %v", got)
	}
	if err := c.SetConfidence(ctx, 1, model.ConfidenceMastered); err == nil {
		t.Error("expected write error from a closed store")
	}
	if _, err := c.AddCustomWord(ctx, model.WordFields{English: "river", Mongolian: "гол"}); err == nil {
		t.Error("expected add error from a closed store")
	}
}

func TestClientStats(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	c := NewClient(s)

	c.AddCustomWord(ctx, model.WordFields{English: "river", Mongolian: "гол"})
	c.SetConfidence(ctx, 1000, model.ConfidenceMastered)
	c.SetConfidence(ctx, 1, model.ConfidenceLearning)
	c.SetPackStatus(ctx, model.PackStatus{PackID: "travel", Version: 1, Status: model.PackAccepted})

	st := c.Stats(ctx, "")
	if st.Backend != KindSQLite || st.CustomWords != 1 || st.AcceptedPacks != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
	if st.Confidence[model.ConfidenceMastered] != 1 || st.Confidence[model.ConfidenceLearning] != 1 {
		t.Errorf("unexpected confidence stats: %v", st.Confidence)
	}
}
