package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rcliao/vocab-keeper/internal/config"
	"github.com/rcliao/vocab-keeper/internal/model"
	"github.com/rcliao/vocab-keeper/internal/packs"
	"github.com/rcliao/vocab-keeper/internal/store"
)

func newTestApp(t *testing.T, backend string) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(dir, "vocab.db")
	cfg.KVPath = filepath.Join(dir, "legacy.kv")
	cfg.Backend = backend

	a, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open app: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// TestPracticeDay walks through one day of use on each backend.
func TestPracticeDay(t *testing.T) {
	for _, backend := range []string{store.ModeSQLite, store.ModeKV} {
		t.Run(backend, func(t *testing.T) {
			a := newTestApp(t, backend)
			ctx := context.Background()

			if a.Store.Kind() != backend {
				t.Fatalf("expected %s backend, got %s", backend, a.Store.Kind())
			}
			base := len(a.Dictionary.Resolve(ctx))
			if base != len(a.Catalog.Base) {
				t.Fatalf("expected %d base words, got %d", len(a.Catalog.Base), base)
			}

			p, _ := a.Catalog.Pack("travel")
			if _, err := a.Packs.Upgrade(ctx, p.ID, 1, packs.ModeNewWords); err != nil {
				t.Fatalf("accept pack: %v", err)
			}
			v1, _ := p.Version(1)
			if got := len(a.Dictionary.Resolve(ctx)); got != base+len(v1.Words) {
				t.Fatalf("pack words not resolved: %d", got)
			}

			words := a.Progress.DailyWords(ctx)
			if len(words) != a.Config.DailyWords {
				t.Fatalf("expected %d daily words, got %d", a.Config.DailyWords, len(words))
			}
			for _, w := range words {
				if err := a.Progress.MarkCardCompleted(ctx, model.ModeEnToMn, w.ID, false); err != nil {
					t.Fatalf("mark card: %v", err)
				}
				a.Confidence.Update(ctx, w.ID, model.ConfidenceFamiliar)
			}
			res, err := a.Progress.MarkModeCompleted(ctx, model.ModeEnToMn, false)
			if err != nil || res == nil || res.NewStreak != 1 {
				t.Fatalf("expected streak 1, got %+v %v", res, err)
			}
			if n := len(a.Confidence.GetAll(ctx)); n != len(words) {
				t.Fatalf("expected %d confidence labels, got %d", len(words), n)
			}
		})
	}
}
