package packs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rcliao/vocab-keeper/internal/content"
	"github.com/rcliao/vocab-keeper/internal/model"
	"github.com/rcliao/vocab-keeper/internal/store"
)

const (
	wordX = 200001 // unchanged in v2
	wordY = 200002 // removed in v2
	wordZ = 200003 // changed in v2
	wordN = 200004 // added in v2
)

func testCatalog() *content.Catalog {
	return &content.Catalog{
		Packs: []content.Pack{{
			ID:    "travel",
			Title: "Travel",
			Versions: []content.PackVersion{
				{Version: 1, Words: []model.Word{
					{ID: wordX, English: "hotel", Mongolian: "зочид буудал", Category: "travel"},
					{ID: wordY, English: "ticket", Mongolian: "тасалбар", Category: "travel"},
					{ID: wordZ, English: "road", Mongolian: "зам", Category: "travel"},
				}},
				{Version: 2, Words: []model.Word{
					{ID: wordX, English: "hotel", Mongolian: "зочид буудал", Category: "travel"},
					{ID: wordZ, English: "road", Mongolian: "зам", Category: "roads"},
					{ID: wordN, English: "map", Mongolian: "газрын зураг", Category: "travel"},
				}},
			},
		}},
	}
}

func forEachEngine(t *testing.T, fn func(t *testing.T, e *Engine, c *store.Client)) {
	t.Helper()
	open := map[string]func(string) (store.Backend, error){
		store.KindSQLite: func(dir string) (store.Backend, error) { return store.NewSQLiteStore(filepath.Join(dir, "test.db")) },
		store.KindKV:     func(dir string) (store.Backend, error) { return store.NewKVStore(filepath.Join(dir, "test.kv")) },
	}
	for _, kind := range []string{store.KindSQLite, store.KindKV} {
		t.Run(kind, func(t *testing.T) {
			b, err := open[kind](t.TempDir())
			if err != nil {
				t.Fatalf("open %s: %v", kind, err)
			}
			c := store.NewClient(b)
			t.Cleanup(func() { c.Close() })
			fn(t, New(c, testCatalog()), c)
		})
	}
}

func TestDiffVersions(t *testing.T) {
	cat := testCatalog()
	p, _ := cat.Pack("travel")
	v1, _ := p.Version(1)
	v2, _ := p.Version(2)

	d := DiffVersions(v1, v2)
	if len(d.Removed) != 1 || d.Removed[0] != wordY {
		t.Errorf("removed = %v, want [%d]", d.Removed, wordY)
	}
	if len(d.Changed) != 1 || d.Changed[0] != wordZ {
		t.Errorf("changed = %v, want [%d]", d.Changed, wordZ)
	}
	if len(d.Added) != 1 || d.Added[0] != wordN {
		t.Errorf("added = %v, want [%d]", d.Added, wordN)
	}
}

func TestUpgradeResetRoundTrip(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e *Engine, c *store.Client) {
		ctx := context.Background()
		if err := e.Accept(ctx, "travel", 1); err != nil {
			t.Fatalf("accept: %v", err)
		}
		c.SetOverride(ctx, model.Word{ID: wordX, English: "inn", Mongolian: "буудал"})
		c.AddDeletedID(ctx, wordY)

		res, err := e.Upgrade(ctx, "travel", 2, ModeReset)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		if res.AddedCustom != 0 || res.RemovedOverrides != 1 || res.RestoredDeletes != 1 || res.ResetConfidences != 0 {
			t.Errorf("unexpected counts: %+v", res)
		}
		if n := len(c.Overrides(ctx)); n != 0 {
			t.Errorf("expected override on X cleared, %d left", n)
		}
		if n := len(c.DeletedIDs(ctx)); n != 0 {
			t.Errorf("expected deletion of Y restored, %d left", n)
		}
		accepted := e.AcceptedPacks(ctx)
		if len(accepted) != 1 || accepted[0].Version != 2 {
			t.Errorf("expected travel accepted at v2, got %+v", accepted)
		}
	})
}

func TestUpgradePromotesRemovedOverrides(t *testing.T) {
	for _, mode := range []Mode{ModeReset, ModeNewWords} {
		t.Run(string(mode), func(t *testing.T) {
			forEachEngine(t, func(t *testing.T, e *Engine, c *store.Client) {
				ctx := context.Background()
				e.Accept(ctx, "travel", 1)
				c.SetOverride(ctx, model.Word{ID: wordY, English: "train ticket", Mongolian: "галт тэрэгний тасалбар", Category: "travel"})
				c.SetConfidence(ctx, wordY, model.ConfidenceMastered)

				res, err := e.Upgrade(ctx, "travel", 2, mode)
				if err != nil {
					t.Fatalf("upgrade: %v", err)
				}
				if res.AddedCustom != 1 || res.RemovedOverrides != 1 {
					t.Fatalf("unexpected counts: %+v", res)
				}

				custom := c.CustomWords(ctx)
				if len(custom) != 1 || custom[0].English != "train ticket" {
					t.Fatalf("expected promoted custom word, got %+v", custom)
				}
				if !model.IsCustomID(custom[0].ID) || res.PromotedIDs[wordY] != custom[0].ID {
					t.Errorf("promoted id %d not reported correctly: %v", custom[0].ID, res.PromotedIDs)
				}
				conf := c.Confidences(ctx)
				if conf[custom[0].ID] != model.ConfidenceMastered {
					t.Errorf("confidence not transferred: %v", conf)
				}
				if _, ok := conf[wordY]; ok {
					t.Errorf("old confidence should be gone: %v", conf)
				}
				if _, ok := c.Overrides(ctx)[wordY]; ok {
					t.Error("stale override should be deleted")
				}
			})
		})
	}
}

func TestUpgradeResetClearsChangedConfidence(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e *Engine, c *store.Client) {
		ctx := context.Background()
		e.Accept(ctx, "travel", 1)
		c.SetConfidence(ctx, wordX, model.ConfidenceFamiliar)
		c.SetConfidence(ctx, wordZ, model.ConfidenceMastered)

		res, err := e.Upgrade(ctx, "travel", 2, ModeReset)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		if res.ResetConfidences != 1 {
			t.Errorf("expected 1 reset confidence, got %+v", res)
		}
		conf := c.Confidences(ctx)
		if _, ok := conf[wordZ]; ok {
			t.Error("confidence on changed word should be cleared")
		}
		if conf[wordX] != model.ConfidenceFamiliar {
			t.Error("confidence on unchanged word should survive")
		}
	})
}

func TestUpgradeNewWordsPreservesUserChanges(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e *Engine, c *store.Client) {
		ctx := context.Background()
		e.Accept(ctx, "travel", 1)
		c.SetOverride(ctx, model.Word{ID: wordX, English: "inn", Mongolian: "буудал"})
		c.AddDeletedID(ctx, wordZ)
		c.SetConfidence(ctx, wordZ, model.ConfidenceLearning)

		res, err := e.Upgrade(ctx, "travel", 2, ModeNewWords)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		if res.AddedCustom+res.RemovedOverrides+res.RestoredDeletes+res.ResetConfidences != 0 || len(res.PromotedIDs) != 0 {
			t.Errorf("expected no mutations, got %+v", res)
		}
		if c.Overrides(ctx)[wordX].English != "inn" {
			t.Error("override should be preserved")
		}
		if !c.DeletedIDs(ctx)[wordZ] {
			t.Error("deletion should be preserved")
		}
		if c.Confidences(ctx)[wordZ] != model.ConfidenceLearning {
			t.Error("confidence should be preserved")
		}
	})
}

func TestUpgradeEdgeCases(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e *Engine, c *store.Client) {
		ctx := context.Background()

		if _, err := e.Upgrade(ctx, "travel", 2, "wipe"); !errors.Is(err, ErrInvalidMode) {
			t.Errorf("expected ErrInvalidMode, got %v", err)
		}
		if _, err := e.Upgrade(ctx, "nope", 1, ModeReset); !errors.Is(err, ErrUnknownPack) {
			t.Errorf("expected ErrUnknownPack, got %v", err)
		}
		if _, err := e.Upgrade(ctx, "travel", 9, ModeReset); !errors.Is(err, ErrUnknownVersion) {
			t.Errorf("expected ErrUnknownVersion, got %v", err)
		}

		// Upgrading a pack that was never accepted just accepts it.
		if _, err := e.Upgrade(ctx, "travel", 1, ModeReset); err != nil {
			t.Fatalf("upgrade unaccepted: %v", err)
		}
		if got := e.AcceptedPacks(ctx); len(got) != 1 || got[0].Version != 1 {
			t.Fatalf("expected accepted at v1, got %+v", got)
		}

		c.SetOverride(ctx, model.Word{ID: wordX, English: "inn", Mongolian: "буудал"})
		res, err := e.Upgrade(ctx, "travel", 1, ModeReset)
		if err != nil {
			t.Fatalf("same-version upgrade: %v", err)
		}
		if res.RemovedOverrides != 0 || len(c.Overrides(ctx)) != 1 {
			t.Errorf("same-version upgrade should change nothing, got %+v", res)
		}
	})
}

func TestPendingCount(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e *Engine, c *store.Client) {
		ctx := context.Background()

		if n := e.PendingCount(ctx); n != 1 {
			t.Fatalf("new pack should be pending, got %d", n)
		}
		if err := e.Dismiss(ctx, "travel", 1); err != nil {
			t.Fatalf("dismiss: %v", err)
		}
		if n := e.PendingCount(ctx); n != 1 {
			t.Errorf("pack dismissed at an older version should be pending, got %d", n)
		}
		if got := e.DismissedPacks(ctx); len(got) != 1 || got[0].Version != 1 {
			t.Errorf("unexpected dismissed packs: %+v", got)
		}

		e.Dismiss(ctx, "travel", 2)
		if n := e.PendingCount(ctx); n != 0 {
			t.Errorf("pack dismissed at manifest version should not be pending, got %d", n)
		}

		e.Accept(ctx, "travel", 1)
		offers := e.Offers(ctx)
		if len(offers) != 1 || !offers[0].Pending || !offers[0].Upgradable {
			t.Errorf("pack accepted at older version should be pending and upgradable: %+v", offers)
		}
		if len(e.DismissedPacks(ctx)) != 0 {
			t.Error("accepting should replace the dismissal")
		}

		e.Accept(ctx, "travel", 2)
		if n := e.PendingCount(ctx); n != 0 {
			t.Errorf("pack accepted at manifest version should not be pending, got %d", n)
		}
	})
}
