// Package app wires the storage client and the services into one handle.
package app

import (
	"context"
	"time"

	"github.com/rcliao/vocab-keeper/internal/config"
	"github.com/rcliao/vocab-keeper/internal/confidence"
	"github.com/rcliao/vocab-keeper/internal/content"
	"github.com/rcliao/vocab-keeper/internal/dictionary"
	"github.com/rcliao/vocab-keeper/internal/packs"
	"github.com/rcliao/vocab-keeper/internal/progress"
	"github.com/rcliao/vocab-keeper/internal/store"
	"github.com/rcliao/vocab-keeper/internal/streak"
)

// App owns the storage client. Services share it and must not outlive Close.
type App struct {
	Config     config.Config
	Store      *store.Client
	Catalog    *content.Catalog
	Dictionary *dictionary.Service
	Confidence *confidence.Model
	Streak     *streak.Engine
	Progress   *progress.Tracker
	Packs      *packs.Engine
}

// Open selects the storage backend for cfg and builds the services.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	b, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, err
	}
	return New(cfg, store.NewClient(b), content.MustLoad(), time.Now), nil
}

// New builds the services over an open client.
func New(cfg config.Config, c *store.Client, catalog *content.Catalog, now func() time.Time) *App {
	a := &App{Config: cfg, Store: c, Catalog: catalog}
	a.Dictionary = dictionary.New(c, catalog)
	a.Confidence = confidence.New(c)
	a.Streak = streak.New(c, now)
	a.Progress = progress.New(c, a.Dictionary, a.Confidence, a.Streak, progress.Options{
		DailyWords: cfg.DailyWords,
		ExtraWords: cfg.ExtraWords,
		Now:        now,
	})
	a.Packs = packs.New(c, catalog)
	return a
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.Store.Close()
}
