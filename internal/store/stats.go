package store

import (
	"context"
	"os"

	"github.com/rcliao/vocab-keeper/internal/model"
)

// Stats holds record counts for the active store.
type Stats struct {
	Backend        string                   `json:"backend"`
	DBPath         string                   `json:"db_path"`
	DBSizeBytes    int64                    `json:"db_size_bytes"`
	CustomWords    int                      `json:"custom_words"`
	BundleWords    int                      `json:"bundle_words"`
	Overrides      int                      `json:"overrides"`
	DeletedWords   int                      `json:"deleted_words"`
	Confidence     map[model.Confidence]int `json:"confidence"`
	AcceptedPacks  int                      `json:"accepted_packs"`
	DismissedPacks int                      `json:"dismissed_packs"`
	CurrentStreak  int                      `json:"current_streak"`
	LongestStreak  int                      `json:"longest_streak"`
}

// Stats returns store statistics. dbPath is the file backing the store.
func (c *Client) Stats(ctx context.Context, dbPath string) *Stats {
	st := &Stats{Backend: c.Kind(), DBPath: dbPath, Confidence: map[model.Confidence]int{}}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	st.CustomWords = len(c.CustomWords(ctx))
	st.BundleWords = len(c.BundleWords(ctx))
	st.Overrides = len(c.Overrides(ctx))
	st.DeletedWords = len(c.DeletedIDs(ctx))

	for _, level := range c.Confidences(ctx) {
		st.Confidence[level]++
	}
	for _, p := range c.PackStatuses(ctx) {
		switch p.Status {
		case model.PackAccepted:
			st.AcceptedPacks++
		case model.PackDismissed:
			st.DismissedPacks++
		}
	}

	streak := c.Streak(ctx)
	st.CurrentStreak = streak.CurrentStreak
	st.LongestStreak = streak.LongestStreak
	return st
}
