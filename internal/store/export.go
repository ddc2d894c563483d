package store

import (
	"context"
	"sort"

	"github.com/rcliao/vocab-keeper/internal/model"
)

// Dump reads every record of b into a snapshot.
func Dump(ctx context.Context, b Backend) (Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.Streak, err = b.Streak(ctx); err != nil {
		return snap, err
	}
	if snap.Confidences, err = b.Confidences(ctx); err != nil {
		return snap, err
	}
	if snap.CustomWords, err = b.CustomWords(ctx); err != nil {
		return snap, err
	}
	if snap.BundleWords, err = b.BundleWords(ctx); err != nil {
		return snap, err
	}
	overrides, err := b.Overrides(ctx)
	if err != nil {
		return snap, err
	}
	snap.Overrides = sortedWords(overrides)
	deleted, err := b.DeletedIDs(ctx)
	if err != nil {
		return snap, err
	}
	snap.DeletedIDs = sortedIDs(deleted)
	if snap.Packs, err = b.PackStatuses(ctx); err != nil {
		return snap, err
	}
	if snap.Bundles, err = b.BundleStatuses(ctx); err != nil {
		return snap, err
	}
	if snap.DailyProgress, err = b.DailyProgress(ctx); err != nil {
		return snap, err
	}
	if snap.ExtraSession, err = b.ExtraSession(ctx); err != nil {
		return snap, err
	}
	return snap, nil
}

func sortedWords(m map[int]model.Word) []model.Word {
	out := make([]model.Word, 0, len(m))
	for _, w := range m {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedIDs(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
