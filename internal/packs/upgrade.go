package packs

import (
	"context"

	"github.com/rcliao/vocab-keeper/internal/content"
	"github.com/rcliao/vocab-keeper/internal/logger"
	"github.com/rcliao/vocab-keeper/internal/model"
	"github.com/rcliao/vocab-keeper/internal/store"
)

// Upgrade moves pack id to version. Overridden words that the new version
// drops become custom words carrying their confidence. In reset mode the
// user's overrides and deletions on the old version's words are discarded
// and confidence on changed words is cleared. All mutations are applied in
// one transaction and the returned counts are the records actually changed.
//
// A pack that was never accepted is simply accepted. Upgrading to the
// accepted version or an older one changes nothing.
func (e *Engine) Upgrade(ctx context.Context, id string, version int, mode Mode) (store.PackUpgradeResult, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return store.PackUpgradeResult{}, err
	}
	pack, next, err := e.release(id, version)
	if err != nil {
		return store.PackUpgradeResult{}, err
	}

	accept := model.PackStatus{PackID: id, Version: version, Status: model.PackAccepted, UpdatedAt: e.now().UTC()}
	current, ok := e.status(ctx, id)
	if !ok || current.Status != model.PackAccepted {
		return store.PackUpgradeResult{}, e.store.SetPackStatus(ctx, accept)
	}
	if current.Version >= version {
		logger.Info("pack already at or past requested version", "pack", id, "accepted", current.Version, "requested", version)
		return store.PackUpgradeResult{}, nil
	}

	old, ok := pack.Version(current.Version)
	if !ok {
		// Nothing is known about the old words, so there is nothing to reconcile.
		logger.Warn("accepted pack version missing from catalog", "pack", id, "version", current.Version)
		return e.store.ApplyPackUpgrade(ctx, store.PackUpgrade{Accept: accept})
	}

	plan := e.plan(ctx, old, next, mode)
	plan.Accept = accept
	res, err := e.store.ApplyPackUpgrade(ctx, plan)
	if err != nil {
		return store.PackUpgradeResult{}, err
	}
	logger.Info("pack upgraded", "pack", id, "from", current.Version, "to", version, "mode", string(mode),
		"added_custom", res.AddedCustom, "removed_overrides", res.RemovedOverrides,
		"restored_deletes", res.RestoredDeletes, "reset_confidences", res.ResetConfidences)
	return res, nil
}

func (e *Engine) plan(ctx context.Context, old, next content.PackVersion, mode Mode) store.PackUpgrade {
	diff := DiffVersions(old, next)
	overrides := e.store.Overrides(ctx)
	confidences := e.store.Confidences(ctx)

	var u store.PackUpgrade
	removed := map[int]bool{}
	for _, id := range diff.Removed {
		removed[id] = true
		o, ok := overrides[id]
		if !ok {
			continue
		}
		u.Promotions = append(u.Promotions, store.Promotion{
			OverrideID: id,
			Fields:     o.Fields(),
			Confidence: confidences[id],
		})
	}

	if mode != ModeReset {
		return u
	}

	deleted := e.store.DeletedIDs(ctx)
	for _, w := range old.Words {
		if _, ok := overrides[w.ID]; ok && !removed[w.ID] {
			u.DropOverrides = append(u.DropOverrides, w.ID)
		}
		if deleted[w.ID] {
			u.RestoreDeleted = append(u.RestoreDeleted, w.ID)
		}
	}
	for _, id := range diff.Changed {
		if _, ok := confidences[id]; ok {
			u.ClearConfidences = append(u.ClearConfidences, id)
		}
	}
	return u
}
