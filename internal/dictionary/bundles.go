package dictionary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/vocab-keeper/internal/content"
	"github.com/rcliao/vocab-keeper/internal/logger"
	"github.com/rcliao/vocab-keeper/internal/model"
)

// ErrUnknownBundle is returned for a bundle id missing from the catalog.
var ErrUnknownBundle = errors.New("unknown bundle")

// BundleResult reports how many words of a bundle were stored.
type BundleResult struct {
	BundleID string `json:"bundle_id"`
	Added    int    `json:"added"`
	Skipped  int    `json:"skipped"`
}

// AcceptBundle copies a bundle's words into the user's store and marks it
// accepted. Words whose id falls outside the bundle range are skipped.
func (s *Service) AcceptBundle(ctx context.Context, id string) (BundleResult, error) {
	b, ok := s.catalog.Bundle(id)
	if !ok {
		return BundleResult{}, fmt.Errorf("bundle %q: %w", id, ErrUnknownBundle)
	}

	res := BundleResult{BundleID: id}
	for _, w := range b.Words {
		if model.ClassifyID(w.ID) != model.RangeBundle {
			logger.Warn("skipping bundle word outside bundle range", "bundle", id, "word_id", w.ID)
			res.Skipped++
			continue
		}
		if err := s.store.PutBundleWord(ctx, w); err != nil {
			res.Skipped++
			continue
		}
		res.Added++
	}

	err := s.store.SetBundleStatus(ctx, model.BundleStatus{
		BundleID:  id,
		Status:    model.PackAccepted,
		UpdatedAt: time.Now().UTC(),
	})
	return res, err
}

// DismissBundle hides a bundle offer without adding its words.
func (s *Service) DismissBundle(ctx context.Context, id string) error {
	if _, ok := s.catalog.Bundle(id); !ok {
		return fmt.Errorf("bundle %q: %w", id, ErrUnknownBundle)
	}
	return s.store.SetBundleStatus(ctx, model.BundleStatus{
		BundleID:  id,
		Status:    model.PackDismissed,
		UpdatedAt: time.Now().UTC(),
	})
}

// PendingBundles returns the bundles that were neither accepted nor dismissed.
func (s *Service) PendingBundles(ctx context.Context) []content.Bundle {
	decided := map[string]bool{}
	for _, st := range s.store.BundleStatuses(ctx) {
		decided[st.BundleID] = true
	}
	var out []content.Bundle
	for _, b := range s.catalog.Bundles {
		if !decided[b.ID] {
			out = append(out, b)
		}
	}
	return out
}
