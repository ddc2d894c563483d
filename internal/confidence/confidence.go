// Package confidence stores the user's mastery label for each word.
// Any level may follow any other; the label is the user's choice.
package confidence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/vocab-keeper/internal/model"
	"github.com/rcliao/vocab-keeper/internal/store"
)

// ErrInvalidLevel is returned for a level outside learning, familiar, mastered.
var ErrInvalidLevel = errors.New("invalid confidence level")

// ParseLevel validates a level name.
func ParseLevel(s string) (model.Confidence, error) {
	c := model.Confidence(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w %q (valid: learning, familiar, mastered)", ErrInvalidLevel, s)
	}
	return c, nil
}

// Model reads and writes confidence labels.
type Model struct {
	store *store.Client
}

// New creates a confidence model.
func New(c *store.Client) *Model {
	return &Model{store: c}
}

// GetAll returns every labeled word. Unlabeled words were never practiced.
func (m *Model) GetAll(ctx context.Context) map[int]model.Confidence {
	return m.store.Confidences(ctx)
}

// Get returns the label of one word.
func (m *Model) Get(ctx context.Context, wordID int) (model.Confidence, bool) {
	c, ok := m.store.Confidences(ctx)[wordID]
	return c, ok
}

// Update labels a word and returns the full map after the write.
func (m *Model) Update(ctx context.Context, wordID int, level model.Confidence) (map[int]model.Confidence, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidLevel, level)
	}
	if err := m.store.SetConfidence(ctx, wordID, level); err != nil {
		return m.GetAll(ctx), err
	}
	return m.GetAll(ctx), nil
}

// Delete forgets a word's label.
func (m *Model) Delete(ctx context.Context, wordID int) error {
	return m.store.DeleteConfidence(ctx, wordID)
}

// Counts tallies words per level.
func (m *Model) Counts(ctx context.Context) map[model.Confidence]int {
	out := map[model.Confidence]int{}
	for _, c := range m.GetAll(ctx) {
		out[c]++
	}
	return out
}
