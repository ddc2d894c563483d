// Package store provides the vocabulary storage backends: a structured SQLite
// store and a flat key-value fallback behind one interface.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/vocab-keeper/internal/model"
)

// Backend kinds.
const (
	KindSQLite = "sqlite"
	KindKV     = "kv"
)

// ErrCustomIDsExhausted is returned when no id is left in the custom range.
var ErrCustomIDsExhausted = errors.New("custom word id space exhausted")

// Promotion turns a pack word override into a standalone custom word.
type Promotion struct {
	OverrideID int
	Fields     model.WordFields
	Confidence model.Confidence // empty when the word was never rated
}

// PackUpgrade is the full set of mutations for one pack version bump.
// Backends apply it atomically, in field order.
type PackUpgrade struct {
	Promotions       []Promotion
	DropOverrides    []int
	RestoreDeleted   []int
	ClearConfidences []int
	Accept           model.PackStatus
}

// PackUpgradeResult counts the records actually changed by a PackUpgrade.
type PackUpgradeResult struct {
	AddedCustom      int         `json:"added_custom"`
	RemovedOverrides int         `json:"removed_overrides"`
	RestoredDeletes  int         `json:"restored_deletes"`
	ResetConfidences int         `json:"reset_confidences"`
	PromotedIDs      map[int]int `json:"promoted_ids,omitempty"` // override id -> new custom id
}

// Snapshot holds every user-owned record. It is used for legacy migration
// and for backup export/import.
type Snapshot struct {
	Streak        model.StreakData         `json:"streak"`
	Confidences   map[int]model.Confidence `json:"confidences"`
	CustomWords   []model.Word             `json:"custom_words"`
	BundleWords   []model.Word             `json:"bundle_words"`
	Overrides     []model.Word             `json:"overrides"`
	DeletedIDs    []int                    `json:"deleted_ids"`
	Packs         []model.PackStatus       `json:"packs"`
	Bundles       []model.BundleStatus     `json:"bundles"`
	DailyProgress *model.DailyProgress     `json:"daily_progress,omitempty"`
	ExtraSession  *model.ExtraWordsSession `json:"extra_session,omitempty"`
}

// Backend is implemented by each persistence substrate. Getters return the
// zero value (not an error) when a record is simply absent.
type Backend interface {
	// Kind names the substrate, KindSQLite or KindKV.
	Kind() string

	Streak(ctx context.Context) (model.StreakData, error)
	SaveStreak(ctx context.Context, s model.StreakData) error

	Confidences(ctx context.Context) (map[int]model.Confidence, error)
	SetConfidence(ctx context.Context, wordID int, c model.Confidence) error
	DeleteConfidence(ctx context.Context, wordID int) error

	// CustomWords returns user-created words ordered by id.
	CustomWords(ctx context.Context) ([]model.Word, error)
	// AddCustomWord allocates a fresh id in the custom range.
	AddCustomWord(ctx context.Context, f model.WordFields) (model.Word, error)
	// PutCustomWord inserts or replaces a custom word keeping its id.
	PutCustomWord(ctx context.Context, w model.Word) error
	DeleteCustomWord(ctx context.Context, id int) error

	BundleWords(ctx context.Context) ([]model.Word, error)
	PutBundleWord(ctx context.Context, w model.Word) error

	Overrides(ctx context.Context) (map[int]model.Word, error)
	SetOverride(ctx context.Context, w model.Word) error
	DeleteOverride(ctx context.Context, wordID int) error

	DeletedIDs(ctx context.Context) (map[int]bool, error)
	AddDeletedID(ctx context.Context, wordID int) error
	RemoveDeletedID(ctx context.Context, wordID int) error

	PackStatuses(ctx context.Context) ([]model.PackStatus, error)
	SetPackStatus(ctx context.Context, p model.PackStatus) error

	BundleStatuses(ctx context.Context) ([]model.BundleStatus, error)
	SetBundleStatus(ctx context.Context, b model.BundleStatus) error

	// DailyProgress returns nil when nothing was saved. Staleness is the
	// caller's concern.
	DailyProgress(ctx context.Context) (*model.DailyProgress, error)
	SaveDailyProgress(ctx context.Context, p model.DailyProgress) error

	ExtraSession(ctx context.Context) (*model.ExtraWordsSession, error)
	SaveExtraSession(ctx context.Context, s model.ExtraWordsSession) error
	ClearExtraSession(ctx context.Context) error

	// ApplyPackUpgrade applies all mutations of u or none of them.
	ApplyPackUpgrade(ctx context.Context, u PackUpgrade) (PackUpgradeResult, error)

	// Restore merges a snapshot into the store.
	Restore(ctx context.Context, snap Snapshot) error

	// Close closes the store.
	Close() error
}
