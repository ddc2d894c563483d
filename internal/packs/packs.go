// Package packs tracks content pack decisions and reconciles pack version
// upgrades against the user's edits and deletions.
package packs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rcliao/vocab-keeper/internal/content"
	"github.com/rcliao/vocab-keeper/internal/model"
	"github.com/rcliao/vocab-keeper/internal/store"
)

var (
	ErrUnknownPack    = errors.New("unknown pack")
	ErrUnknownVersion = errors.New("unknown pack version")
	ErrInvalidMode    = errors.New("invalid upgrade mode")
)

// Mode selects how an upgrade treats user changes to words that survive.
type Mode string

const (
	// ModeReset discards overrides and deletions on the old version's words
	// and clears confidence on words whose content changed.
	ModeReset Mode = "reset"
	// ModeNewWords keeps existing user changes and only takes the new words.
	ModeNewWords Mode = "new_words"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeReset, ModeNewWords:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w %q (valid: reset, new_words)", ErrInvalidMode, s)
}

// Engine manages pack acceptance and upgrades.
type Engine struct {
	store   *store.Client
	catalog *content.Catalog
	now     func() time.Time
}

// New creates a pack engine.
func New(c *store.Client, catalog *content.Catalog) *Engine {
	return &Engine{store: c, catalog: catalog, now: time.Now}
}

func (e *Engine) release(id string, version int) (content.Pack, content.PackVersion, error) {
	p, ok := e.catalog.Pack(id)
	if !ok {
		return content.Pack{}, content.PackVersion{}, fmt.Errorf("pack %q: %w", id, ErrUnknownPack)
	}
	pv, ok := p.Version(version)
	if !ok {
		return p, content.PackVersion{}, fmt.Errorf("pack %q v%d: %w", id, version, ErrUnknownVersion)
	}
	return p, pv, nil
}

func (e *Engine) statuses(ctx context.Context, state model.PackState) []model.PackStatus {
	var out []model.PackStatus
	for _, st := range e.store.PackStatuses(ctx) {
		if st.Status == state {
			out = append(out, st)
		}
	}
	return out
}

func (e *Engine) status(ctx context.Context, id string) (model.PackStatus, bool) {
	for _, st := range e.store.PackStatuses(ctx) {
		if st.PackID == id {
			return st, true
		}
	}
	return model.PackStatus{}, false
}

// AcceptedPacks returns the packs the user accepted and their versions.
func (e *Engine) AcceptedPacks(ctx context.Context) []model.PackStatus {
	return e.statuses(ctx, model.PackAccepted)
}

// DismissedPacks returns the packs the user dismissed and the version seen.
func (e *Engine) DismissedPacks(ctx context.Context) []model.PackStatus {
	return e.statuses(ctx, model.PackDismissed)
}

// Accept marks a pack accepted at version. Use Upgrade to move an already
// accepted pack to a newer version.
func (e *Engine) Accept(ctx context.Context, id string, version int) error {
	if _, _, err := e.release(id, version); err != nil {
		return err
	}
	return e.store.SetPackStatus(ctx, model.PackStatus{
		PackID: id, Version: version, Status: model.PackAccepted, UpdatedAt: e.now().UTC(),
	})
}

// Dismiss records that the user declined version of a pack.
func (e *Engine) Dismiss(ctx context.Context, id string, version int) error {
	if _, _, err := e.release(id, version); err != nil {
		return err
	}
	return e.store.SetPackStatus(ctx, model.PackStatus{
		PackID: id, Version: version, Status: model.PackDismissed, UpdatedAt: e.now().UTC(),
	})
}

// Offer is one catalog pack with the user's decision about it.
type Offer struct {
	PackID     string            `json:"pack_id"`
	Title      string            `json:"title"`
	Latest     int               `json:"latest_version"`
	Status     *model.PackStatus `json:"status,omitempty"`
	Pending    bool              `json:"pending"`
	Upgradable bool              `json:"upgradable"`
}

// Offers lists every pack in the catalog.
func (e *Engine) Offers(ctx context.Context) []Offer {
	byID := map[string]model.PackStatus{}
	for _, st := range e.store.PackStatuses(ctx) {
		byID[st.PackID] = st
	}

	out := make([]Offer, 0, len(e.catalog.Packs))
	for _, p := range e.catalog.Packs {
		o := Offer{PackID: p.ID, Title: p.Title, Latest: p.Latest().Version}
		if st, ok := byID[p.ID]; ok {
			st := st
			o.Status = &st
		}
		o.Pending = isPending(o.Status, o.Latest)
		o.Upgradable = o.Status != nil && o.Status.Status == model.PackAccepted && o.Status.Version < o.Latest
		out = append(out, o)
	}
	return out
}

// isPending reports whether a pack still needs a decision. A dismissal only
// counts for the exact manifest version it was made against.
func isPending(st *model.PackStatus, latest int) bool {
	if st == nil {
		return true
	}
	switch st.Status {
	case model.PackAccepted:
		return st.Version < latest
	case model.PackDismissed:
		return st.Version != latest
	}
	return true
}

// PendingCount returns the number of packs awaiting a decision.
func (e *Engine) PendingCount(ctx context.Context) int {
	n := 0
	for _, o := range e.Offers(ctx) {
		if o.Pending {
			n++
		}
	}
	return n
}

// Diff compares two releases of a pack over their word ids.
type Diff struct {
	Removed []int `json:"removed"`
	Changed []int `json:"changed"`
	Added   []int `json:"added"`
}

// DiffVersions returns the ids removed, changed and added going from old to new.
func DiffVersions(old, next content.PackVersion) Diff {
	byID := make(map[int]model.Word, len(next.Words))
	for _, w := range next.Words {
		byID[w.ID] = w
	}
	prev := make(map[int]bool, len(old.Words))

	var d Diff
	for _, w := range old.Words {
		prev[w.ID] = true
		nw, ok := byID[w.ID]
		switch {
		case !ok:
			d.Removed = append(d.Removed, w.ID)
		case nw != w:
			d.Changed = append(d.Changed, w.ID)
		}
	}
	for _, w := range next.Words {
		if !prev[w.ID] {
			d.Added = append(d.Added, w.ID)
		}
	}
	sort.Ints(d.Removed)
	sort.Ints(d.Changed)
	sort.Ints(d.Added)
	return d
}

// Diff compares two catalog releases of pack id.
func (e *Engine) Diff(id string, from, to int) (Diff, error) {
	_, old, err := e.release(id, from)
	if err != nil {
		return Diff{}, err
	}
	_, next, err := e.release(id, to)
	if err != nil {
		return Diff{}, err
	}
	return DiffVersions(old, next), nil
}
