// Package dictionary merges the base dictionary, accepted packs, bundles and
// user words into the single word list the app practices from.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rcliao/vocab-keeper/internal/content"
	"github.com/rcliao/vocab-keeper/internal/logger"
	"github.com/rcliao/vocab-keeper/internal/model"
	"github.com/rcliao/vocab-keeper/internal/store"
)

// ErrInvalidWord matches every *ValidationError.
var ErrInvalidWord = errors.New("invalid word")

// ErrNotFound is returned when editing a word that no source provides.
var ErrNotFound = errors.New("word not found")

// ValidationError reports a missing required field on a user-submitted word.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid word: %s is required", e.Field)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidWord }

// SourceKind is where a word comes from.
type SourceKind string

const (
	SourceCustom  SourceKind = "custom"
	SourcePack    SourceKind = "pack"
	SourceBase    SourceKind = "base"
	SourceBundle  SourceKind = "bundle"
	SourceUnknown SourceKind = "unknown"
)

// Source describes the provenance of a word id.
type Source struct {
	Kind    SourceKind `json:"kind"`
	PackID  string     `json:"pack_id,omitempty"`
	Version int        `json:"version,omitempty"`
	Title   string     `json:"title,omitempty"`
}

// Service resolves and edits the user's effective dictionary.
type Service struct {
	store   *store.Client
	catalog *content.Catalog
}

// New creates a dictionary service.
func New(c *store.Client, catalog *content.Catalog) *Service {
	return &Service{store: c, catalog: catalog}
}

// acceptedPacks returns the accepted release of each pack, in catalog order.
func (s *Service) acceptedPacks(ctx context.Context) []acceptedPack {
	versions := map[string]int{}
	for _, st := range s.store.PackStatuses(ctx) {
		if st.Status == model.PackAccepted {
			versions[st.PackID] = st.Version
		}
	}

	var out []acceptedPack
	for _, p := range s.catalog.Packs {
		v, ok := versions[p.ID]
		if !ok {
			continue
		}
		pv, ok := p.Version(v)
		if !ok {
			logger.Warn("accepted pack version missing from catalog", "pack", p.ID, "version", v)
			continue
		}
		out = append(out, acceptedPack{pack: p, release: pv})
	}
	return out
}

type acceptedPack struct {
	pack    content.Pack
	release content.PackVersion
}

// Resolve returns the effective word list: base words, accepted pack words
// and bundle words minus deletions with overrides applied, followed by the
// user's custom words.
func (s *Service) Resolve(ctx context.Context) []model.Word {
	deleted := s.store.DeletedIDs(ctx)
	overrides := s.store.Overrides(ctx)

	seen := map[int]bool{}
	var out []model.Word
	add := func(w model.Word) {
		if deleted[w.ID] || seen[w.ID] {
			return
		}
		if o, ok := overrides[w.ID]; ok {
			o.ID = w.ID
			w = o
		}
		seen[w.ID] = true
		out = append(out, w)
	}

	for _, w := range s.catalog.Base {
		add(w)
	}
	for _, ap := range s.acceptedPacks(ctx) {
		for _, w := range ap.release.Words {
			add(w)
		}
	}
	for _, w := range s.store.BundleWords(ctx) {
		add(w)
	}
	for _, w := range s.store.CustomWords(ctx) {
		if seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		out = append(out, w)
	}
	return out
}

// Lookup returns the resolved word with the given id.
func (s *Service) Lookup(ctx context.Context, id int) (model.Word, bool) {
	for _, w := range s.Resolve(ctx) {
		if w.ID == id {
			return w, true
		}
	}
	return model.Word{}, false
}

// SourceOf reports where id comes from. Custom words are checked first, then
// accepted packs, the base dictionary and the bundle range.
func (s *Service) SourceOf(ctx context.Context, id int) Source {
	if model.IsCustomID(id) {
		return Source{Kind: SourceCustom}
	}
	for _, w := range s.store.CustomWords(ctx) {
		if w.ID == id {
			return Source{Kind: SourceCustom}
		}
	}
	for _, ap := range s.acceptedPacks(ctx) {
		if ap.release.IDs()[id] {
			return Source{Kind: SourcePack, PackID: ap.pack.ID, Version: ap.release.Version, Title: ap.pack.Title}
		}
	}
	if _, ok := s.catalog.BaseWord(id); ok {
		return Source{Kind: SourceBase}
	}
	if model.ClassifyID(id) == model.RangeBundle {
		return Source{Kind: SourceBundle}
	}
	return Source{Kind: SourceUnknown}
}

func validate(f model.WordFields) (model.WordFields, error) {
	f.English = strings.TrimSpace(f.English)
	f.Mongolian = strings.TrimSpace(f.Mongolian)
	f.Pronunciation = strings.TrimSpace(f.Pronunciation)
	f.Category = strings.TrimSpace(f.Category)
	if f.English == "" {
		return f, &ValidationError{Field: "english"}
	}
	if f.Mongolian == "" {
		return f, &ValidationError{Field: "mongolian"}
	}
	return f, nil
}

// AddWord creates a custom word.
func (s *Service) AddWord(ctx context.Context, f model.WordFields) (model.Word, error) {
	f, err := validate(f)
	if err != nil {
		return model.Word{}, err
	}
	if f.Category == "" {
		f.Category = "custom"
	}
	return s.store.AddCustomWord(ctx, f)
}

// UpdateWord edits a word. Custom words are rewritten in place; words from
// read-only sources get an override.
func (s *Service) UpdateWord(ctx context.Context, w model.Word) error {
	f, err := validate(w.Fields())
	if err != nil {
		return err
	}
	updated := f.WithID(w.ID)

	if model.IsCustomID(w.ID) {
		for _, cw := range s.store.CustomWords(ctx) {
			if cw.ID == w.ID {
				return s.store.PutCustomWord(ctx, updated)
			}
		}
		return fmt.Errorf("custom word %d: %w", w.ID, ErrNotFound)
	}

	if !s.providesReadOnly(ctx, w.ID) {
		return fmt.Errorf("word %d: %w", w.ID, ErrNotFound)
	}
	return s.store.SetOverride(ctx, updated)
}

// providesReadOnly reports whether a base, accepted pack or bundle word has id.
func (s *Service) providesReadOnly(ctx context.Context, id int) bool {
	if _, ok := s.catalog.BaseWord(id); ok {
		return true
	}
	for _, ap := range s.acceptedPacks(ctx) {
		if ap.release.IDs()[id] {
			return true
		}
	}
	for _, w := range s.store.BundleWords(ctx) {
		if w.ID == id {
			return true
		}
	}
	return false
}

// DeleteWord removes a word from the effective dictionary. Custom words are
// deleted outright; other words are hidden and lose their override. The
// word's confidence label is dropped either way.
func (s *Service) DeleteWord(ctx context.Context, id int) error {
	if model.IsCustomID(id) {
		if err := s.store.DeleteCustomWord(ctx, id); err != nil {
			return err
		}
	} else {
		if err := s.store.DeleteOverride(ctx, id); err != nil {
			return err
		}
		if err := s.store.AddDeletedID(ctx, id); err != nil {
			return err
		}
	}
	return s.store.DeleteConfidence(ctx, id)
}

// RestoreWord un-hides a previously deleted non-custom word.
func (s *Service) RestoreWord(ctx context.Context, id int) error {
	return s.store.RemoveDeletedID(ctx, id)
}

// Search finds resolved words whose English, Mongolian or pronunciation
// contains query, case-insensitively.
func (s *Service) Search(ctx context.Context, query string, limit int) []model.Word {
	if limit <= 0 {
		limit = 20
	}
	q := strings.ToLower(strings.TrimSpace(query))

	var out []model.Word
	for _, w := range s.Resolve(ctx) {
		if q != "" &&
			!strings.Contains(strings.ToLower(w.English), q) &&
			!strings.Contains(strings.ToLower(w.Mongolian), q) &&
			!strings.Contains(strings.ToLower(w.Pronunciation), q) {
			continue
		}
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].English) < strings.ToLower(out[j].English)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
