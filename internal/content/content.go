// Package content holds the read-only word sources compiled into the binary:
// the base dictionary, one-time bundles and versioned content packs.
package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rcliao/vocab-keeper/internal/model"
)

//go:embed data/*.json
var files embed.FS

// Bundle is a one-time word set offered once, with no upgrade path.
type Bundle struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Words       []model.Word `json:"words"`
}

// PackVersion is one immutable release of a pack.
type PackVersion struct {
	Version int          `json:"version"`
	Words   []model.Word `json:"words"`
}

// Pack is a versioned word list.
type Pack struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Versions    []PackVersion `json:"versions"`
}

// Latest returns the newest release, which is the manifest version.
func (p Pack) Latest() PackVersion {
	latest := PackVersion{}
	for _, v := range p.Versions {
		if v.Version > latest.Version {
			latest = v
		}
	}
	return latest
}

// Version returns release v.
func (p Pack) Version(v int) (PackVersion, bool) {
	for _, pv := range p.Versions {
		if pv.Version == v {
			return pv, true
		}
	}
	return PackVersion{}, false
}

// IDs returns the word ids of the release as a set.
func (v PackVersion) IDs() map[int]bool {
	out := make(map[int]bool, len(v.Words))
	for _, w := range v.Words {
		out[w.ID] = true
	}
	return out
}

// Catalog is every compiled-in word source.
type Catalog struct {
	Base    []model.Word
	Bundles []Bundle
	Packs   []Pack
}

// Load parses the embedded catalog and checks its id ranges.
func Load() (*Catalog, error) {
	c := &Catalog{}
	if err := decode("data/base_words.json", &c.Base); err != nil {
		return nil, err
	}
	if err := decode("data/bundles.json", &c.Bundles); err != nil {
		return nil, err
	}
	if err := decode("data/packs.json", &c.Packs); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	sort.Slice(c.Packs, func(i, j int) bool { return c.Packs[i].ID < c.Packs[j].ID })
	return c, nil
}

// MustLoad is Load for the embedded data, which is fixed at build time.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func decode(name string, v any) error {
	raw, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// Validate checks that base and pack words sit in their id ranges.
// Bundle ids are checked when a bundle is accepted.
func (c *Catalog) Validate() error {
	for _, w := range c.Base {
		if model.ClassifyID(w.ID) != model.RangeBase {
			return fmt.Errorf("base word %q has id %d outside the base range", w.English, w.ID)
		}
	}
	for _, p := range c.Packs {
		if len(p.Versions) == 0 {
			return fmt.Errorf("pack %s has no versions", p.ID)
		}
		for _, v := range p.Versions {
			for _, w := range v.Words {
				if model.ClassifyID(w.ID) != model.RangePack {
					return fmt.Errorf("pack %s v%d word %q has id %d outside the pack range", p.ID, v.Version, w.English, w.ID)
				}
			}
		}
	}
	return nil
}

// Pack looks a pack up by id.
func (c *Catalog) Pack(id string) (Pack, bool) {
	for _, p := range c.Packs {
		if p.ID == id {
			return p, true
		}
	}
	return Pack{}, false
}

// Bundle looks a bundle up by id.
func (c *Catalog) Bundle(id string) (Bundle, bool) {
	for _, b := range c.Bundles {
		if b.ID == id {
			return b, true
		}
	}
	return Bundle{}, false
}

// BaseWord looks a base dictionary word up by id.
func (c *Catalog) BaseWord(id int) (model.Word, bool) {
	for _, w := range c.Base {
		if w.ID == id {
			return w, true
		}
	}
	return model.Word{}, false
}
