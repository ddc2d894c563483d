// Package model defines the core vocabulary data types.
package model

// Word id ranges. The range an id falls in encodes where the word came from,
// so new ids must always be allocated inside the range of their source.
const (
	BaseIDMax     = 999
	CustomIDMin   = 1000
	CustomIDMax   = 99999
	BundleIDMin   = 100000
	BundleIDMax   = 199999
	PackIDMin     = 200000
	CustomIDShift = 1000 // user dictionary row id + shift = word id
)

// Word is a single dictionary entry.
type Word struct {
	ID            int    `json:"id" db:"id"`
	English       string `json:"english" db:"english"`
	Mongolian     string `json:"mongolian" db:"mongolian"`
	Pronunciation string `json:"pronunciation" db:"pronunciation"`
	Category      string `json:"category" db:"category"`
}

// WordFields holds the user-editable content of a word.
type WordFields struct {
	English       string `json:"english"`
	Mongolian     string `json:"mongolian"`
	Pronunciation string `json:"pronunciation"`
	Category      string `json:"category"`
}

// Fields returns the editable content of w.
func (w Word) Fields() WordFields {
	return WordFields{
		English:       w.English,
		Mongolian:     w.Mongolian,
		Pronunciation: w.Pronunciation,
		Category:      w.Category,
	}
}

// WithID builds a word from fields and an id.
func (f WordFields) WithID(id int) Word {
	return Word{
		ID:            id,
		English:       f.English,
		Mongolian:     f.Mongolian,
		Pronunciation: f.Pronunciation,
		Category:      f.Category,
	}
}

// IDRange classifies a numeric word id by provenance.
type IDRange int

const (
	RangeInvalid IDRange = iota
	RangeBase
	RangeCustom
	RangeBundle
	RangePack
)

// ClassifyID returns the provenance range of a numeric word id.
func ClassifyID(id int) IDRange {
	switch {
	case id <= 0:
		return RangeInvalid
	case id <= BaseIDMax:
		return RangeBase
	case id <= CustomIDMax:
		return RangeCustom
	case id <= BundleIDMax:
		return RangeBundle
	default:
		return RangePack
	}
}

func (r IDRange) String() string {
	switch r {
	case RangeBase:
		return "base"
	case RangeCustom:
		return "custom"
	case RangeBundle:
		return "bundle"
	case RangePack:
		return "pack"
	default:
		return "invalid"
	}
}

// IsCustomID reports whether id belongs to the user-created range.
func IsCustomID(id int) bool { return ClassifyID(id) == RangeCustom }

// Confidence is a user-chosen mastery label for a word.
type Confidence string

const (
	ConfidenceLearning Confidence = "learning"
	ConfidenceFamiliar Confidence = "familiar"
	ConfidenceMastered Confidence = "mastered"
)

// ValidConfidences are the allowed confidence levels.
var ValidConfidences = map[Confidence]bool{
	ConfidenceLearning: true,
	ConfidenceFamiliar: true,
	ConfidenceMastered: true,
}

// Valid reports whether c is one of the known levels.
func (c Confidence) Valid() bool { return ValidConfidences[c] }
