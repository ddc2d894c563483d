package model

import "time"

// PackState is the user's decision about a pack or bundle.
type PackState string

const (
	PackAccepted  PackState = "accepted"
	PackDismissed PackState = "dismissed"
)

// PackStatus records the accepted or dismissed version of a content pack.
// There is at most one status per pack.
type PackStatus struct {
	PackID    string    `json:"pack_id" db:"pack_id"`
	Version   int       `json:"version" db:"version"`
	Status    PackState `json:"status" db:"status"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BundleStatus records the one-time decision about a bundle.
type BundleStatus struct {
	BundleID  string    `json:"bundle_id" db:"bundle_id"`
	Status    PackState `json:"status" db:"status"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
