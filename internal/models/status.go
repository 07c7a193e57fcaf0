// Package models contains domain types for the Elite status backend.
package models

import "time"

// StatusSnapshot is the most recently observed content of the game's
// Status.json file. Raw carries the full decoded document; Flags and
// Flags2 are extracted for decoding, everything else passes through
// untouched.
type StatusSnapshot struct {
	Flags      uint32         `json:"flags"`
	Flags2     uint32         `json:"flags2"`
	Raw        map[string]any `json:"raw"`
	ObservedAt time.Time      `json:"observedAt"`
}

// StatusResponse is the wire shape for snapshot reads.
type StatusResponse struct {
	Status     map[string]any `json:"status"`
	ObservedAt time.Time      `json:"observedAt"`
}

// FlagsResponse is the wire shape for decoded flag reads.
type FlagsResponse struct {
	Flags      map[string]bool `json:"flags"`
	ObservedAt time.Time       `json:"observedAt"`
}

// FlagResponse is the wire shape for a single named flag.
type FlagResponse struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}
