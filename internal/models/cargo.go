package models

import "time"

// CargoItem is a single commodity entry from the game's Cargo.json.
type CargoItem struct {
	Name          string `json:"name"`
	NameLocalised string `json:"nameLocalised,omitempty"`
	Count         int    `json:"count"`
	Stolen        int    `json:"stolen"`
}

// CargoManifest is the decoded content of Cargo.json.
type CargoManifest struct {
	Vessel     string      `json:"vessel"`
	Count      int         `json:"count"`
	Inventory  []CargoItem `json:"inventory"`
	ObservedAt time.Time   `json:"observedAt"`
}
