package models

import "time"

// JournalEvent is a single line from the game's journal log, reduced to
// the fields the backend indexes. Raw preserves the original line.
type JournalEvent struct {
	Seq        int64     `json:"seq"`
	Timestamp  time.Time `json:"timestamp"`
	Event      string    `json:"event"`
	StarSystem string    `json:"starSystem,omitempty"`
	Raw        string    `json:"raw,omitempty"`
}

// EventTypeCount is the number of stored journal events for one event type.
type EventTypeCount struct {
	Event string `json:"event"`
	Count int64  `json:"count"`
}

// JournalEventsPage is a paginated slice of journal events, newest first.
type JournalEventsPage struct {
	Events   []JournalEvent `json:"events"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}
