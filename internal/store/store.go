package store

import "time"

// Snapshot is the published view state of one named widget.
//
// Snapshot is the storage representation used by the preview server's REST
// API and SSE stream. It is decoupled from the widget's own types.
type Snapshot struct {
	// Name is the widget's display name.
	Name string `json:"name"`

	// Generation identifies the mount cycle that produced the snapshot.
	Generation uint64 `json:"generation"`

	// Phase is the resolution phase ("loading", "retrying", "resolved", "failed").
	Phase string `json:"phase"`

	Attempt     int `json:"attempt"`
	MaxAttempts int `json:"max_attempts"`

	// Message is the current status or error text, empty once resolved.
	Message string `json:"message"`

	// ItemCount is the number of rendered FAQ entries.
	ItemCount int `json:"item_count"`

	// HTML is the serialized host element, shadow root included.
	HTML string `json:"html,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the interface for storing and subscribing to snapshots.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// Update stores a snapshot and notifies all subscribers. A snapshot
	// from an older generation than the stored one is discarded and Update
	// reports false.
	Update(snap Snapshot) bool

	// Get returns the stored snapshot for name.
	Get(name string) (Snapshot, bool)

	// GetAll returns all stored snapshots ordered by name.
	GetAll() []Snapshot

	// Subscribe returns a buffered channel that receives snapshots.
	// Slow consumers may miss updates. Caller must call Unsubscribe.
	Subscribe() <-chan Snapshot

	// Unsubscribe removes a subscription and closes the channel.
	Unsubscribe(ch <-chan Snapshot)
}
