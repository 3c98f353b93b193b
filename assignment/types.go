package assignment

import "time"

// ParticipantID identifies a connected participant for the lifetime of its
// connection. Ids are handed out by the authority at admission and are never
// reused within a session.
type ParticipantID uint64

// Edge is one hunter→target pair of the assignment cycle.
type Edge struct {
	Hunter ParticipantID `json:"hunter"`
	Target ParticipantID `json:"target"`
}

// State is a versioned snapshot of the full assignment graph. Snapshots are
// immutable once published; every roster change produces a new version.
// Version 0 means "no assignment yet" and always carries an empty edge set.
type State struct {
	Version uint64 `json:"version"`
	Edges   []Edge `json:"edges"`
}

// Elimination records an accepted elimination claim.
type Elimination struct {
	Hunter ParticipantID
	Target ParticipantID
	At     time.Time
}
