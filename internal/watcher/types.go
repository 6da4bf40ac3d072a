// Package watcher keeps an index in sync with live file changes using
// filesystem notifications with debounced event coalescing.
package watcher

import "time"

// Operation is the kind of file change observed.
type Operation int

const (
	OpCreate Operation = iota
	OpModify
	OpDelete
)

func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// FileEvent is one debounced file change.
type FileEvent struct {
	Path      string
	Operation Operation
	Timestamp time.Time
}

// DefaultDebounceWindow is how long rapid events for the same path
// are coalesced before the index is updated.
const DefaultDebounceWindow = 500 * time.Millisecond
