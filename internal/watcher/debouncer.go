package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid file events to prevent index thrashing.
// Events for the same path within the debounce window are merged:
//   - CREATE + MODIFY = CREATE (file is still new)
//   - CREATE + DELETE = nothing (file never really existed)
//   - MODIFY + DELETE = DELETE (file is gone)
//   - DELETE + CREATE = MODIFY (file was replaced)
type Debouncer struct {
	window time.Duration
	output chan []FileEvent

	mu      sync.Mutex
	pending map[string]*pendingEvent
	timer   *time.Timer
	stopped bool
}

type pendingEvent struct {
	event   FileEvent
	firstOp Operation
}

// NewDebouncer creates a debouncer with the given window duration.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{
		window:  window,
		pending: make(map[string]*pendingEvent),
		output:  make(chan []FileEvent, 16),
	}
}

// Add submits an event for debouncing.
func (d *Debouncer) Add(event FileEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if existing, ok := d.pending[event.Path]; ok {
		merged, drop := coalesce(existing.firstOp, event.Operation)
		if drop {
			delete(d.pending, event.Path)
		} else {
			existing.event.Operation = merged
			existing.event.Timestamp = event.Timestamp
			existing.firstOp = merged
		}
	} else {
		d.pending[event.Path] = &pendingEvent{event: event, firstOp: event.Operation}
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// coalesce merges two operations for the same path. drop is true when
// the events cancel each other out.
func coalesce(first, next Operation) (merged Operation, drop bool) {
	switch {
	case first == OpCreate && next == OpDelete:
		return 0, true
	case first == OpCreate:
		return OpCreate, false
	case first == OpDelete && next == OpCreate:
		return OpModify, false
	case next == OpDelete:
		return OpDelete, false
	default:
		return OpModify, false
	}
}

// flush emits all pending events as one batch.
func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := make([]FileEvent, 0, len(d.pending))
	for _, p := range d.pending {
		batch = append(batch, p.event)
	}
	d.pending = make(map[string]*pendingEvent)
	d.mu.Unlock()

	d.output <- batch
}

// Events returns the channel of debounced event batches.
func (d *Debouncer) Events() <-chan []FileEvent {
	return d.output
}

// Stop discards pending events and stops emitting.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = make(map[string]*pendingEvent)
}
