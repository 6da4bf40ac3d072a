package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectBatch(t *testing.T, d *Debouncer) []FileEvent {
	t.Helper()
	select {
	case batch := <-d.Events():
		return batch
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced batch")
		return nil
	}
}

func event(path string, op Operation) FileEvent {
	return FileEvent{Path: path, Operation: op, Timestamp: time.Now()}
}

func TestDebouncerEmitsAfterWindow(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(event("a.py", OpModify))

	batch := collectBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, "a.py", batch[0].Path)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestDebouncerCoalescesRapidModifies(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Add(event("a.py", OpModify))
	}

	batch := collectBatch(t, d)
	assert.Len(t, batch, 1)
}

func TestDebouncerCreateThenModifyStaysCreate(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(event("a.py", OpCreate))
	d.Add(event("a.py", OpModify))

	batch := collectBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpCreate, batch[0].Operation)
}

func TestDebouncerCreateThenDeleteCancels(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(event("a.py", OpCreate))
	d.Add(event("a.py", OpDelete))
	d.Add(event("b.py", OpModify))

	batch := collectBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, "b.py", batch[0].Path)
}

func TestDebouncerDeleteThenCreateBecomesModify(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(event("a.py", OpDelete))
	d.Add(event("a.py", OpCreate))

	batch := collectBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpModify, batch[0].Operation)
}

func TestDebouncerModifyThenDeleteBecomesDelete(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(event("a.py", OpModify))
	d.Add(event("a.py", OpDelete))

	batch := collectBatch(t, d)
	require.Len(t, batch, 1)
	assert.Equal(t, OpDelete, batch[0].Operation)
}

func TestDebouncerSeparatePathsKeptApart(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(event("a.py", OpModify))
	d.Add(event("b.py", OpDelete))

	batch := collectBatch(t, d)
	require.Len(t, batch, 2)

	ops := make(map[string]Operation, 2)
	for _, ev := range batch {
		ops[ev.Path] = ev.Operation
	}
	assert.Equal(t, OpModify, ops["a.py"])
	assert.Equal(t, OpDelete, ops["b.py"])
}

func TestDebouncerStopDiscardsPending(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	d.Add(event("a.py", OpModify))
	d.Stop()

	select {
	case batch := <-d.Events():
		t.Fatalf("expected no batch after Stop, got %v", batch)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "create", OpCreate.String())
	assert.Equal(t, "modify", OpModify.String())
	assert.Equal(t, "delete", OpDelete.String())
	assert.Equal(t, "unknown", Operation(99).String())
}
