// Package history keeps undo/redo snapshots of a value.
//
// Snapshots are deep copies made with the clone function given to New, so
// archived entries never alias the live present value.
package history

// History holds past snapshots (oldest first), the present value and undone
// snapshots (most recently undone first). It is not safe for concurrent use;
// the editor mutates one document from one session.
type History[T any] struct {
	past    []T
	present T
	future  []T

	clone func(T) T
	equal func(a, b T) bool
}

// New starts a history at initial. clone must return a deep copy; equal
// decides whether an update is a no-op.
func New[T any](initial T, clone func(T) T, equal func(a, b T) bool) *History[T] {
	return &History[T]{
		present: clone(initial),
		clone:   clone,
		equal:   equal,
	}
}

// Present returns a copy of the current value.
func (h *History[T]) Present() T {
	return h.clone(h.present)
}

// Update applies fn to a copy of the present value. When the result equals
// the present value nothing is recorded and Update returns false. Otherwise
// the old present moves to the past, the future is cleared and true is
// returned.
func (h *History[T]) Update(fn func(T) T) bool {
	next := h.clone(fn(h.clone(h.present)))
	if h.equal(next, h.present) {
		return false
	}
	h.past = append(h.past, h.present)
	h.present = next
	h.future = nil
	return true
}

// Replace sets the present value and discards all history. Switching or
// loading documents is not an edit to undo into.
func (h *History[T]) Replace(value T) {
	h.past = nil
	h.future = nil
	h.present = h.clone(value)
}

// Undo restores the most recent past snapshot. It reports false when there
// is nothing to undo.
func (h *History[T]) Undo() bool {
	if len(h.past) == 0 {
		return false
	}
	last := len(h.past) - 1
	previous := h.past[last]
	h.past = h.past[:last:last]
	h.future = append([]T{h.present}, h.future...)
	h.present = previous
	return true
}

// Redo re-applies the most recently undone snapshot. It reports false when
// there is nothing to redo.
func (h *History[T]) Redo() bool {
	if len(h.future) == 0 {
		return false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, h.present)
	h.present = next
	return true
}

// CanUndo reports whether Undo would change the present value.
func (h *History[T]) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether Redo would change the present value.
func (h *History[T]) CanRedo() bool { return len(h.future) > 0 }

// Depth returns the number of past and future snapshots.
func (h *History[T]) Depth() (past, future int) {
	return len(h.past), len(h.future)
}
