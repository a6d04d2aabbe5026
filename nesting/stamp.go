package nesting

import "sync/atomic"

// StampSource reports the current modification stamp of the trees a
// Classifier reads. The stamp must increase every time a tree-affecting edit
// happens; cached predicate results are only valid for the stamp they were
// computed under.
type StampSource interface {
	ModificationCount() uint64
}

// ModTracker is a process-wide monotonically increasing modification counter.
// The zero value is ready to use.
type ModTracker struct {
	n atomic.Uint64
}

// Bump records a tree-affecting edit and returns the new stamp.
func (t *ModTracker) Bump() uint64 {
	return t.n.Add(1)
}

// ModificationCount returns the current stamp.
func (t *ModTracker) ModificationCount() uint64 {
	return t.n.Load()
}

// FixedStamp is a StampSource for trees that never change, such as a parse
// of a file on disk that is discarded after use.
type FixedStamp uint64

// ModificationCount returns the fixed stamp.
func (s FixedStamp) ModificationCount() uint64 {
	return uint64(s)
}
