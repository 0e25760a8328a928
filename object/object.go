// ABOUTME: Object protocol every collector-managed value must implement
// ABOUTME: Header bookkeeping plus the Values/Pointers managed array types

// Package object defines the contract every collector-managed value
// must satisfy: a header the engine can stamp with liveness
// bookkeeping, a way to report a stable byte footprint, and a way to
// enumerate outgoing managed references.
//
// This package has no dependency on the collector itself, so any type
// anywhere can implement Object without importing the engine.
package object

// Header is the bookkeeping word every managed object carries. It
// records which of the collector's two dense live arrays currently
// owns the object (Color) and the object's slot within that array
// (Index).
//
// Header's fields are unexported; its accessor and mutator methods
// are exported but are collector-only, the same convention
// container/heap.Interface uses for Push/Pop. User code should never
// call SetSlot.
type Header struct {
	color int
	index int
	set   bool
}

// Color reports which dense live array currently owns the object.
// The zero Header (never inserted) reports Color() == 0, Index() == 0
// and Set() == false; callers must check Set before trusting Color or
// Index.
func (h *Header) Color() int { return h.color }

// Index reports the object's slot within sets[Color()].
func (h *Header) Index() int { return h.index }

// Set reports whether the header has ever been stamped by an insert.
func (h *Header) Set() bool { return h.set }

// SetSlot stamps the header with a new (color, index) pair. Only the
// collector's live registry calls this. During root scanning it never
// mutates a header that is not being moved.
func (h *Header) SetSlot(color, index int) {
	h.color = color
	h.index = index
	h.set = true
}

// Object is the capability set every collector-managed value must
// implement.
type Object interface {
	// Header returns a pointer to this object's bookkeeping word. The
	// pointer must be stable for the object's lifetime.
	Header() *Header

	// RetainedSize returns the total bytes the collector should
	// account against the heap budget for this object. Must be
	// constant across the object's lifetime.
	RetainedSize() uint64

	// Trace invokes ctx.Mark for every managed reference this object
	// currently holds. It may be a no-op for leaf objects, and it may
	// legitimately report the same target more than once.
	Trace(ctx TraceContext)

	// Destroy releases any non-managed resources this object owns
	// and is invoked exactly once, during sweep, by the collector. It
	// must never call back into the collector.
	Destroy()
}

// TraceContext is the narrow view of the collector context that
// Trace implementations are given. It exists to let this package stay
// free of any dependency on the collector's root package.
type TraceContext interface {
	// Mark records ptr as reachable. Calling Mark from anywhere other
	// than inside a Trace callback, or outside of a collection, is
	// harmless (it marks nothing) but is not the intended use; with the
	// collector's DebugChecks option set, a call outside a collection
	// is reported as a protocol violation by the next Collect.
	Mark(ptr Object)
}
