// ABOUTME: Root[T], the scoped handle a host uses to keep an object reachable
// ABOUTME: Always held as *Root[T]; Clone is the only path to a second, independent handle

package minigc

import (
	"github.com/prateek/minigc/internal/rootset"
	"github.com/prateek/minigc/object"
)

// Root is a scoped handle that keeps a managed object reachable. It
// does not own the object it protects, it only prevents reclamation.
//
// A Root[T] is always obtained as *Root[T], from Allocate or from an
// existing root's Clone, and is never constructed as a bare value
// outside this package. That is deliberate: per spec §6, "copyable"
// means each independent handle registers its own slot, not that two
// Go values may alias one slot. Sharing a *Root[T] pointer (`r2 :=
// r1`) is safe and free, because both variables still name the same
// single handle and its single slot; obtaining a second, independent
// handle over the same target requires calling Clone explicitly.
type Root[T object.Object] struct {
	ctx   *Context
	entry *rootset.Entry
}

func newRoot[T object.Object](ctx *Context) (*Root[T], error) {
	e := &rootset.Entry{}
	if err := ctx.roots.Register(e, ctx.rescueCollect); err != nil {
		return nil, err
	}
	return &Root[T]{ctx: ctx, entry: e}, nil
}

// Get returns the object currently protected by r, or the zero value
// of T if r protects nothing (a fresh or already-closed root).
func (r *Root[T]) Get() T {
	var zero T
	if r == nil || r.entry == nil || r.entry.Ptr == nil {
		return zero
	}
	obj, ok := r.entry.Ptr.(T)
	if !ok {
		return zero
	}
	return obj
}

// Set retargets r to protect v, in place, without touching the root
// registry. This is the answer to the original's ambiguous
// copy-assignment: retargeting an existing root and obtaining a new
// one (Clone) are separate, explicit operations.
func (r *Root[T]) Set(v T) {
	if r == nil || r.entry == nil {
		return
	}
	if any(v) == nil {
		r.entry.Ptr = nil
		return
	}
	r.entry.Ptr = v
}

// Clone registers a fresh slot in the same context and copies the
// current target into it, matching the original's copy-constructor
// (which reinitializes from the source context and copies ptr). This
// is the only way to obtain a second, independent handle over the
// same target: the resulting *Root[T] has its own slot and can be
// closed without affecting r.
func (r *Root[T]) Clone() (*Root[T], error) {
	if r == nil || r.entry == nil {
		return nil, nil
	}
	fresh, err := newRoot[T](r.ctx)
	if err != nil {
		return nil, err
	}
	fresh.entry.Ptr = r.entry.Ptr
	return fresh, nil
}

// Valid reports whether r currently occupies a registered slot.
func (r *Root[T]) Valid() bool { return r != nil && r.entry != nil }

// Close deregisters r's slot, nulling it in the dense root array.
// Close is idempotent: closing an already-closed or nil *Root[T] is a
// no-op. Use defer root.Close() at the point of allocation.
func (r *Root[T]) Close() {
	if r == nil || r.entry == nil {
		return
	}
	r.ctx.roots.Unregister(r.entry.Idx())
	r.entry = nil
}
