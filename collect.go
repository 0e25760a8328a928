// ABOUTME: Collect, the mark-sweep cycle: flip, mark roots, mark transitively, sweep, re-threshold
// ABOUTME: Mark, the reachability callback objects' Trace methods and root scanning both call

package minigc

import (
	"fmt"

	"github.com/prateek/minigc/internal/rootset"
	"github.com/prateek/minigc/object"
)

// Collect runs an immediate, synchronous, stop-the-world collection.
// A re-entrant call (one made from inside a Trace callback that,
// against protocol, tries to force a collection) is a silent no-op.
// See spec §4.4.2's re-entrancy guard.
//
// Algorithm, per spec §4.4.2:
//
//  1. Flip: the previously-live side becomes the trash side.
//  2. Mark every rooted object.
//  3. Walk the new live side index-wise, re-reading its length on
//     every step, so that objects marked reachable mid-walk (because
//     something already-live traces to them) are themselves walked.
//  4. Sweep: destroy whatever is still on the trash side.
//  5. Re-threshold: decay gcMarkBytes toward 2x the new live-byte
//     total rather than snapping to it, so a temporary dip in live
//     bytes doesn't trigger a burst of frequent collections.
//
// The returned error is always nil unless Config.DebugChecks is set,
// in which case it reports the first §7 protocol violation Mark
// caught (see errors.go). That violation may have been latched by a
// Mark call outside of this collection entirely (Mark invoked
// directly by user code, between collections) rather than by
// something seen during this pass; either way it is reported on the
// next Collect call to actually run, since that is the first point a
// caller is listening. Callers that don't run with DebugChecks on can
// ignore the return value.
func (ctx *Context) Collect() error {
	if ctx.collecting {
		return nil
	}

	outOfBand := ctx.outOfBandViolation
	ctx.outOfBandViolation = nil

	ctx.collecting = true
	ctx.protocolViolation = nil

	if ctx.tracer != nil {
		ctx.tracer.CollectionStart(ctx.live.Len(), ctx.allocBytes)
	}

	ctx.allocBytes = 0
	ctx.live.Flip()

	ctx.markRoots()
	ctx.markTransitively()

	destroyed := 0
	ctx.live.DrainTrash(func(obj object.Object) {
		obj.Destroy()
		destroyed++
	})

	ctx.rethreshold()

	if ctx.tracer != nil {
		ctx.tracer.CollectionEnd(ctx.live.Len(), ctx.allocBytes, destroyed, ctx.gcMarkBytes)
	}

	ctx.collecting = false

	if outOfBand != nil {
		return outOfBand
	}
	return ctx.protocolViolation
}

func (ctx *Context) markRoots() {
	ctx.roots.IterLive(func(e *rootset.Entry) {
		if e.Ptr != nil {
			ctx.Mark(e.Ptr)
		}
	})
}

func (ctx *Context) markTransitively() {
	for i := 0; i < ctx.live.Len(); i++ {
		if obj := ctx.live.At(i); obj != nil {
			obj.Trace(ctx)
		}
	}
}

func (ctx *Context) rethreshold() {
	newMax := ctx.allocBytes * 2
	if newMax == 0 {
		newMax = minThreshold
	}
	if ctx.gcMarkBytes > newMax {
		ctx.gcMarkBytes = (ctx.gcMarkBytes + newMax) / 2
	} else {
		ctx.gcMarkBytes = newMax
	}
}

const minThreshold = 64 * 1024

// Mark records ptr as reachable. It is called by the collector while
// scanning roots and by objects' Trace methods while being walked; it
// is a no-op outside of an active collection and for a nil ptr, per
// spec §4.4.3.
//
// With Config.DebugChecks set, Mark also backs two of the three §7
// protocol checks: a call arriving while no collection is running can
// only mean Trace (or Mark itself) was invoked directly by user code,
// and a RetainedSize that disagrees with what the same object
// reported the last time it was marked violates the "constant across
// the object's lifetime" contract in object.Object's doc comment. The
// first case is latched into ctx.outOfBandViolation, since it happens
// by definition outside any Collect call that could return it; the
// next Collect call reports it. The second is set directly into
// ctx.protocolViolation and reported by the Collect call already in
// progress.
func (ctx *Context) Mark(ptr object.Object) {
	if ptr == nil {
		return
	}
	if !ctx.collecting {
		if ctx.cfg.DebugChecks && ctx.outOfBandViolation == nil {
			ctx.outOfBandViolation = fmt.Errorf("%w: Mark called outside a collection", ErrProtocolViolation)
		}
		return
	}
	hdr := ptr.Header()
	if hdr.Set() && hdr.Color() == ctx.live.CurSet() {
		return
	}
	size := ptr.RetainedSize()
	if ctx.cfg.DebugChecks {
		if want, ok := ctx.debugSizes[ptr]; ok && want != size {
			if ctx.protocolViolation == nil {
				ctx.protocolViolation = fmt.Errorf("%w: RetainedSize changed from %d to %d for a live object", ErrProtocolViolation, want, size)
			}
		}
	}
	if hdr.Set() {
		ctx.live.RemoveFromTrash(ptr)
	}
	if err := ctx.live.EnsureCapacity(ctx.rescueCollect); err != nil {
		// Growth cannot fail against a slice-backed registry; this
		// only trips if a future host swaps in a capacity-limited
		// allocator underneath liveset.Registry.
		panic(err)
	}
	ctx.live.Insert(ptr)
	ctx.allocBytes += size
	if ctx.cfg.DebugChecks {
		if ctx.debugSizes == nil {
			ctx.debugSizes = make(map[object.Object]uint64)
		}
		ctx.debugSizes[ptr] = size
	}
}
