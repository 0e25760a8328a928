// ABOUTME: Context, the collector engine: Allocate, Close, and the heap-budget bookkeeping
// ABOUTME: One Context per logical heap, pinned to a single goroutine

// Package minigc implements a per-thread, non-moving, mark-sweep
// garbage collector for embedding inside a host Go program. It lets
// application code allocate objects whose inter-object references may
// form arbitrary, including cyclic, graphs; hold a small number of
// root handles; and periodically reclaim everything unreachable from
// those roots.
//
// Context is not safe for concurrent use. A Context and everything it
// owns is meant to be pinned to one goroutine; there is no internal
// locking and none is planned. See the concurrency notes in
// SPEC_FULL.md for the reasoning.
package minigc

import (
	"fmt"
	"reflect"

	"github.com/prateek/minigc/config"
	"github.com/prateek/minigc/internal/diag"
	"github.com/prateek/minigc/internal/liveset"
	"github.com/prateek/minigc/internal/rootset"
	"github.com/prateek/minigc/object"
)

// Version identifies this module's release.
const Version = "0.1.0-dev"

// Context owns the live-object registry, the root registry, and the
// heap-budget bookkeeping that decides when to collect. There is
// exactly one Context per logical heap.
type Context struct {
	cfg    config.Config
	live   *liveset.Registry
	roots  *rootset.Registry
	tracer *diag.Tracer

	allocBytes  uint64
	gcMarkBytes uint64
	collecting  bool

	// debugSizes, protocolViolation, and outOfBandViolation back the
	// two Config.DebugChecks checks in collect.go's Mark. All three are
	// nil/zero and untouched when DebugChecks is off.
	//
	// protocolViolation is scoped to a single Collect call: it is
	// cleared at that call's entry and read at its return. Mark called
	// outside of any collection cannot use it, since collecting is
	// false at that point and the field would just be wiped by the
	// next Collect before ever being returned. outOfBandViolation is
	// the latch for that case instead: Mark sets it directly, Collect
	// captures and clears it at its own entry (before it can be wiped
	// again by a still-later call) and folds it into its return.
	debugSizes         map[object.Object]uint64
	protocolViolation  error
	outOfBandViolation error
}

// New creates a Context. Zero-valued fields of cfg are filled with
// the defaults from spec §6 (see config.Config.WithDefaults).
func New(cfg config.Config) *Context {
	cfg = cfg.WithDefaults()
	ctx := &Context{
		cfg:         cfg,
		live:        liveset.New(cfg.InitialLiveCapacity),
		roots:       rootset.New(cfg.InitialRootCapacity),
		gcMarkBytes: cfg.InitialThreshold,
	}
	if cfg.Verbose {
		ctx.tracer = diag.New(cfg.TraceSink)
	}
	return ctx
}

// AllocBytes reports the sum of RetainedSize over every object
// currently in the live set. Exposed for tests that check the
// retained-size-consistency invariant, and for hosts that want to
// watch heap pressure without waiting for verbose tracing.
func (ctx *Context) AllocBytes() uint64 { return ctx.allocBytes }

// Threshold reports gcMarkBytes, the current collection trigger.
func (ctx *Context) Threshold() uint64 { return ctx.gcMarkBytes }

// LiveCount reports how many objects are currently in the live set.
func (ctx *Context) LiveCount() int { return ctx.live.Len() }

// RootCount reports the root registry's current cursor position.
// Exposed for tests and diagnostics that check compaction behavior;
// it is not itself the number of live roots when holes are pending a
// Compact (see internal/rootset).
func (ctx *Context) RootCount() int { return ctx.roots.NextRoot() }

// RootCapacity reports the root registry's current dense-array size.
func (ctx *Context) RootCapacity() int { return ctx.roots.Cap() }

func (ctx *Context) rescueCollect() error {
	ctx.Collect()
	return nil
}

// Allocate constructs a T via construct, roots it, and inserts it
// into the live set, per spec §4.4.1:
//
//  1. If the heap budget would be exceeded, collect first.
//  2. Ensure the live registry has room.
//  3. Reserve a root slot before construction.
//  4. Construct; on failure, collect once and retry construction
//     exactly once before reporting ErrOutOfMemory.
//  5. Account RetainedSize into the heap budget.
//  6. Insert into the live set and stamp the header.
//  7. Point the reserved root at the new object.
func Allocate[T object.Object](ctx *Context, construct func() (T, error)) (*Root[T], error) {
	if ctx.allocBytes+estimatedSize[T]() > ctx.gcMarkBytes {
		ctx.Collect()
	}
	if err := ctx.live.EnsureCapacity(ctx.rescueCollect); err != nil {
		return nil, fmt.Errorf("minigc: grow live set: %w", ErrOutOfMemory)
	}

	root, err := newRoot[T](ctx)
	if err != nil {
		return nil, fmt.Errorf("minigc: reserve root: %w", err)
	}

	obj, err := construct()
	if err != nil {
		ctx.Collect()
		obj, err = construct()
		if err != nil {
			root.Close()
			return nil, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
		}
	}

	size := obj.RetainedSize()
	ctx.allocBytes += size
	ctx.live.Insert(obj)
	root.Set(obj)
	return root, nil
}

// estimatedSize returns a static approximation of T's base size for
// the collection-trigger heuristic in step 1 of Allocate. It is
// intentionally approximate: spec §4.4.1 is explicit that the
// authoritative size comes from RetainedSize after construction and
// that this check is a heuristic, not a precondition. Reflection is
// used only here, and only on a nil *T, to read the pointee's static
// size without needing a constructed value.
func estimatedSize[T object.Object]() uint64 {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Ptr {
		return 0
	}
	return uint64(t.Elem().Size())
}

// Close tears the context down per spec §4.4.4: verify no root slots
// are still registered, run one final collection (which, with no
// roots, destroys everything), and release the dense arrays. A
// non-nil error means roots outlived the context; teardown still
// completes best-effort.
func (ctx *Context) Close() error {
	leaked := ctx.roots.AllLive()

	ctx.Collect()

	ctx.live = nil
	ctx.roots = nil

	if len(leaked) > 0 {
		return fmt.Errorf("%w: %d live roots at teardown", ErrRootsOutlivingContext, len(leaked))
	}
	return nil
}
