// ABOUTME: Briggs-Torczon sparse-set live registry backing the mark-sweep engine
// ABOUTME: Two dense arrays flip live/trash roles in O(1) at the start of a collection

// Package liveset implements the Briggs–Torczon sparse-set live
// registry: two dense arrays of managed objects plus one header bit
// per object, letting the collector flip the entire live/trash
// relationship in O(1) at the start of a collection.
package liveset

import "github.com/prateek/minigc/object"

const minCapacity = 1024

// Registry holds the two dense arrays and their cursors. Outside a
// collection all live objects sit in sets[curSet]; sets[1-curSet] is
// logically empty. During a collection the roles invert.
type Registry struct {
	sets   [2][]object.Object
	nexts  [2]int
	curSet int
}

// New returns a Registry whose dense arrays start at the given
// capacity (rounded up to the minimum growth target if smaller).
func New(initialCapacity int) *Registry {
	size := initialCapacity
	if size < minCapacity {
		size = minCapacity
	}
	return &Registry{
		sets: [2][]object.Object{
			make([]object.Object, size),
			make([]object.Object, size),
		},
	}
}

// CurSet reports which dense array is currently the live side.
func (r *Registry) CurSet() int { return r.curSet }

// Len reports how many live entries sets[curSet] currently holds.
func (r *Registry) Len() int { return r.nexts[r.curSet] }

// At returns the entry at index i of the live side. It may be nil if
// the slot was cleared by RemoveFromTrash while still on the trash
// side, or nil once destroyed by DrainTrash.
func (r *Registry) At(i int) object.Object { return r.sets[r.curSet][i] }

// TrashLen reports how many entries the trash side holds.
func (r *Registry) TrashLen() int { return r.nexts[1-r.curSet] }

// EnsureCapacity grows both dense arrays if the live side is close to
// full. rescue is invoked (at most once) if growth would otherwise
// fail, then growth is retried exactly once before reporting failure.
//
// A slice-backed registry cannot actually fail to grow the way the
// original's raw allocator can, so rescue exists to preserve the
// documented contract (and gives Context a hook to exercise the same
// sweep-then-retry policy that OOM-simulating tests rely on) rather
// than to recover from a real allocation failure.
func (r *Registry) EnsureCapacity(rescue func() error) error {
	if r.nexts[r.curSet]+1 < len(r.sets[r.curSet]) {
		return nil
	}
	if err := r.grow(); err != nil {
		if rescue == nil {
			return err
		}
		if rescueErr := rescue(); rescueErr != nil {
			return rescueErr
		}
		if r.nexts[r.curSet]+1 < len(r.sets[r.curSet]) {
			return nil
		}
		return r.grow()
	}
	return nil
}

func (r *Registry) grow() error {
	oldSize := len(r.sets[0])
	newSize := oldSize + oldSize/2
	if newSize < minCapacity {
		newSize = minCapacity
	}
	for i := 0; i < 2; i++ {
		grown := make([]object.Object, newSize)
		copy(grown, r.sets[i])
		r.sets[i] = grown
	}
	return nil
}

// Insert appends obj to the live side and stamps its header with
// (curSet, that index). Capacity must already be ensured by the
// caller.
func (r *Registry) Insert(obj object.Object) {
	idx := r.nexts[r.curSet]
	r.nexts[r.curSet] = idx + 1
	r.sets[r.curSet][idx] = obj
	obj.Header().SetSlot(r.curSet, idx)
}

// Flip inverts curSet. The new live side must already be logically
// empty (its cursor at zero); the caller is responsible for having
// drained it via a prior DrainTrash.
func (r *Registry) Flip() {
	r.curSet = 1 - r.curSet
}

// RemoveFromTrash nulls the trash-side slot obj currently occupies,
// using the index recorded in its header. Called while promoting a
// survivor from trash to live during marking.
func (r *Registry) RemoveFromTrash(obj object.Object) {
	trash := 1 - r.curSet
	r.sets[trash][obj.Header().Index()] = nil
}

// DrainTrash invokes fn on every non-nil entry of the trash side, in
// dense-array order (applications must not rely on this order), and
// then resets the trash cursor to zero.
func (r *Registry) DrainTrash(fn func(object.Object)) {
	trash := 1 - r.curSet
	for i := 0; i < r.nexts[trash]; i++ {
		if obj := r.sets[trash][i]; obj != nil {
			fn(obj)
		}
		r.sets[trash][i] = nil
	}
	r.nexts[trash] = 0
}
