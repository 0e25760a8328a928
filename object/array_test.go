// ABOUTME: Tests for Values[T] and Pointers[T]: tracing, retained size, and destroy semantics

package object

import "testing"

type fakeCloser struct {
	closed *bool
}

func (f fakeCloser) Close() error {
	*f.closed = true
	return nil
}

func TestValuesRetainedSizeIsFixedAtConstruction(t *testing.T) {
	a := NewValues[int](10)
	want := a.RetainedSize()
	a.SetAt(0, 12345)
	if got := a.RetainedSize(); got != want {
		t.Errorf("RetainedSize changed after mutation: got %d, want %d", got, want)
	}
}

func TestValuesTraceIsNoOp(t *testing.T) {
	a := NewValues[int](3)
	rec := &recordingTracer{}
	a.Trace(rec) // must not panic and must not call Mark
	if len(rec.marked) != 0 {
		t.Errorf("expected no marks from a plain-value array, got %d", len(rec.marked))
	}
}

func TestValuesDestroyClosesElements(t *testing.T) {
	var closed [3]bool
	a := NewValues[fakeCloser](3)
	for i := range closed {
		a.SetAt(i, fakeCloser{closed: &closed[i]})
	}
	a.Destroy()
	for i, c := range closed {
		if !c {
			t.Errorf("element %d was not closed", i)
		}
	}
}

type stubObject struct {
	hdr     Header
	size    uint64
	traced  int
	destroy int
}

func (s *stubObject) Header() *Header        { return &s.hdr }
func (s *stubObject) RetainedSize() uint64   { return s.size }
func (s *stubObject) Trace(ctx TraceContext) { s.traced++ }
func (s *stubObject) Destroy()               { s.destroy++ }

type recordingTracer struct {
	marked []Object
}

func (r *recordingTracer) Mark(o Object) { r.marked = append(r.marked, o) }

func TestPointersTraceMarksNonNilIncludingDuplicates(t *testing.T) {
	a := NewPointers[*stubObject](3)
	child := &stubObject{size: 8}
	a.SetAt(0, child)
	a.SetAt(2, child) // same target twice, deliberately
	// slot 1 stays nil

	rec := &recordingTracer{}
	a.Trace(rec)

	if len(rec.marked) != 2 {
		t.Fatalf("expected 2 marks (duplicates allowed), got %d", len(rec.marked))
	}
	for _, m := range rec.marked {
		if m != Object(child) {
			t.Errorf("marked wrong object: %v", m)
		}
	}
}

func TestPointersTraceSkipsNilSlots(t *testing.T) {
	a := NewPointers[*stubObject](3)
	a.SetAt(1, &stubObject{})
	rec := &recordingTracer{}
	a.Trace(rec)
	if len(rec.marked) != 1 {
		t.Fatalf("expected 1 mark, got %d", len(rec.marked))
	}
}

func TestPointersDestroyClearsSlotsNotPointees(t *testing.T) {
	a := NewPointers[*stubObject](2)
	child := &stubObject{}
	a.SetAt(0, child)
	a.Destroy()
	if a.At(0) != nil {
		t.Error("expected slot cleared after Destroy")
	}
	if child.destroy != 0 {
		t.Error("array Destroy must never destroy its pointees")
	}
}

func TestValuesLenAndAt(t *testing.T) {
	a := NewValues[string](2)
	a.SetAt(0, "x")
	a.SetAt(1, "y")
	if a.Len() != 2 {
		t.Fatalf("expected len 2, got %d", a.Len())
	}
	if a.At(0) != "x" || a.At(1) != "y" {
		t.Errorf("unexpected contents: %q %q", a.At(0), a.At(1))
	}
}
