// ABOUTME: Tests for Tracer's nil-safety and its collection-start/end line formatting

package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithNilSinkReturnsNilTracer(t *testing.T) {
	tr := New(nil)
	if tr != nil {
		t.Fatal("expected nil Tracer for nil sink")
	}
	// Must be safe to call on the resulting nil pointer.
	tr.CollectionStart(0, 0)
	tr.CollectionEnd(0, 0, 0, 0)
}

func TestNewWithPlainWriterPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	if tr == nil {
		t.Fatal("expected non-nil Tracer for a non-nil sink")
	}
	tr.CollectionStart(3, 1024)
	if buf.Len() == 0 {
		t.Fatal("expected output written to sink")
	}
}

func TestCollectionStartReportsCounts(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	tr.CollectionStart(7, 2048)
	out := buf.String()
	if !strings.Contains(out, "7 live objects") {
		t.Errorf("expected live object count in output, got %q", out)
	}
	if !strings.Contains(out, "collecting") {
		t.Errorf("expected 'collecting' marker in output, got %q", out)
	}
}

func TestCollectionEndReportsSurvivedAndDestroyed(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	tr.CollectionEnd(5, 512, 2, 65536)
	out := buf.String()
	for _, want := range []string{"5 survived", "2 destroyed", "swept"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
}

func TestCollectionEndWithZeroDestroyedStillReports(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	tr.CollectionEnd(10, 100, 0, 65536)
	out := buf.String()
	if !strings.Contains(out, "0 destroyed") {
		t.Errorf("expected '0 destroyed' in output, got %q", out)
	}
}
