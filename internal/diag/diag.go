// ABOUTME: Verbose-tracing diagnostics: one formatted line per collection start/end
// ABOUTME: Tracer wraps an io.Writer; a nil *Tracer makes every method a safe no-op

// Package diag formats the verbose-tracing diagnostics named as a
// configuration knob in the collector spec: two lines per collection,
// one at its start and one at its end, reporting live objects/bytes
// before and after the sweep and the new collection threshold.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/inhies/go-bytesize"
	"github.com/mattn/go-colorable"
)

// color escape codes, written into every diagnostic line whatever the
// sink.
const (
	cyan   = "\x1b[36m"
	yellow = "\x1b[33m"
	reset  = "\x1b[0m"
)

// Tracer writes human-readable collection diagnostics to a
// host-provided sink. A nil *Tracer is valid and every method on it
// is a no-op, so Context can hold one unconditionally.
type Tracer struct {
	w io.Writer
}

// New wraps sink for colorized diagnostic output. If sink is an
// *os.File, output is routed through go-colorable so ANSI color codes
// render correctly on Windows consoles as well as ANSI terminals;
// other writers (buffers, network sinks) receive the lines with their
// ANSI escape codes unchanged. No writer gets an escape-free variant.
func New(sink io.Writer) *Tracer {
	if sink == nil {
		return nil
	}
	if f, ok := sink.(*os.File); ok {
		return &Tracer{w: colorable.NewColorable(f)}
	}
	return &Tracer{w: sink}
}

// CollectionStart reports the live set immediately before a sweep.
func (t *Tracer) CollectionStart(liveObjects int, liveBytes uint64) {
	if t == nil {
		return
	}
	fmt.Fprintf(t.w, "%s[minigc] collecting: %d live objects, %s%s\n",
		cyan, liveObjects, bytesize.New(float64(liveBytes)), reset)
}

// CollectionEnd reports the outcome of a sweep: how many objects
// survived, how many were destroyed, and the new collection
// threshold.
func (t *Tracer) CollectionEnd(survivedObjects int, survivedBytes uint64, destroyed int, newThreshold uint64) {
	if t == nil {
		return
	}
	destroyedColor := cyan
	if destroyed > 0 {
		destroyedColor = yellow
	}
	fmt.Fprintf(t.w, "%s[minigc] swept: %d survived (%s)%s, %s%d destroyed%s, next threshold %s\n",
		cyan, survivedObjects, bytesize.New(float64(survivedBytes)), reset,
		destroyedColor, destroyed, reset,
		bytesize.New(float64(newThreshold)))
}
