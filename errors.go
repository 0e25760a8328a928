// ABOUTME: Sentinel errors returned or wrapped by the collector's public API
// ABOUTME: Match with errors.Is; detail comes from the wrapping fmt.Errorf call site

package minigc

import "errors"

// ErrOutOfMemory is reported when an allocation (of a user object or
// of the collector's own bookkeeping arrays) fails both before and
// after a rescue sweep. The context remains usable afterward; nothing
// already tracked is affected.
var ErrOutOfMemory = errors.New("minigc: out of memory")

// ErrRootsOutlivingContext is reported by Close when root handles are
// still registered at teardown. Teardown continues best-effort: a
// final collection still runs and both dense arrays are still
// released.
var ErrRootsOutlivingContext = errors.New("minigc: roots outliving context")

// ErrProtocolViolation is reported only when Config.DebugChecks is
// set, wrapped with detail by Collect's return value. Two cases are
// caught, both inside Mark (see collect.go): Mark reached outside of
// an active collection, which can only happen if user code invoked
// Trace or Mark directly instead of going through Collect, and
// RetainedSize returning a value that disagrees with what the same
// object reported the last time it was marked.
var ErrProtocolViolation = errors.New("minigc: protocol violation")
