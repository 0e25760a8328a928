// ABOUTME: Tuning knobs for the collector: capacities, threshold, tracing, debug checks
// ABOUTME: Config plus Default/WithDefaults/Load for building one from YAML

// Package config holds the collector's recognized tuning knobs (spec
// §6): initial live-set capacity, initial root-set capacity, initial
// collection threshold, and verbose tracing.
package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

// Config is the set of options a host program can pass to
// minigc.New. The zero Config is not valid on its own, call Default
// or Load to get a usable value; New treats a zero Config as
// "use defaults" for any field left at its zero value.
type Config struct {
	// InitialLiveCapacity is the first growth target for the live
	// registry's dense arrays. Default 1024.
	InitialLiveCapacity int `yaml:"initial_live_capacity"`

	// InitialRootCapacity is the first growth target for the root
	// registry after compaction. Default 256.
	InitialRootCapacity int `yaml:"initial_root_capacity"`

	// InitialThreshold is gcMarkBytes before the first collection.
	// Default 64 KiB.
	InitialThreshold uint64 `yaml:"initial_threshold_bytes"`

	// Verbose, when true and TraceSink is non-nil, makes the
	// collector emit two diagnostic lines to TraceSink per collection,
	// one at its start and one at its end.
	Verbose bool `yaml:"verbose"`

	// TraceSink is the host-provided sink verbose tracing writes to.
	// Not serializable, so it is never populated by Load. Hosts that
	// load tuning from YAML still set this field themselves in code.
	TraceSink io.Writer `yaml:"-"`

	// DebugChecks enables the optional protocol checks from spec §7:
	// Mark reached outside of an active collection (which only happens
	// if user code calls Trace or Mark directly) and RetainedSize
	// disagreeing with what the same object reported earlier. Errors
	// surface through Collect's return value, wrapping
	// minigc.ErrProtocolViolation. Off by default since the size check
	// keeps a per-object size cache alive for the life of the context.
	DebugChecks bool `yaml:"debug_checks"`
}

const (
	defaultLiveCapacity = 1024
	defaultRootCapacity = 256
	defaultThreshold    = 64 * 1024
)

// Default returns the configuration named in spec §6: 1024-slot
// initial live set, 256-slot initial root set, 64 KiB threshold,
// tracing off.
func Default() Config {
	return Config{
		InitialLiveCapacity: defaultLiveCapacity,
		InitialRootCapacity: defaultRootCapacity,
		InitialThreshold:    defaultThreshold,
	}
}

// WithDefaults fills any zero-valued numeric field of cfg with the
// default named in spec §6 and returns the result. Verbose, TraceSink
// and DebugChecks are left as given, since false/nil are meaningful
// values for them, not "unset".
func (cfg Config) WithDefaults() Config {
	out := cfg
	if out.InitialLiveCapacity <= 0 {
		out.InitialLiveCapacity = defaultLiveCapacity
	}
	if out.InitialRootCapacity <= 0 {
		out.InitialRootCapacity = defaultRootCapacity
	}
	if out.InitialThreshold == 0 {
		out.InitialThreshold = defaultThreshold
	}
	return out
}

// Load parses a Config from YAML, for hosts that keep collector
// tuning in a config file alongside their other service settings.
// Fields absent from the document keep their Default() values;
// TraceSink is never populated this way and must be set by the caller
// afterward if verbose tracing is wanted.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg.WithDefaults(), nil
}
