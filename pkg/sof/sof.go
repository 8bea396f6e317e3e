// Package sof holds the CLI-support types shared by cmd/sof and its
// debug/introspection siblings (cmd/sof-tokens, cmd/sof-parse, cmd/sof-trace):
// parsing the repeated `-D`/`--debug-opt key=value` flag into a DebugOptions
// value. Argument parsing itself is out of scope (spec.md §1), so this is
// deliberately thin — it does not decide how flags are registered, only what
// a debug-option string means once pulled off the command line.
//
// Grounded on original_source/sof-rs/src/cli.rs's DebugOption/LogLevel
// FromStr parsing, reimplemented with flag.Value instead of a derive macro.
package sof

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klfr/sof/pkg/engine"
)

// ErrSnapshotUnsupported is returned when a debug option requests
// export-snapshot: the snapshot file format is an explicit spec.md Non-goal,
// so the option is recognized and validated but never actually honored.
var ErrSnapshotUnsupported = errors.New("sof: export-snapshot is not supported (no snapshot format is specified)")

// DebugOptions accumulates every `-D key=value` flag seen on a command line.
// Later occurrences of the same key overwrite earlier ones, matching how
// repeated flags are normally treated by Go's flag package.
type DebugOptions struct {
	LogLevel     engine.LogLevel
	SnapshotPath string
	wantSnapshot bool
}

// String implements flag.Value; it is never parsed back, so it only needs to
// be readable.
func (d *DebugOptions) String() string {
	if d == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if d.LogLevel != engine.LogOff {
		parts = append(parts, "log="+logLevelName(d.LogLevel))
	}
	if d.wantSnapshot {
		parts = append(parts, "export-snapshot="+d.SnapshotPath)
	}
	return strings.Join(parts, ",")
}

// Set implements flag.Value, parsing one `-D key=value` occurrence. Register
// it with flag.Var(&opts, "D", ...) and flag.Var(&opts, "debug-opt", ...) so
// both the short and long spellings accumulate into the same DebugOptions.
func (d *DebugOptions) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("sof: invalid debug option %q, expected key=value", s)
	}
	switch key {
	case "log":
		level, err := parseLogLevel(value)
		if err != nil {
			return err
		}
		d.LogLevel = level
	case "export-snapshot":
		if value == "" {
			return fmt.Errorf("sof: invalid debug option %q: export-snapshot needs a target path", s)
		}
		d.SnapshotPath = value
		d.wantSnapshot = true
	default:
		return fmt.Errorf("sof: unknown debug option %q", key)
	}
	return nil
}

// ValidateSnapshot reports ErrSnapshotUnsupported if export-snapshot was
// requested; callers check this once flag parsing is done rather than
// failing mid-parse, so every other debug option still takes effect.
func (d *DebugOptions) ValidateSnapshot() error {
	if d.wantSnapshot {
		return fmt.Errorf("%w: requested path %q", ErrSnapshotUnsupported, d.SnapshotPath)
	}
	return nil
}

func parseLogLevel(s string) (engine.LogLevel, error) {
	switch s {
	case "off":
		return engine.LogOff, nil
	case "self-debug":
		return engine.LogSelfDebug, nil
	case "all-debug":
		return engine.LogAllDebug, nil
	case "trace":
		return engine.LogTrace, nil
	default:
		return engine.LogOff, fmt.Errorf("sof: invalid log level %q, expected off|self-debug|all-debug|trace", s)
	}
}

func logLevelName(l engine.LogLevel) string {
	switch l {
	case engine.LogSelfDebug:
		return "self-debug"
	case engine.LogAllDebug:
		return "all-debug"
	case engine.LogTrace:
		return "trace"
	default:
		return "off"
	}
}
