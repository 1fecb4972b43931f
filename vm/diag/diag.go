// Package diag provides the context's optional diagnostics logger:
// silent by default, structured when enabled. Grounded on
// cmd/hiveexplorer/logger's Options/Init/package-level *slog.Logger
// pattern, adapted from one CLI tool's log-file lifecycle to one
// embeddable VM's opt-in tracing (spec's Non-goals exclude a metrics/
// observability surface, but ambient logging still follows the teacher's
// library, not a bare fmt.Fprintf).
package diag

import (
	"io"
	"log/slog"
	"os"
)

// Options configures the package-level logger. The zero value is
// silent: Enabled defaults to false, so a context that never calls Init
// pays nothing beyond a discard handler.
type Options struct {
	Enabled bool
	Level   slog.Level
	Output  io.Writer // defaults to os.Stderr when Enabled and nil
}

// L is the active logger, safe to call even before Init (writes to
// io.Discard until configured).
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// Init installs L per opts. Called once by the root context during
// construction (spec §OVERVIEW names no logging surface of its own; this
// is ambient wiring only, never on the bytecode-semantics hot path).
func Init(opts Options) {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	L = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: opts.Level}))
}

// GC reports a completed collection cycle (spec §4.6's Stats, surfaced
// for operators without making it part of the VM's semantics).
func GC(trigger string, collected, survivors int, newThreshold uintptr) {
	L.Info("gc", "trigger", trigger, "collected", collected, "survivors", survivors, "new_threshold", newThreshold)
}

// SchedulerStep reports one coroutine dispatch, useful when tracking
// down a scheduling starvation bug.
func SchedulerStep(coroutineID uint64, state string) {
	L.Debug("scheduler_step", "coroutine", coroutineID, "state", state)
}

// ModuleLoaded reports a module finishing resolution (spec §4.7's
// registry.ResolveModule).
func ModuleLoaded(name string) {
	L.Info("module_loaded", "module", name)
}

// Error reports a failure the host should be told about even with
// diagnostics otherwise quiet at Info level.
func Error(msg string, args ...any) {
	L.Error(msg, args...)
}
