// Package interp executes a coroutine's bytecode: a flat byte-addressed
// fetch/decode/dispatch loop over the categories spec §4.5 names
// (constants, locals/params/closures, member/index access, stack
// manipulation, arithmetic, comparisons, aggregate construction, control
// flow, calls, and formatting), one coroutine at a time per the
// single-threaded cooperative execution model.
//
// Grounded on hive/edit's per-entity editor style (small, named dispatch
// methods operating on a shared cursor over a byte buffer, explicit error
// returns, no host-stack recursion for anything that can be expressed as
// an explicit loop) adapted from editing on-disk cells to executing
// in-memory instructions.
package interp
