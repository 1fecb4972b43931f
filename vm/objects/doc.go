// Package objects implements the concrete heap object kinds listed in
// spec §3/§4.4: String, Symbol, Tuple, Array, HashTable, Set, Record,
// RecordTemplate, BytecodeCode, FunctionTemplate, ClosureContext,
// Function, BoundMethod, NativeFunction, NativeObject, Module,
// UnresolvedImport, Coroutine, CoroutineStack, Iterator, and
// StringBuilder.
//
// Every concrete kind embeds heap.Header by value as its first field (the
// convention package heap's doc comment describes), so a *Concrete can
// always be viewed as a *heap.Header for generic bookkeeping by package
// gc. This mirrors the layered-cell design of hive/subkeys, where lf.go,
// lh.go and li.go each define a concrete leaf-format struct sharing a
// common cell prefix read by the generic walker.
//
// Equal and Hash live here rather than in package value because they need
// to see concrete payloads (String bytes, boxed number values) that value
// deliberately does not import, to avoid an objects↔value import cycle.
// Tuple, Record, Array and every other kind compare by identity.
package objects
