// Package heap implements spec §4.2: untyped object allocation, the
// intrusive object list the collector sweeps, and size accounting used to
// decide when an Automatic collection trigger fires (spec §4.6).
//
// Every heap object is a Go allocation prefixed conceptually by a Header
// (spec §3 "Header"); because Go's collector does not allow objects to be
// addressed by raw, untracked pointers, Header is a real Go struct embedded
// by value at the front of each concrete object type in package objects,
// and the intrusive list is built from ordinary *Header fields. Go's own
// collector keeps the underlying memory alive for as long as any Header is
// reachable from the object list; our Sweep drops the list's reference to
// an unmarked Header so the host collector can reclaim it on its own
// schedule, while still making the bookkeeping (allocated-object counts,
// finalizer ordering) match spec precisely.
//
// Grounded on hive/alloc (segregated free-list cell allocator): where that
// allocator manages offsets into a mapped hive file, this one manages Go
// pointers into Go's heap, but keeps the same shape — a single entry point
// (Allocate / Alloc), an intrusive accounting structure, and a pluggable
// growth trigger (GrowByPages there, the collector's Automatic trigger
// here).
package heap
