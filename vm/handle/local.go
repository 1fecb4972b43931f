package handle

import "github.com/emberlang/ember/vm/value"

// Local is a scope-rooted handle: the GC walks every open Scope's locals
// as roots (spec §4.3 "locally rooted values"), so a Value stashed in a
// Local survives any collection triggered while the handle's Scope is
// open.
//
// A Local must not be used after its owning Scope has been closed.
type Local struct {
	v     value.Value
	scope *Scope
	next  *Local
	prev  *Local
}

// Get returns the rooted value.
func (l *Local) Get() value.Value { return l.v }

// Set replaces the rooted value in place, keeping the same root slot (so
// a collection that runs between Set calls still sees the latest value).
func (l *Local) Set(v value.Value) { l.v = v }

// Scope is a dynamic extent of local handles, opened for the lifetime of
// a native function call or interpreter helper and closed when that
// extent ends.
//
// Scopes nest: a native function that calls back into the interpreter
// opens a child scope, and closing it releases only the handles it
// opened, leaving the parent scope's handles rooted.
type Scope struct {
	parent     *Scope
	head, tail *Local
	closed     bool
}

// NewScope opens a new handle scope. Pass the enclosing scope, or nil for
// a top-level scope (e.g. one opened directly by the interpreter's frame
// loop).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent}
}

// Open roots v for the lifetime of the scope and returns a Local handle to
// it.
func (s *Scope) Open(v value.Value) *Local {
	if s.closed {
		panic("handle: Open called on a closed Scope")
	}
	l := &Local{v: v, scope: s}
	l.prev = s.tail
	if s.tail != nil {
		s.tail.next = l
	} else {
		s.head = l
	}
	s.tail = l
	return l
}

// Close retires every Local opened in this scope. It is idempotent: a
// second Close is a no-op, matching the tx.Manager convention that
// Commit without an active transaction does nothing.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.head, s.tail = nil, nil
}

// Walk calls f with every value currently rooted by this scope, in Open
// order. Used by the collector's mark phase (spec §4.6 "locals of scopes
// currently on the call stack").
func (s *Scope) Walk(f func(value.Value)) {
	for cur := s.head; cur != nil; cur = cur.next {
		f(cur.v)
	}
}

// Parent returns the enclosing scope, or nil at the top level.
func (s *Scope) Parent() *Scope { return s.parent }
