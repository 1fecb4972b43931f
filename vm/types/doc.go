// Package types implements the runtime's internal type descriptors: one
// per object kind, carrying the method table used by the interpreter's
// method-dispatch protocol (spec §4.5 "Method dispatch").
//
// Every heap object's header (see package heap) points at exactly one
// *Type for its whole lifetime; type_of(v) is simply a header read. This
// mirrors the teacher's pkg/types package, which plays the analogous role
// of mapping a Windows Registry value's numeric REG_* type to decode/
// validation behavior (pkg/types/regtype_test.go, pkg/types/api.go): a
// small, closed table of kind descriptors consulted on every access.
package types
