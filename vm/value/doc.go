// Package value implements spec §4.1: the uniform tagged Value
// representation, small-integer inlining, and the handful of predicates
// (type_of, is_null, is_small_int, heap_ptr, small_int_value,
// make_small_int) that do not require visibility into a specific object
// kind's payload.
//
// Go's collector does not allow a raw integer to alias a live pointer
// safely, so Value cannot bit-pack a heap pointer into a machine word the
// way spec §3 describes; instead Value carries a real *heap.Header field
// for the heap case and a small discriminant for the two immediate cases
// (null, small integer). This preserves every externally observable
// invariant spec §3/§4.1 require (identity, range, hashing stability)
// while staying inside safe Go. The full Equal/Hash dispatch that needs
// to see concrete object payloads (String bytes, boxed Integer/Float)
// lives in package objects, which can
// see those concrete types without value importing them back.
package value
