// Package gc implements spec §4.6's precise mark-and-sweep collector:
// a worklist-based mark phase over every root, a per-kind walk that
// visits outgoing Value references, and a sweep that finalizes and
// unlinks unmarked objects. Grounded on hive/walker's generic tree-walk
// traversal (the per-kind dispatch mirrors its cell-type switch) and
// hive/dirty's flush/reclaim bookkeeping style.
package gc
