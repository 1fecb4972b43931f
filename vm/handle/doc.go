// Package handle implements spec §4.3's handle discipline: Scope-scoped
// local handles that root a Value for the dynamic extent of a native call,
// and Global roots that persist until explicitly released.
//
// The open/close protocol mirrors hive/tx's Begin/Commit discipline (a
// Scope.Open marks handles live the way Begin marks a transaction active;
// Scope.Close retires them the way Commit finalizes one), and the
// recommended `defer scope.Close()` usage mirrors the `defer
// childHive.Close()` convention used throughout package link. Both Scope
// and GlobalTable link their entries into an intrusive doubly linked list
// for O(1) register/unregister, the same technique package heap uses for
// its object list.
package handle
