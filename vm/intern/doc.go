// Package intern implements the context-wide String and Symbol intern
// tables spec §3/§4.4 require: "two interned strings are identity-equal
// iff character-equal" and "symbols are always backed by interned
// strings". Grounded on hive/namecache's byte-keyed lookup table (minus
// its LRU eviction and sharding, which exist there for concurrent decode
// throughput the single-threaded mutator here does not need) and
// hive/index's name→entry map.
package intern
