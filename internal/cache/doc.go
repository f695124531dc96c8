// Package cache implements the process-wide keyed store backing the document
// data-access bindings. Entries are addressed by querykey tuples and carry a
// fetch timestamp plus an invalidation mark, so staleness can be judged per
// binding TTL without destroying the cached value. The package also hosts the
// in-flight request table that guarantees at most one remote fetch per key.
// Binding code depends on this package to read, reconcile and invalidate
// entries without duplicating bookkeeping logic.
package cache
