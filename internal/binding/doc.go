// Package binding ties each remote document operation to its cache behavior:
// read bindings consult the shared store under a querykey and only hit the
// network when the entry is missing or stale, write bindings always call the
// remote service and reconcile the cache on success only, and the render
// utility bindings bypass the cache entirely. Failure semantics are uniform:
// remote errors propagate unchanged and never leave the cache half-updated.
package binding
