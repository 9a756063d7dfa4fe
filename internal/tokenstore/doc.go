// Package tokenstore persists per-merchant OAuth tokens in an external key-value store.
//
// Each merchant owns exactly one record, stored under a namespaced key and replaced
// wholesale on every write (last-write-wins, no history). Two backends are provided:
//   - Redis: production backend, enumerates merchants with a prefix scan
//   - Memory: in-process backend for development and tests
//
// The store is the sole holder of token state; callers read and write records but never
// cache them beyond a single operation.
package tokenstore
