// Package store provides the durable SQLite adapter behind the engine's
// storage interfaces: the append-only per-document event log, the
// head-revision pointer with its compare-and-swap, snapshot blobs, and the
// bounded idempotency index.
//
// The compare-and-swap and the event append happen in a single SQLite
// transaction, which is the engine's sole serialization point: either the
// head pointer advances and the event is durably appended, or neither
// happens.
package store
