// Package engine implements the command/revision core: command intake
// with an optimistic-concurrency commit protocol, deterministic event
// reduction over a pluggable applier registry, snapshot management, the
// catch-up service, and committed-event fan-out to subscribers.
//
// Many documents are processed fully in parallel; within a single
// document, commits are serialized by the storage layer's atomic
// compare-and-swap-and-append. The engine holds no cross-document locks.
package engine
