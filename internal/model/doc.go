// Package model defines the data model shared by the revision engine:
// the constrained value types used for operation arguments and document
// state, canonical JSON serialization for deterministic state blobs,
// actor identities, command envelopes, and committed events.
//
// Document state is opaque to the engine. The engine only threads Value
// trees through appliers and serializes them canonically for snapshots
// and state hashing, which is what makes snapshots disposable: the same
// event sequence always reduces to byte-identical state.
package model
