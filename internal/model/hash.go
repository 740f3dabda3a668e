package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for hashed content. The version suffix allows a future
// algorithm migration without colliding with existing hashes.
const (
	DomainState = "tabula/state/v1"
	DomainEvent = "tabula/event/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateHash computes the canonical hash of a document state. Two states
// hash equal iff their canonical JSON is byte-identical, which is the
// replay-equivalence check used by verify and by tests.
func StateHash(state Object) (string, error) {
	canonical, err := MarshalCanonical(state)
	if err != nil {
		return "", fmt.Errorf("StateHash: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// MustStateHash is StateHash but panics on error.
// Use only in tests or when the state is known to be hashable.
func MustStateHash(state Object) string {
	h, err := StateHash(state)
	if err != nil {
		panic(err)
	}
	return h
}

// EventHash computes the canonical hash of a committed event's durable
// content. The commit timestamp is excluded: two logs that applied the
// same commands in the same order hash identically regardless of when
// they were written.
func EventHash(ev CommittedEvent) (string, error) {
	content := Object{
		"document_id": String(ev.DocumentID),
		"revision":    Int(ev.Revision),
		"command_id":  String(ev.CommandID),
		"op_kind":     String(ev.OpKind),
		"op_args":     ev.OpArgs,
		"actor":       String(ev.Actor.String()),
	}
	canonical, err := MarshalCanonical(content)
	if err != nil {
		return "", fmt.Errorf("EventHash: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// LogHash digests a contiguous log segment: the per-event hashes in
// revision order, hashed again under the event domain. Two logs digest
// equal iff they committed the same commands at the same revisions.
func LogHash(events []CommittedEvent) (string, error) {
	var buf bytes.Buffer
	for _, ev := range events {
		h, err := EventHash(ev)
		if err != nil {
			return "", err
		}
		buf.WriteString(h)
	}
	return hashWithDomain(DomainEvent, buf.Bytes()), nil
}
