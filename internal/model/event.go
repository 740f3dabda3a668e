package model

import (
	"fmt"
	"time"
)

// CommandEnvelope is a caller's proposed mutation. It is validated and
// consumed by command intake: converted to a CommittedEvent on success,
// discarded on rejection. Only its idempotency key outlives a commit, in
// the bounded dedup index.
type CommandEnvelope struct {
	CommandID      string    `json:"command_id"`      // Caller-supplied, used for idempotency
	DocumentID     string    `json:"document_id"`
	BaseRevision   int64     `json:"base_revision"`   // Revision the caller believes is current
	IdempotencyKey string    `json:"idempotency_key"`
	Actor          Actor     `json:"actor"`
	OpKind         string    `json:"op_kind"`
	OpArgs         Object    `json:"op_args"`         // Interpreted only by the applier registry
	SubmittedAt    time.Time `json:"submitted_at"`
}

// Validate checks the structural requirements before intake touches any
// store. Operation-kind existence is checked separately against the
// registry.
func (c CommandEnvelope) Validate() error {
	if c.CommandID == "" {
		return fmt.Errorf("command_id is required")
	}
	if c.DocumentID == "" {
		return fmt.Errorf("document_id is required")
	}
	if c.BaseRevision < 0 {
		return fmt.Errorf("base_revision must be non-negative, got %d", c.BaseRevision)
	}
	if c.IdempotencyKey == "" {
		return fmt.Errorf("idempotency_key is required")
	}
	if c.OpKind == "" {
		return fmt.Errorf("op_kind is required")
	}
	if err := c.Actor.Validate(); err != nil {
		return fmt.Errorf("actor: %w", err)
	}
	return nil
}

// CommittedEvent is the immutable, durable record of one applied command.
// Owned exclusively by the event log; never mutated after append.
type CommittedEvent struct {
	DocumentID  string    `json:"document_id"`
	Revision    int64     `json:"revision"` // base_revision + 1 of the admitted command
	CommandID   string    `json:"command_id"`
	OpKind      string    `json:"op_kind"`
	OpArgs      Object    `json:"op_args"`
	Actor       Actor     `json:"actor"`
	CommittedAt time.Time `json:"committed_at"`
}

// Snapshot is a materialized document state at a specific revision.
// Disposable and regenerable from the log at any time - losing snapshots
// costs replay time, never correctness.
type Snapshot struct {
	DocumentID string    `json:"document_id"`
	Revision   int64     `json:"revision"`
	State      Object    `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
}

// Document describes one independently serialized unit of collaboration.
// HeadRevision equals the revision of the most recently committed event,
// or 0 if none.
type Document struct {
	ID           string    `json:"id"`
	Scope        string    `json:"scope"` // Opaque tenant/workspace key
	HeadRevision int64     `json:"head_revision"`
	CreatedAt    time.Time `json:"created_at"`
}
