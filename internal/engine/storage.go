package engine

import (
	"context"
	"time"

	"github.com/roach88/tabula/internal/model"
)

// Log is the durable event log plus the head-revision pointer it is
// serialized against. The engine is backend-agnostic; the SQLite adapter
// in internal/store is the in-process durable implementation.
type Log interface {
	// EnsureDocument creates the document if it does not exist.
	EnsureDocument(ctx context.Context, id, scope string, now time.Time) error

	// GetDocument returns the document row, or store.ErrNotFound.
	GetDocument(ctx context.Context, id string) (model.Document, error)

	// Head returns the current head revision.
	Head(ctx context.Context, documentID string) (int64, error)

	// Append atomically advances the head from ev.Revision-1 to
	// ev.Revision and appends the event. Both succeed or neither does.
	// On a CAS miss returns committed=false and the current head.
	Append(ctx context.Context, ev model.CommittedEvent, idempotencyKey string) (committed bool, head int64, err error)

	// Events returns events with after < revision <= through (through <= 0
	// means unbounded), ordered by revision ascending.
	Events(ctx context.Context, documentID string, after, through int64) ([]model.CommittedEvent, error)

	// LookupIdempotency returns the revision committed under a key, if the
	// key is still in the bounded index.
	LookupIdempotency(ctx context.Context, documentID, key string) (int64, bool, error)

	// PruneIdempotency drops index entries at or below a revision.
	PruneIdempotency(ctx context.Context, documentID string, throughRevision int64) error
}

// SnapshotStore holds materialized state blobs. Snapshots are disposable:
// the log remains the ground truth.
type SnapshotStore interface {
	// WriteSnapshot persists a snapshot, write-once per revision.
	WriteSnapshot(ctx context.Context, snap model.Snapshot) (inserted bool, err error)

	// LatestSnapshot returns the most recent snapshot, if any.
	LatestSnapshot(ctx context.Context, documentID string) (model.Snapshot, bool, error)

	// SnapshotAtOrBefore returns the most recent snapshot not newer than
	// maxRevision (negative maxRevision means no bound).
	SnapshotAtOrBefore(ctx context.Context, documentID string, maxRevision int64) (model.Snapshot, bool, error)

	// PruneSnapshots removes snapshots older than keepRevision.
	PruneSnapshots(ctx context.Context, documentID string, keepRevision int64) error
}

// Storage is the full storage surface the engine needs. The SQLite
// *store.Store satisfies it.
type Storage interface {
	Log
	SnapshotStore
}
