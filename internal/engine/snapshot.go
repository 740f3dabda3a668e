package engine

import (
	"fmt"
	"log/slog"

	"context"

	"github.com/roach88/tabula/internal/model"
)

// Snapshot materializes the current document state into durable storage
// and prunes superseded snapshots. Returns the snapshot that now covers
// the document, which may be a pre-existing one if no events were
// committed since.
//
// Snapshotting reads a consistent prefix of the log as of the head it
// observes and never blocks writers: events committing concurrently are
// simply not reflected and a later snapshot supersedes this one. Snapshots
// are write-once per revision, so concurrent attempts at the same or a
// lower revision are no-ops.
func (e *Engine) Snapshot(ctx context.Context, documentID string) (model.Snapshot, error) {
	head, err := e.storage.Head(ctx, documentID)
	if err != nil {
		return model.Snapshot{}, storeError(documentID, err, false)
	}

	if head == 0 {
		// A snapshot is never taken at a revision with no committed event.
		return model.Snapshot{}, &EngineError{
			Code:       ErrCodeInvalidRequest,
			Message:    "document has no committed events to snapshot",
			DocumentID: documentID,
		}
	}

	latest, ok, err := e.storage.LatestSnapshot(ctx, documentID)
	if err != nil {
		return model.Snapshot{}, storeError(documentID, err, false)
	}
	if ok && latest.Revision >= head {
		// Nothing new to materialize since the last snapshot.
		return latest, nil
	}

	base := model.Object{}
	var baseRev int64
	if ok {
		base = latest.State
		baseRev = latest.Revision
	}

	tail, err := e.storage.Events(ctx, documentID, baseRev, head)
	if err != nil {
		return model.Snapshot{}, storeError(documentID, err, false)
	}

	state, err := Reduce(e.registry, base, baseRev, tail)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("snapshot %s: %w", documentID, err)
	}

	snap := model.Snapshot{
		DocumentID: documentID,
		Revision:   head,
		State:      state,
		CreatedAt:  e.clock.Now(),
	}

	inserted, err := e.storage.WriteSnapshot(ctx, snap)
	if err != nil {
		return model.Snapshot{}, storeError(documentID, err, false)
	}

	if inserted {
		slog.Info("snapshot written", "document", documentID, "revision", head)

		// Keep at least the newest snapshot; older ones are redundant
		// once a newer one exists, the log being the ground truth.
		if err := e.storage.PruneSnapshots(ctx, documentID, head); err != nil {
			slog.Warn("snapshot prune failed", "document", documentID, "error", err)
		}
	}

	return snap, nil
}
