package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/tabula/internal/model"
)

// EnsureDocument creates a document row if it does not exist.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - a document that
// already exists keeps its scope and head revision.
func (s *Store) EnsureDocument(ctx context.Context, id, scope string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, scope, head_revision, created_at)
		VALUES (?, ?, 0, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, scope, marshalTime(now))
	if err != nil {
		return fmt.Errorf("ensure document: %w", err)
	}
	return nil
}

// Append performs the compare-and-swap commit for one event: advance the
// head revision from ev.Revision-1 to ev.Revision and append the event,
// atomically in one transaction.
//
// Returns committed=true on success. On a CAS miss (some other commit won
// the revision) returns committed=false and the current head; nothing is
// written. The idempotency key, if non-empty, is recorded in the same
// transaction so a commit and its dedup entry can never diverge.
//
// The event's revision must be exactly head+1 at commit time; the UPDATE
// guard enforces this without any external lock manager.
func (s *Store) Append(ctx context.Context, ev model.CommittedEvent, idempotencyKey string) (committed bool, head int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("append: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// CAS: advance head only if it still equals base_revision.
	result, err := tx.ExecContext(ctx, `
		UPDATE documents
		SET head_revision = ?
		WHERE id = ? AND head_revision = ?
	`, ev.Revision, ev.DocumentID, ev.Revision-1)
	if err != nil {
		return false, 0, fmt.Errorf("append: cas head: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("append: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// CAS miss - report current head so the caller can build a
		// Conflict result without a second round trip.
		err = tx.QueryRowContext(ctx, `
			SELECT head_revision FROM documents WHERE id = ?
		`, ev.DocumentID).Scan(&head)
		if err != nil {
			return false, 0, fmt.Errorf("append: read head after cas miss: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return false, 0, fmt.Errorf("append: commit (miss): %w", err)
		}
		return false, head, nil
	}

	argsJSON, err := marshalArgs(ev.OpArgs)
	if err != nil {
		return false, 0, fmt.Errorf("append: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events
		(document_id, revision, command_id, op_kind, op_args, actor_kind, actor_id, committed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ev.DocumentID,
		ev.Revision,
		ev.CommandID,
		ev.OpKind,
		argsJSON,
		string(ev.Actor.Kind),
		ev.Actor.ID,
		marshalTime(ev.CommittedAt),
	)
	if err != nil {
		return false, 0, fmt.Errorf("append: insert event: %w", err)
	}

	if idempotencyKey != "" {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO idempotency (document_id, idempotency_key, revision)
			VALUES (?, ?, ?)
			ON CONFLICT(document_id, idempotency_key) DO NOTHING
		`, ev.DocumentID, idempotencyKey, ev.Revision)
		if err != nil {
			return false, 0, fmt.Errorf("append: insert idempotency: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("append: commit: %w", err)
	}

	return true, ev.Revision, nil
}

// WriteSnapshot persists a snapshot blob. Write-once per revision: a
// snapshot that already exists at the same revision is left untouched and
// inserted=false is returned, which makes concurrent snapshot attempts
// for the same revision no-ops.
func (s *Store) WriteSnapshot(ctx context.Context, snap model.Snapshot) (inserted bool, err error) {
	stateJSON, err := marshalState(snap.State)
	if err != nil {
		return false, fmt.Errorf("write snapshot: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (document_id, revision, state, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(document_id, revision) DO NOTHING
	`, snap.DocumentID, snap.Revision, stateJSON, marshalTime(snap.CreatedAt))
	if err != nil {
		return false, fmt.Errorf("write snapshot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write snapshot: rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// PruneSnapshots removes snapshots older than keepRevision. The log
// remains the ground truth, so pruning superseded snapshots never loses
// information.
func (s *Store) PruneSnapshots(ctx context.Context, documentID string, keepRevision int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE document_id = ? AND revision < ?
	`, documentID, keepRevision)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// PruneIdempotency bounds the recent-command index: entries at or below
// the given revision are dropped. Called outside the commit critical
// section.
func (s *Store) PruneIdempotency(ctx context.Context, documentID string, throughRevision int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM idempotency WHERE document_id = ? AND revision <= ?
	`, documentID, throughRevision)
	if err != nil {
		return fmt.Errorf("prune idempotency: %w", err)
	}
	return nil
}
