package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tabula/internal/model"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// GetDocument retrieves a document row by ID.
// Returns ErrNotFound if the document does not exist.
func (s *Store) GetDocument(ctx context.Context, id string) (model.Document, error) {
	var doc model.Document
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, scope, head_revision, created_at
		FROM documents
		WHERE id = ?
	`, id).Scan(&doc.ID, &doc.Scope, &doc.HeadRevision, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, fmt.Errorf("document %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("get document: %w", err)
	}

	doc.CreatedAt, err = unmarshalTime(createdAt)
	if err != nil {
		return model.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Head returns the current head revision of a document.
// Returns ErrNotFound if the document does not exist.
func (s *Store) Head(ctx context.Context, documentID string) (int64, error) {
	var head int64
	err := s.db.QueryRowContext(ctx, `
		SELECT head_revision FROM documents WHERE id = ?
	`, documentID).Scan(&head)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("document %q: %w", documentID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("read head: %w", err)
	}
	return head, nil
}

// Events returns committed events for a document with after < revision,
// and revision <= through when through > 0. Results are ordered by
// revision ascending, which for a single document is the total commit
// order.
//
// Returns an empty slice (not nil) if no events match.
func (s *Store) Events(ctx context.Context, documentID string, after, through int64) ([]model.CommittedEvent, error) {
	query := `
		SELECT document_id, revision, command_id, op_kind, op_args, actor_kind, actor_id, committed_at
		FROM events
		WHERE document_id = ? AND revision > ?
	`
	args := []any{documentID, after}
	if through > 0 {
		query += ` AND revision <= ?`
		args = append(args, through)
	}
	query += ` ORDER BY revision ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.CommittedEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	if events == nil {
		events = []model.CommittedEvent{}
	}
	return events, nil
}

// EventAt retrieves the single committed event at a revision.
// Returns ErrNotFound if no event exists at that revision.
func (s *Store) EventAt(ctx context.Context, documentID string, revision int64) (model.CommittedEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, revision, command_id, op_kind, op_args, actor_kind, actor_id, committed_at
		FROM events
		WHERE document_id = ? AND revision = ?
	`, documentID, revision)
	if err != nil {
		return model.CommittedEvent{}, fmt.Errorf("query event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return model.CommittedEvent{}, fmt.Errorf("query event: %w", err)
		}
		return model.CommittedEvent{}, fmt.Errorf("event %s@%d: %w", documentID, revision, ErrNotFound)
	}
	return scanEvent(rows)
}

// scanEvent scans a row into a CommittedEvent.
func scanEvent(rows *sql.Rows) (model.CommittedEvent, error) {
	var ev model.CommittedEvent
	var actorKind, argsJSON, committedAt string

	if err := rows.Scan(
		&ev.DocumentID, &ev.Revision, &ev.CommandID, &ev.OpKind,
		&argsJSON, &actorKind, &ev.Actor.ID, &committedAt,
	); err != nil {
		return model.CommittedEvent{}, fmt.Errorf("scan event: %w", err)
	}
	ev.Actor.Kind = model.ActorKind(actorKind)

	args, err := unmarshalArgs(argsJSON)
	if err != nil {
		return model.CommittedEvent{}, err
	}
	ev.OpArgs = args

	ev.CommittedAt, err = unmarshalTime(committedAt)
	if err != nil {
		return model.CommittedEvent{}, err
	}
	return ev, nil
}

// LatestSnapshot returns the most recent snapshot for a document, if any.
func (s *Store) LatestSnapshot(ctx context.Context, documentID string) (model.Snapshot, bool, error) {
	return s.snapshotAtOrBefore(ctx, documentID, -1)
}

// SnapshotAtOrBefore returns the most recent snapshot with
// revision <= maxRevision. Pass a negative maxRevision for no bound.
func (s *Store) SnapshotAtOrBefore(ctx context.Context, documentID string, maxRevision int64) (model.Snapshot, bool, error) {
	return s.snapshotAtOrBefore(ctx, documentID, maxRevision)
}

func (s *Store) snapshotAtOrBefore(ctx context.Context, documentID string, maxRevision int64) (model.Snapshot, bool, error) {
	query := `
		SELECT document_id, revision, state, created_at
		FROM snapshots
		WHERE document_id = ?
	`
	args := []any{documentID}
	if maxRevision >= 0 {
		query += ` AND revision <= ?`
		args = append(args, maxRevision)
	}
	query += ` ORDER BY revision DESC LIMIT 1`

	var snap model.Snapshot
	var stateJSON, createdAt string

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&snap.DocumentID, &snap.Revision, &stateJSON, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, false, nil
	}
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("query snapshot: %w", err)
	}

	snap.State, err = unmarshalState(stateJSON)
	if err != nil {
		return model.Snapshot{}, false, err
	}
	snap.CreatedAt, err = unmarshalTime(createdAt)
	if err != nil {
		return model.Snapshot{}, false, err
	}
	return snap, true, nil
}

// LookupIdempotency returns the committed revision recorded for an
// idempotency key, if present in the bounded index.
func (s *Store) LookupIdempotency(ctx context.Context, documentID, key string) (int64, bool, error) {
	var revision int64
	err := s.db.QueryRowContext(ctx, `
		SELECT revision FROM idempotency
		WHERE document_id = ? AND idempotency_key = ?
	`, documentID, key).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup idempotency: %w", err)
	}
	return revision, true, nil
}

// ListDocuments returns all documents ordered by ID.
// Used by CLI commands to enumerate documents for verification.
func (s *Store) ListDocuments(ctx context.Context) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scope, head_revision, created_at
		FROM documents
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		var createdAt string
		if err := rows.Scan(&doc.ID, &doc.Scope, &doc.HeadRevision, &createdAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.CreatedAt, err = unmarshalTime(createdAt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}
