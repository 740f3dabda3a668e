package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/tabula/internal/model"
)

// Submit runs the full intake protocol for one proposed command:
// validation, idempotent replay, conflict detection, applier dry-run, and
// the atomic CAS+append. Validation, the idempotency lookup, and the
// dry-run all happen before the commit write, outside the serialization
// point.
//
// The returned error is nil for all three result statuses. A non-nil
// error means the engine itself failed: store unavailable, outcome
// unknown, or an integrity violation. On outcome-unknown the caller must
// re-query by idempotency key or head revision before retrying - the
// append may have succeeded despite the failure.
func (e *Engine) Submit(ctx context.Context, env model.CommandEnvelope) (SubmitResult, error) {
	if err := env.Validate(); err != nil {
		return SubmitResult{
			Status:  StatusRejected,
			Reason:  RejectValidation,
			Message: err.Error(),
		}, nil
	}

	applier, ok := e.registry.Lookup(env.OpKind)
	if !ok {
		return SubmitResult{
			Status:  StatusRejected,
			Reason:  RejectUnknownOperation,
			Message: fmt.Sprintf("unknown operation kind %q", env.OpKind),
		}, nil
	}

	if err := e.storage.EnsureDocument(ctx, env.DocumentID, "", e.clock.Now()); err != nil {
		return SubmitResult{}, storeError(env.DocumentID, err, false)
	}

	// Exactly-once from the caller's perspective: a key already in the
	// bounded index returns the prior result unchanged, no re-apply.
	if rev, found, err := e.storage.LookupIdempotency(ctx, env.DocumentID, env.IdempotencyKey); err != nil {
		return SubmitResult{}, storeError(env.DocumentID, err, false)
	} else if found {
		slog.Debug("idempotent replay",
			"document", env.DocumentID,
			"idempotency_key", env.IdempotencyKey,
			"revision", rev,
		)
		return SubmitResult{
			Status:           StatusCommitted,
			Revision:         rev,
			IdempotentReplay: true,
		}, nil
	}

	head, err := e.storage.Head(ctx, env.DocumentID)
	if err != nil {
		return SubmitResult{}, storeError(env.DocumentID, err, false)
	}

	if env.BaseRevision != head {
		return e.conflict(ctx, env.DocumentID, env.BaseRevision, head)
	}

	// Dry-run the applier against the head state so the log never holds
	// an event whose replay would fail. Runs outside the commit critical
	// section; if the head moves underneath us the CAS below misses and
	// we return a conflict instead.
	state, err := e.currentState(ctx, env.DocumentID, head)
	if err != nil {
		return SubmitResult{}, err
	}
	if _, err := applier(state.Clone(), env.OpArgs); err != nil {
		return SubmitResult{
			Status:  StatusRejected,
			Reason:  RejectApplyError,
			Message: err.Error(),
		}, nil
	}

	ev := model.CommittedEvent{
		DocumentID:  env.DocumentID,
		Revision:    head + 1,
		CommandID:   env.CommandID,
		OpKind:      env.OpKind,
		OpArgs:      env.OpArgs,
		Actor:       env.Actor,
		CommittedAt: e.clock.Now(),
	}

	committed, newHead, err := e.storage.Append(ctx, ev, env.IdempotencyKey)
	if err != nil {
		// A failure during the append leaves the outcome unknown - the
		// transaction may have committed before the error surfaced.
		return SubmitResult{}, storeError(env.DocumentID, err, true)
	}

	if !committed {
		return e.conflict(ctx, env.DocumentID, env.BaseRevision, newHead)
	}

	slog.Info("command committed",
		"document", env.DocumentID,
		"revision", ev.Revision,
		"op", ev.OpKind,
		"actor", ev.Actor.String(),
		"command_id", ev.CommandID,
	)

	// Side effects after durable append, never before.
	e.pub.publish(env.DocumentID)
	e.afterCommit(ctx, env.DocumentID, ev.Revision)

	return SubmitResult{
		Status:   StatusCommitted,
		Revision: ev.Revision,
	}, nil
}

// conflict builds a Conflict result carrying the current head and the
// exact contiguous event range (baseRevision, head] the caller is missing.
func (e *Engine) conflict(ctx context.Context, documentID string, baseRevision, head int64) (SubmitResult, error) {
	var missing []model.CommittedEvent
	if baseRevision < head {
		events, err := e.storage.Events(ctx, documentID, baseRevision, head)
		if err != nil {
			return SubmitResult{}, storeError(documentID, err, false)
		}
		missing = events
	}

	slog.Debug("revision conflict",
		"document", documentID,
		"base_revision", baseRevision,
		"head_revision", head,
		"missing", len(missing),
	)

	return SubmitResult{
		Status:          StatusConflict,
		CurrentRevision: head,
		MissingEvents:   missing,
	}, nil
}

// afterCommit runs post-commit maintenance: idempotency pruning and the
// snapshot cadence. Failures here never fail the submission - the commit
// is already durable - they are logged and left for the next commit or an
// operator to retry.
func (e *Engine) afterCommit(ctx context.Context, documentID string, revision int64) {
	if e.idempotencyWindow > 0 && revision > e.idempotencyWindow {
		if err := e.storage.PruneIdempotency(ctx, documentID, revision-e.idempotencyWindow); err != nil {
			slog.Warn("idempotency prune failed", "document", documentID, "error", err)
		}
	}

	if e.snapshotEvery > 0 && revision%e.snapshotEvery == 0 {
		if _, err := e.Snapshot(ctx, documentID); err != nil {
			slog.Warn("automatic snapshot failed", "document", documentID, "revision", revision, "error", err)
		}
	}
}
