package engine

import (
	"context"
	"fmt"

	"github.com/roach88/tabula/internal/model"
)

// CatchUp returns the minimal data a caller needs to reach the current
// head from a known revision.
//
// A caller already holding state at knownRevision gets only the tail of
// events after it - no snapshot transfer. A caller starting from nothing
// (knownRevision 0) gets the latest snapshot plus the events after it, so
// one local reduce reaches head. Either way the returned tail is
// revision-contiguous from BaseRevision+1 through HeadRevision; a gap is
// an integrity violation, never papered over.
func (e *Engine) CatchUp(ctx context.Context, documentID string, knownRevision int64) (CatchUpResult, error) {
	if knownRevision < 0 {
		return CatchUpResult{}, &EngineError{
			Code:       ErrCodeInvalidRequest,
			Message:    fmt.Sprintf("known revision must be non-negative, got %d", knownRevision),
			DocumentID: documentID,
		}
	}

	head, err := e.storage.Head(ctx, documentID)
	if err != nil {
		return CatchUpResult{}, err
	}

	if knownRevision > head {
		return CatchUpResult{}, &EngineError{
			Code:       ErrCodeInvalidRequest,
			Message:    fmt.Sprintf("known revision %d is beyond head %d", knownRevision, head),
			DocumentID: documentID,
		}
	}

	// Already current: the caller's own state is the answer.
	if knownRevision == head {
		return CatchUpResult{
			BaseRevision: knownRevision,
			HeadRevision: head,
		}, nil
	}

	result := CatchUpResult{
		BaseRevision: knownRevision,
		HeadRevision: head,
	}

	if knownRevision == 0 {
		// Cold start: hand over the latest snapshot so replay cost is
		// bounded by "events since last snapshot", not document age.
		snap, ok, err := e.storage.LatestSnapshot(ctx, documentID)
		if err != nil {
			return CatchUpResult{}, storeError(documentID, err, false)
		}
		if ok {
			result.BaseState = snap.State
			result.BaseRevision = snap.Revision
		} else {
			result.BaseState = model.Object{}
		}
	}

	tail, err := e.storage.Events(ctx, documentID, result.BaseRevision, head)
	if err != nil {
		return CatchUpResult{}, storeError(documentID, err, false)
	}

	// Never return a gap.
	expected := result.BaseRevision
	for _, ev := range tail {
		expected++
		if ev.Revision != expected {
			return CatchUpResult{}, NewIntegrityError(documentID, ev.Revision,
				fmt.Sprintf("catch-up tail not contiguous: expected revision %d, got %d", expected, ev.Revision))
		}
	}
	if expected != head {
		return CatchUpResult{}, NewIntegrityError(documentID, head,
			fmt.Sprintf("catch-up tail ends at revision %d, head is %d", expected, head))
	}

	result.TailEvents = tail
	return result, nil
}
