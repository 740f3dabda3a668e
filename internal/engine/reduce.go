package engine

import (
	"fmt"

	"github.com/roach88/tabula/internal/model"
)

// Reduce deterministically folds a revision-contiguous event sequence over
// a base state. The same inputs always produce byte-identical state (via
// canonical serialization), regardless of when or how often Reduce runs.
//
// The sequence must start at baseRevision+1 and be gap-free. A gap, a
// duplicate, an unknown operation kind, or an applier failure here is an
// integrity violation: intake already validated each event once before
// commit, so replay can only fail if the log or snapshot implementation is
// broken. Such errors are reported, never skipped.
func Reduce(reg *Registry, base model.Object, baseRevision int64, events []model.CommittedEvent) (model.Object, error) {
	state := base.Clone()
	if state == nil {
		state = model.Object{}
	}

	expected := baseRevision
	for _, ev := range events {
		expected++
		if ev.Revision != expected {
			return nil, NewIntegrityError(ev.DocumentID, ev.Revision,
				fmt.Sprintf("event sequence not contiguous: expected revision %d, got %d", expected, ev.Revision))
		}

		fn, ok := reg.Lookup(ev.OpKind)
		if !ok {
			return nil, NewIntegrityError(ev.DocumentID, ev.Revision,
				fmt.Sprintf("no applier registered for committed operation %q", ev.OpKind))
		}

		next, err := fn(state, ev.OpArgs)
		if err != nil {
			return nil, &EngineError{
				Code:       ErrCodeIntegrityViolation,
				Message:    fmt.Sprintf("applier %q failed during replay", ev.OpKind),
				DocumentID: ev.DocumentID,
				Revision:   ev.Revision,
				Err:        err,
			}
		}
		state = next
	}

	return state, nil
}
