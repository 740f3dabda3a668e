package engine

import "github.com/roach88/tabula/internal/model"

// SubmitStatus is the outcome class of a command submission.
type SubmitStatus string

const (
	// StatusCommitted means the command was admitted and durably appended.
	StatusCommitted SubmitStatus = "committed"
	// StatusConflict means the base revision was stale. Not an error:
	// normal control flow, the caller rebases and resubmits.
	StatusConflict SubmitStatus = "conflict"
	// StatusRejected means the command was refused before any write.
	StatusRejected SubmitStatus = "rejected"
)

// RejectReason categorizes rejections.
type RejectReason string

const (
	// RejectUnknownOperation - operation kind not in the applier registry.
	RejectUnknownOperation RejectReason = "unknown_operation"
	// RejectValidation - malformed command (missing required fields).
	RejectValidation RejectReason = "validation"
	// RejectApplyError - well-formed, but the applier refused it against
	// the current state.
	RejectApplyError RejectReason = "apply_error"
)

// SubmitResult is the typed result of Submit. Exactly one of the three
// statuses applies; conflict and rejection are results, never errors.
type SubmitResult struct {
	Status SubmitStatus

	// Revision is set when Status is StatusCommitted.
	Revision int64

	// IdempotentReplay is true when a committed result was returned from
	// the dedup index without re-applying the command.
	IdempotentReplay bool

	// CurrentRevision and MissingEvents are set when Status is
	// StatusConflict. MissingEvents is exactly the contiguous range
	// (base_revision, current_revision], so the caller can rebase without
	// a second round trip.
	CurrentRevision int64
	MissingEvents   []model.CommittedEvent

	// Reason and Message are set when Status is StatusRejected.
	Reason  RejectReason
	Message string
}

// CatchUpResult carries the minimal data a caller needs to reach head.
type CatchUpResult struct {
	// BaseState is the snapshot state to start reducing from. Nil when the
	// caller already holds the state at BaseRevision (known-revision
	// catch-up) - the tail alone suffices.
	BaseState model.Object

	// BaseRevision is the revision BaseState reflects, or the caller's
	// known revision when BaseState is nil.
	BaseRevision int64

	// TailEvents is revision-contiguous from BaseRevision+1 through
	// HeadRevision. Empty when the caller is already current.
	TailEvents []model.CommittedEvent

	// HeadRevision is the document head at read time.
	HeadRevision int64
}

// UpToDate reports whether the caller was already at head.
func (r CatchUpResult) UpToDate() bool {
	return r.BaseRevision == r.HeadRevision && len(r.TailEvents) == 0
}
