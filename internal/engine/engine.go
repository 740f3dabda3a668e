package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/tabula/internal/model"
)

// DefaultSnapshotEvery is the default commit cadence for automatic
// snapshots: one snapshot per 64 committed events per document. This
// bounds replay cost to at most 63 events regardless of document age.
const DefaultSnapshotEvery = 64

// DefaultIdempotencyWindow is how many revisions an idempotency key stays
// in the dedup index. A command resubmitted more than a window behind head
// is treated as new, so callers retrying across that horizon must re-query
// first.
const DefaultIdempotencyWindow = 1024

// DefaultPollInterval is how often a subscription re-reads the log when no
// in-process signal arrives. Commits from another process reach the shared
// database but not this engine's publisher, so polling is the only way a
// subscriber can see them.
const DefaultPollInterval = 500 * time.Millisecond

// Engine ties the core together: intake, reduction, snapshots, catch-up,
// and fan-out. One Engine serves many documents; per-document commit
// serialization lives in the storage CAS, so the Engine itself holds no
// locks on the commit path.
type Engine struct {
	storage  Storage
	registry *Registry
	clock    Clock
	pub      *publisher

	snapshotEvery     int64
	idempotencyWindow int64
	pollInterval      time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the commit-timestamp clock.
// Tests use a deterministic clock for golden traces.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithSnapshotEvery sets the automatic snapshot cadence in committed
// events per document. Zero disables automatic snapshots (on-demand
// snapshots still work).
func WithSnapshotEvery(n int64) Option {
	return func(e *Engine) {
		e.snapshotEvery = n
	}
}

// WithIdempotencyWindow sets how many revisions idempotency keys are
// retained for.
func WithIdempotencyWindow(n int64) Option {
	return func(e *Engine) {
		e.idempotencyWindow = n
	}
}

// WithPollInterval sets how often subscriptions re-read the log without an
// in-process commit signal. Zero disables polling, limiting a subscription
// to commits made through the same Engine.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.pollInterval = d
	}
}

// New creates an Engine over a storage backend and an applier registry.
//
// The registry must be fully populated before New is called; operation
// kinds are resolved at submit and replay time but never registered by
// the engine itself.
func New(storage Storage, registry *Registry, opts ...Option) *Engine {
	e := &Engine{
		storage:           storage,
		registry:          registry,
		clock:             SystemClock{},
		pub:               newPublisher(),
		snapshotEvery:     DefaultSnapshotEvery,
		idempotencyWindow: DefaultIdempotencyWindow,
		pollInterval:      DefaultPollInterval,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Registry returns the applier registry.
// Used for diagnostics and CLI output.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// CreateDocument registers a document under an opaque scope key.
// Idempotent: an existing document is left untouched.
func (e *Engine) CreateDocument(ctx context.Context, id, scope string) error {
	if err := e.storage.EnsureDocument(ctx, id, scope, e.clock.Now()); err != nil {
		return storeError(id, err, false)
	}
	slog.Debug("document ensured", "document", id, "scope", scope)
	return nil
}

// Document returns the document row, including its head revision.
func (e *Engine) Document(ctx context.Context, id string) (model.Document, error) {
	doc, err := e.storage.GetDocument(ctx, id)
	if err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// currentState loads the document state at exactly revision head, using
// the latest usable snapshot plus the log tail.
func (e *Engine) currentState(ctx context.Context, documentID string, head int64) (model.Object, error) {
	base := model.Object{}
	var baseRev int64

	snap, ok, err := e.storage.SnapshotAtOrBefore(ctx, documentID, head)
	if err != nil {
		return nil, storeError(documentID, err, false)
	}
	if ok {
		base = snap.State
		baseRev = snap.Revision
	}

	if baseRev == head {
		return base.Clone(), nil
	}

	tail, err := e.storage.Events(ctx, documentID, baseRev, head)
	if err != nil {
		return nil, storeError(documentID, err, false)
	}

	return Reduce(e.registry, base, baseRev, tail)
}
