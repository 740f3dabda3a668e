package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/tabula/internal/model"
)

// publisher fans committed events out to live subscribers.
//
// Delivery is signal-and-pull: Submit signals subscribers of a document
// after a durable append, and each subscriber re-reads the log past its
// own cursor. The log is the only source of event data, which gives every
// subscriber at-least-once, strictly revision-ordered, gap-free delivery
// and makes resume trivial - the cursor is the revision number.
type publisher struct {
	mu   sync.Mutex
	subs map[string]map[*subscription]struct{} // document -> subscribers
}

type subscription struct {
	signal chan struct{} // buffered size 1, coalesces notifications
}

func newPublisher() *publisher {
	return &publisher{
		subs: make(map[string]map[*subscription]struct{}),
	}
}

// publish notifies subscribers of a document that new events are durable.
// Called only after the append commits, never before.
func (p *publisher) publish(documentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for sub := range p.subs[documentID] {
		select {
		case sub.signal <- struct{}{}:
		default:
			// A pending signal already covers this commit.
		}
	}
}

func (p *publisher) add(documentID string, sub *subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.subs[documentID] == nil {
		p.subs[documentID] = make(map[*subscription]struct{})
	}
	p.subs[documentID][sub] = struct{}{}
}

func (p *publisher) remove(documentID string, sub *subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.subs[documentID], sub)
	if len(p.subs[documentID]) == 0 {
		delete(p.subs, documentID)
	}
}

// Subscribe returns a channel of committed events for a document,
// starting after resumeFrom. The sequence is unbounded: backfill from the
// log first, then live events as they commit. Events arrive in strict
// revision order with no gaps inside the log's retained window.
//
// The channel closes when ctx is cancelled or when the subscription hits
// a store or integrity error (logged). A reconnecting subscriber passes
// the last revision it saw as resumeFrom; it may then observe an event a
// second time, never out of order.
func (e *Engine) Subscribe(ctx context.Context, documentID string, resumeFrom int64) (<-chan model.CommittedEvent, error) {
	if _, err := e.storage.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}

	sub := &subscription{signal: make(chan struct{}, 1)}
	e.pub.add(documentID, sub)

	out := make(chan model.CommittedEvent, 16)

	go func() {
		defer func() {
			e.pub.remove(documentID, sub)
			close(out)
		}()

		// The in-process signal only covers commits through this Engine.
		// A writer in another process reaches the shared database without
		// touching this publisher, so the poll ticker is what keeps a
		// subscription live across processes.
		var poll <-chan time.Time
		if e.pollInterval > 0 {
			ticker := time.NewTicker(e.pollInterval)
			defer ticker.Stop()
			poll = ticker.C
		}

		cursor := resumeFrom
		for {
			events, err := e.storage.Events(ctx, documentID, cursor, 0)
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("subscription read failed", "document", documentID, "cursor", cursor, "error", err)
				}
				return
			}

			for _, ev := range events {
				if ev.Revision != cursor+1 {
					slog.Error("subscription detected log gap",
						"document", documentID,
						"expected", cursor+1,
						"got", ev.Revision,
					)
					return
				}
				select {
				case out <- ev:
					cursor = ev.Revision
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-sub.signal:
				// New events are durable - loop back and read past cursor.
			case <-poll:
				// Re-read in case another process appended.
			}
		}
	}()

	return out, nil
}
