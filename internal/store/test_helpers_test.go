package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/tabula/internal/model"
)

// createTestStore creates a new on-disk store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestDocument ensures a document row exists.
func createTestDocument(t *testing.T, s *Store, id string) {
	t.Helper()
	if err := s.EnsureDocument(context.Background(), id, "test-scope", testTime(0)); err != nil {
		t.Fatalf("EnsureDocument() failed: %v", err)
	}
}

// makeEvent builds a committed event with minimal required fields.
func makeEvent(docID string, revision int64) model.CommittedEvent {
	return model.CommittedEvent{
		DocumentID: docID,
		Revision:   revision,
		CommandID:  fmt.Sprintf("cmd-%s-%d", docID, revision),
		OpKind:     "set_field",
		OpArgs: model.Object{
			"key":   model.String("title"),
			"value": model.String("plan"),
		},
		Actor:       model.Actor{Kind: model.ActorHuman, ID: "alice"},
		CommittedAt: testTime(revision),
	}
}

// mustAppend appends an event and fails the test on any non-commit.
func mustAppend(t *testing.T, s *Store, ev model.CommittedEvent, key string) {
	t.Helper()
	committed, head, err := s.Append(context.Background(), ev, key)
	if err != nil {
		t.Fatalf("Append(rev=%d) failed: %v", ev.Revision, err)
	}
	if !committed {
		t.Fatalf("Append(rev=%d) not committed, head=%d", ev.Revision, head)
	}
}

// testTime returns a fixed base time offset by n seconds.
func testTime(n int64) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Second)
}
