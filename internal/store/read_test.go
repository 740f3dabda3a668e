package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/tabula/internal/model"
)

func TestGetDocument_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetDocument(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHead_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Head(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEvents_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)
	createTestDocument(t, s, "doc-1")

	events, err := s.Events(context.Background(), "doc-1", 0, 0)
	if err != nil {
		t.Fatalf("Events() failed: %v", err)
	}
	if events == nil {
		t.Fatal("Events() returned nil, want empty slice")
	}
	if len(events) != 0 {
		t.Errorf("len = %d, want 0", len(events))
	}
}

func TestEvents_OrderAndBounds(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestDocument(t, s, "doc-1")

	for rev := int64(1); rev <= 5; rev++ {
		mustAppend(t, s, makeEvent("doc-1", rev), "")
	}

	// Half-open range (2, 4].
	events, err := s.Events(ctx, "doc-1", 2, 4)
	if err != nil {
		t.Fatalf("Events() failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Revision != 3 || events[1].Revision != 4 {
		t.Errorf("revisions = [%d, %d], want [3, 4]", events[0].Revision, events[1].Revision)
	}

	// through = 0 means unbounded.
	events, err = s.Events(ctx, "doc-1", 3, 0)
	if err != nil {
		t.Fatalf("Events() failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Revision != 4 || events[1].Revision != 5 {
		t.Errorf("revisions = [%d, %d], want [4, 5]", events[0].Revision, events[1].Revision)
	}
}

func TestEvents_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	createTestDocument(t, s, "doc-1")

	want := makeEvent("doc-1", 1)
	want.OpArgs = model.Object{
		"nested": model.Object{"a": model.Array{model.Int(1), model.Bool(true)}},
	}
	mustAppend(t, s, want, "")

	events, err := s.Events(context.Background(), "doc-1", 0, 0)
	if err != nil {
		t.Fatalf("Events() failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len = %d, want 1", len(events))
	}

	got := events[0]
	if got.CommandID != want.CommandID {
		t.Errorf("command_id = %q, want %q", got.CommandID, want.CommandID)
	}
	if got.Actor != want.Actor {
		t.Errorf("actor = %v, want %v", got.Actor, want.Actor)
	}
	if !model.Equal(got.OpArgs, want.OpArgs) {
		t.Errorf("op_args = %v, want %v", got.OpArgs, want.OpArgs)
	}
	if !got.CommittedAt.Equal(want.CommittedAt) {
		t.Errorf("committed_at = %v, want %v", got.CommittedAt, want.CommittedAt)
	}
}

func TestEvents_IsolatedByDocument(t *testing.T) {
	s := createTestStore(t)
	createTestDocument(t, s, "doc-a")
	createTestDocument(t, s, "doc-b")

	mustAppend(t, s, makeEvent("doc-a", 1), "")
	mustAppend(t, s, makeEvent("doc-b", 1), "")
	mustAppend(t, s, makeEvent("doc-b", 2), "")

	events, err := s.Events(context.Background(), "doc-a", 0, 0)
	if err != nil {
		t.Fatalf("Events() failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("doc-a events = %d, want 1", len(events))
	}
}

func TestEventAt(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestDocument(t, s, "doc-1")
	mustAppend(t, s, makeEvent("doc-1", 1), "")

	ev, err := s.EventAt(ctx, "doc-1", 1)
	if err != nil {
		t.Fatalf("EventAt() failed: %v", err)
	}
	if ev.Revision != 1 {
		t.Errorf("revision = %d, want 1", ev.Revision)
	}

	_, err = s.EventAt(ctx, "doc-1", 2)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSnapshotAtOrBefore(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestDocument(t, s, "doc-1")

	for rev := int64(1); rev <= 6; rev++ {
		mustAppend(t, s, makeEvent("doc-1", rev), "")
	}
	for _, rev := range []int64{2, 4} {
		if _, err := s.WriteSnapshot(ctx, model.Snapshot{
			DocumentID: "doc-1",
			Revision:   rev,
			State:      model.Object{"rev": model.Int(rev)},
			CreatedAt:  testTime(rev),
		}); err != nil {
			t.Fatalf("WriteSnapshot(rev=%d) failed: %v", rev, err)
		}
	}

	tests := []struct {
		max      int64
		wantRev  int64
		wantHave bool
	}{
		{max: 1, wantHave: false},
		{max: 2, wantRev: 2, wantHave: true},
		{max: 3, wantRev: 2, wantHave: true},
		{max: 5, wantRev: 4, wantHave: true},
		{max: -1, wantRev: 4, wantHave: true},
	}

	for _, tt := range tests {
		snap, found, err := s.SnapshotAtOrBefore(ctx, "doc-1", tt.max)
		if err != nil {
			t.Fatalf("SnapshotAtOrBefore(%d) failed: %v", tt.max, err)
		}
		if found != tt.wantHave {
			t.Errorf("SnapshotAtOrBefore(%d) found = %v, want %v", tt.max, found, tt.wantHave)
			continue
		}
		if found && snap.Revision != tt.wantRev {
			t.Errorf("SnapshotAtOrBefore(%d) revision = %d, want %d", tt.max, snap.Revision, tt.wantRev)
		}
	}
}

func TestLatestSnapshot_None(t *testing.T) {
	s := createTestStore(t)
	createTestDocument(t, s, "doc-1")

	_, found, err := s.LatestSnapshot(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("LatestSnapshot() failed: %v", err)
	}
	if found {
		t.Error("found snapshot in empty store")
	}
}

func TestLookupIdempotency_Missing(t *testing.T) {
	s := createTestStore(t)
	createTestDocument(t, s, "doc-1")

	_, found, err := s.LookupIdempotency(context.Background(), "doc-1", "no-such-key")
	if err != nil {
		t.Fatalf("LookupIdempotency() failed: %v", err)
	}
	if found {
		t.Error("found nonexistent key")
	}
}

func TestListDocuments(t *testing.T) {
	s := createTestStore(t)
	createTestDocument(t, s, "doc-b")
	createTestDocument(t, s, "doc-a")

	docs, err := s.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments() failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len = %d, want 2", len(docs))
	}
	if docs[0].ID != "doc-a" || docs[1].ID != "doc-b" {
		t.Errorf("order = [%s, %s], want [doc-a, doc-b]", docs[0].ID, docs[1].ID)
	}
}
