package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tabula/internal/model"
)

func TestSnapshot_AtHead(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	mustCommit(t, e, makeEnv("doc-1", 0, 1))
	mustCommit(t, e, makeEnv("doc-1", 1, 2))

	snap, err := e.Snapshot(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Revision)
	assert.True(t, model.Equal(snap.State, model.Object{
		"k1": model.Int(1),
		"k2": model.Int(2),
	}))
}

func TestSnapshot_EmptyDocumentRejected(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.CreateDocument(ctx, "doc-1", ""))

	_, err := e.Snapshot(ctx, "doc-1")
	require.Error(t, err)

	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrCodeInvalidRequest, ee.Code)
}

func TestSnapshot_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	mustCommit(t, e, makeEnv("doc-1", 0, 1))

	first, err := e.Snapshot(ctx, "doc-1")
	require.NoError(t, err)

	// No commits in between: the second call returns the existing
	// snapshot unchanged.
	second, err := e.Snapshot(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, first.Revision, second.Revision)
	assert.True(t, model.Equal(first.State, second.State))
}

func TestSnapshot_AdvancesWithHead(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	mustCommit(t, e, makeEnv("doc-1", 0, 1))
	snap1, err := e.Snapshot(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), snap1.Revision)

	mustCommit(t, e, makeEnv("doc-1", 1, 2))
	mustCommit(t, e, makeEnv("doc-1", 2, 3))

	snap2, err := e.Snapshot(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap2.Revision)

	// Superseded snapshots are pruned; only the newest survives.
	latest, ok, err := e.storage.LatestSnapshot(ctx, "doc-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(3), latest.Revision)

	older, ok, err := e.storage.SnapshotAtOrBefore(ctx, "doc-1", 2)
	require.NoError(t, err)
	assert.False(t, ok, "pruned snapshot still present at revision %d", older.Revision)
}

func TestSnapshot_MissingDocument(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Snapshot(context.Background(), "missing")
	require.Error(t, err)
}
