package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_NoSnapshot(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	mustCommit(t, e, makeEnv("doc-1", 0, 1))
	mustCommit(t, e, makeEnv("doc-1", 1, 2))

	result, err := e.Verify(ctx, "doc-1")
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.HeadRevision)
	assert.Equal(t, 2, result.Events)
	assert.False(t, result.HasSnapshot)
	assert.True(t, result.Equivalent)
	assert.Equal(t, result.FullHash, result.SnapshotHash)
	assert.Len(t, result.LogHash, 64)
}

func TestVerify_LogHashTracksLogContent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	mustCommit(t, e, makeEnv("doc-1", 0, 1))
	before, err := e.Verify(ctx, "doc-1")
	require.NoError(t, err)

	// Same digest on re-verify, new digest after another commit.
	again, err := e.Verify(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, before.LogHash, again.LogHash)

	mustCommit(t, e, makeEnv("doc-1", 1, 2))
	after, err := e.Verify(ctx, "doc-1")
	require.NoError(t, err)
	assert.NotEqual(t, before.LogHash, after.LogHash)
}

func TestVerify_WithSnapshot(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for n := 1; n <= 3; n++ {
		mustCommit(t, e, makeEnv("doc-1", int64(n-1), n))
	}
	_, err := e.Snapshot(ctx, "doc-1")
	require.NoError(t, err)

	mustCommit(t, e, makeEnv("doc-1", 3, 4))
	mustCommit(t, e, makeEnv("doc-1", 4, 5))

	result, err := e.Verify(ctx, "doc-1")
	require.NoError(t, err)

	assert.True(t, result.HasSnapshot)
	assert.Equal(t, int64(5), result.HeadRevision)
	assert.Equal(t, 5, result.Events)
	assert.True(t, result.Equivalent, "full=%s snapshot=%s", result.FullHash, result.SnapshotHash)
}

func TestVerify_EmptyDocument(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.CreateDocument(ctx, "doc-1", ""))

	result, err := e.Verify(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.HeadRevision)
	assert.True(t, result.Equivalent)
}

func TestVerify_MissingDocument(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Verify(context.Background(), "missing")
	require.Error(t, err)
}
