package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tabula/internal/engine"
)

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "tabula.db")
}

func TestInitCommand(t *testing.T) {
	db := testDB(t)

	out, err := runCLI(t, "init", "board-1", "--db", db, "--scope", "ws-1")
	require.NoError(t, err)
	assert.Contains(t, out, "board-1")
	assert.Contains(t, out, "revision 0")

	// Idempotent re-init.
	_, err = runCLI(t, "init", "board-1", "--db", db)
	require.NoError(t, err)
}

func TestSubmitCommand_Commit(t *testing.T) {
	db := testDB(t)
	_, err := runCLI(t, "init", "board-1", "--db", db)
	require.NoError(t, err)

	out, err := runCLI(t, "submit",
		"--db", db,
		"--doc", "board-1",
		"--base", "0",
		"--op", "set_field",
		"--args", `{"key":"title","value":"kickoff"}`,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "committed revision 1")
}

func TestSubmitCommand_UsesInjectedTokenGenerator(t *testing.T) {
	db := testDB(t)
	_, err := runCLI(t, "init", "board-1", "--db", db)
	require.NoError(t, err)

	opts := &RootOptions{
		Format: "text",
		Config: filepath.Join(t.TempDir(), "absent.yaml"),
		Tokens: engine.NewFixedGenerator("cmd-fixed-1", "key-fixed-1"),
	}
	cmd := NewSubmitCommand(opts)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{
		"--db", db,
		"--doc", "board-1",
		"--base", "0",
		"--op", "set_field",
		"--args", `{"key":"title","value":"kickoff"}`,
	})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "committed revision 1")

	// Both the command ID and the idempotency key came from the injected
	// generator, so it is now exhausted.
	assert.Panics(t, func() { opts.Tokens.Generate() })
}

func TestSubmitCommand_ConflictExitsNonzero(t *testing.T) {
	db := testDB(t)
	_, err := runCLI(t, "init", "board-1", "--db", db)
	require.NoError(t, err)

	_, err = runCLI(t, "submit", "--db", db, "--doc", "board-1", "--base", "0",
		"--op", "set_field", "--args", `{"key":"a","value":1}`)
	require.NoError(t, err)

	// Same base again: conflict, reported on stdout, exit code 1.
	out, err := runCLI(t, "submit", "--db", db, "--doc", "board-1", "--base", "0",
		"--op", "set_field", "--args", `{"key":"b","value":2}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "conflict: head is 1")
}

func TestSubmitCommand_RejectedExitsNonzero(t *testing.T) {
	db := testDB(t)
	_, err := runCLI(t, "init", "board-1", "--db", db)
	require.NoError(t, err)

	out, err := runCLI(t, "submit", "--db", db, "--doc", "board-1", "--base", "0",
		"--op", "patch_node", "--args", `{"id":"ghost","set":{"x":1}}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "rejected (apply_error)")
}

func TestSubmitCommand_FloatArgsRejected(t *testing.T) {
	db := testDB(t)

	_, err := runCLI(t, "submit", "--db", db, "--doc", "board-1", "--base", "0",
		"--op", "set_field", "--args", `{"key":"a","value":1.5}`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSubmitCommand_MissingRequiredFlags(t *testing.T) {
	db := testDB(t)

	_, err := runCLI(t, "submit", "--db", db, "--op", "set_field")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = runCLI(t, "submit", "--db", db, "--doc", "board-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLogCommand(t *testing.T) {
	db := testDB(t)
	_, err := runCLI(t, "init", "board-1", "--db", db)
	require.NoError(t, err)

	for _, step := range []struct{ base, args string }{
		{"0", `{"key":"a","value":1}`},
		{"1", `{"key":"b","value":2}`},
	} {
		_, err = runCLI(t, "submit", "--db", db, "--doc", "board-1", "--base", step.base,
			"--op", "set_field", "--args", step.args)
		require.NoError(t, err)
	}

	out, err := runCLI(t, "log", "board-1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "rev=1 op=set_field")
	assert.Contains(t, out, "rev=2 op=set_field")
	assert.Contains(t, out, "actor=human:cli")

	// --after bounds the range.
	out, err = runCLI(t, "log", "board-1", "--db", db, "--after", "1")
	require.NoError(t, err)
	assert.NotContains(t, out, "rev=1 ")
	assert.Contains(t, out, "rev=2 ")
}

func TestSnapshotAndVerifyCommands(t *testing.T) {
	db := testDB(t)
	_, err := runCLI(t, "init", "board-1", "--db", db)
	require.NoError(t, err)

	_, err = runCLI(t, "submit", "--db", db, "--doc", "board-1", "--base", "0",
		"--op", "put_node", "--args", `{"id":"n1","node":{"x":1}}`)
	require.NoError(t, err)

	out, err := runCLI(t, "snapshot", "board-1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "snapshot at revision 1")

	_, err = runCLI(t, "submit", "--db", db, "--doc", "board-1", "--base", "1",
		"--op", "patch_node", "--args", `{"id":"n1","set":{"x":2}}`)
	require.NoError(t, err)

	out, err = runCLI(t, "verify", "board-1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "log hash:")
	assert.Contains(t, out, "equivalent")
	assert.NotContains(t, out, "NOT EQUIVALENT")
}

func TestVerifyCommand_JSON(t *testing.T) {
	db := testDB(t)
	_, err := runCLI(t, "init", "board-1", "--db", db)
	require.NoError(t, err)

	_, err = runCLI(t, "submit", "--db", db, "--doc", "board-1", "--base", "0",
		"--op", "set_field", "--args", `{"key":"a","value":1}`)
	require.NoError(t, err)

	out, err := runCLI(t, "verify", "board-1", "--db", db, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"ok"`)
	assert.Contains(t, out, `"equivalent":true`)
}

func TestLogCommand_MissingDocument(t *testing.T) {
	db := testDB(t)

	_, err := runCLI(t, "log", "missing", "--db", db)
	require.Error(t, err)
}
