package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares its trace against the
// golden file testdata/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files are the source of truth for expected trace output; test
// failure occurs (via goldie) when the trace differs, or directly when a
// step expectation fails.
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %q failed to run: %v", scenario.Name, err)
	}

	for _, msg := range result.Errors {
		t.Errorf("scenario %q: %s", scenario.Name, msg)
	}

	g := goldie.New(t)
	g.Assert(t, scenario.Name, []byte(result.TraceText()))

	return result
}
