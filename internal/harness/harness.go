// Package harness provides a conformance scenario runner for the
// revision engine. Each scenario runs against a fresh in-memory database
// with a deterministic clock, producing a reproducible text trace that is
// validated step by step and compared against golden files.
package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/tabula/internal/canvasop"
	"github.com/roach88/tabula/internal/engine"
	"github.com/roach88/tabula/internal/model"
	"github.com/roach88/tabula/internal/store"
	"github.com/roach88/tabula/internal/testutil"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step with an expectation matched.
	Pass bool

	// Trace is the deterministic execution trace, one line per step plus
	// a final state line. Compared against golden files.
	Trace []string

	// Errors lists expectation mismatches. Empty when Pass is true.
	Errors []string
}

// TraceText returns the trace as one newline-terminated string.
func (r *Result) TraceText() string {
	return strings.Join(r.Trace, "\n") + "\n"
}

// addError records an expectation failure and fails the result.
func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run executes a scenario against a fresh in-memory engine.
//
// Determinism: the store is in-memory, the clock is the epoch fixed
// clock, command IDs and idempotency keys are derived from the step
// index, and automatic snapshots are disabled so the trace reflects only
// the scenario's own steps.
func Run(scenario *Scenario) (*Result, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	eng := engine.New(st, canvasop.NewRegistry(),
		engine.WithClock(testutil.NewEpochClock()),
		engine.WithSnapshotEvery(0),
	)

	ctx := context.Background()
	if err := eng.CreateDocument(ctx, scenario.Document, ""); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	result := &Result{Pass: true}

	for i, step := range scenario.Steps {
		switch {
		case step.Submit != nil:
			if err := runSubmit(ctx, eng, scenario, i, step.Submit, result); err != nil {
				return nil, err
			}
		case step.Snapshot:
			snap, err := eng.Snapshot(ctx, scenario.Document)
			if err != nil {
				return nil, fmt.Errorf("step %d: snapshot: %w", i, err)
			}
			result.Trace = append(result.Trace, fmt.Sprintf("snapshot -> rev=%d", snap.Revision))
		case step.CatchUp != nil:
			cu, err := eng.CatchUp(ctx, scenario.Document, step.CatchUp.KnownRevision)
			if err != nil {
				return nil, fmt.Errorf("step %d: catch_up: %w", i, err)
			}
			result.Trace = append(result.Trace, fmt.Sprintf(
				"catch_up known=%d -> base=%d tail=%d head=%d",
				step.CatchUp.KnownRevision, cu.BaseRevision, len(cu.TailEvents), cu.HeadRevision))
		}
	}

	if err := appendFinalState(ctx, eng, scenario.Document, result); err != nil {
		return nil, err
	}

	return result, nil
}

func runSubmit(ctx context.Context, eng *engine.Engine, scenario *Scenario, idx int, step *SubmitStep, result *Result) error {
	args, err := model.ObjectFromAny(step.Args)
	if err != nil {
		return fmt.Errorf("step %d: args: %w", idx, err)
	}

	actor, err := parseActor(step.Actor)
	if err != nil {
		return fmt.Errorf("step %d: %w", idx, err)
	}

	key := step.IdempotencyKey
	if key == "" {
		key = fmt.Sprintf("%s-key-%d", scenario.Name, idx)
	}

	env := model.CommandEnvelope{
		CommandID:      fmt.Sprintf("%s-cmd-%d", scenario.Name, idx),
		DocumentID:     scenario.Document,
		BaseRevision:   step.BaseRevision,
		IdempotencyKey: key,
		Actor:          actor,
		OpKind:         step.Op,
		OpArgs:         args,
	}

	res, err := eng.Submit(ctx, env)
	if err != nil {
		return fmt.Errorf("step %d: submit: %w", idx, err)
	}

	var line string
	switch res.Status {
	case engine.StatusCommitted:
		line = fmt.Sprintf("submit base=%d op=%s -> committed rev=%d", step.BaseRevision, step.Op, res.Revision)
		if res.IdempotentReplay {
			line += " replay"
		}
	case engine.StatusConflict:
		line = fmt.Sprintf("submit base=%d op=%s -> conflict head=%d missing=%d",
			step.BaseRevision, step.Op, res.CurrentRevision, len(res.MissingEvents))
	case engine.StatusRejected:
		line = fmt.Sprintf("submit base=%d op=%s -> rejected reason=%s", step.BaseRevision, step.Op, res.Reason)
	}
	result.Trace = append(result.Trace, line)

	if step.Expect != "" && string(res.Status) != step.Expect {
		result.addError("step %d: expected %s, got %s", idx, step.Expect, res.Status)
	}
	return nil
}

// appendFinalState catches up from nothing, reduces locally, and records
// the head revision and canonical final state. Doubles as an end-to-end
// check of the catch-up contract.
func appendFinalState(ctx context.Context, eng *engine.Engine, document string, result *Result) error {
	cu, err := eng.CatchUp(ctx, document, 0)
	if err != nil {
		return fmt.Errorf("final catch_up: %w", err)
	}

	base := cu.BaseState
	if base == nil {
		base = model.Object{}
	}
	state, err := engine.Reduce(canvasop.NewRegistry(), base, cu.BaseRevision, cu.TailEvents)
	if err != nil {
		return fmt.Errorf("final reduce: %w", err)
	}

	canonical, err := model.MarshalCanonical(state)
	if err != nil {
		return fmt.Errorf("final state: %w", err)
	}

	result.Trace = append(result.Trace, fmt.Sprintf("final head=%d state=%s", cu.HeadRevision, canonical))
	return nil
}

// parseActor parses "kind:id", defaulting to human:tester.
func parseActor(s string) (model.Actor, error) {
	if s == "" {
		return model.Actor{Kind: model.ActorHuman, ID: "tester"}, nil
	}
	return model.ParseActor(s)
}
