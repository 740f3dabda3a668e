package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: an ordered sequence of
// submissions (and snapshot/catch-up probes) against one document, with
// the expected outcome of each step. Scenarios can be declared in Go or
// loaded from YAML.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Document is the document ID all steps run against.
	Document string `yaml:"document"`

	// Steps is the ordered list of actions.
	Steps []Step `yaml:"steps"`
}

// Step is one action in a scenario. Exactly one of Submit, Snapshot, or
// CatchUp must be set.
type Step struct {
	Submit   *SubmitStep  `yaml:"submit,omitempty"`
	Snapshot bool         `yaml:"snapshot,omitempty"`
	CatchUp  *CatchUpStep `yaml:"catch_up,omitempty"`
}

// SubmitStep submits one command.
type SubmitStep struct {
	// BaseRevision is the revision the command claims as current.
	BaseRevision int64 `yaml:"base_revision"`

	// Actor is "kind:id", e.g. "human:alice" or "agent:composer".
	// Defaults to "human:tester".
	Actor string `yaml:"actor,omitempty"`

	// Op is the operation kind.
	Op string `yaml:"op"`

	// Args are the operation arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// IdempotencyKey overrides the generated key. Two steps sharing a key
	// exercise idempotent replay.
	IdempotencyKey string `yaml:"idempotency_key,omitempty"`

	// Expect is the expected status: "committed", "conflict", "rejected".
	// Empty means no expectation is checked.
	Expect string `yaml:"expect,omitempty"`
}

// CatchUpStep probes the catch-up service.
type CatchUpStep struct {
	// KnownRevision is the cursor to catch up from.
	KnownRevision int64 `yaml:"known_revision"`
}

// Validate checks scenario well-formedness before execution.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if s.Document == "" {
		return fmt.Errorf("scenario document is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}
	for i, step := range s.Steps {
		n := 0
		if step.Submit != nil {
			n++
			if step.Submit.Op == "" {
				return fmt.Errorf("step %d: submit op is required", i)
			}
		}
		if step.Snapshot {
			n++
		}
		if step.CatchUp != nil {
			n++
		}
		if n != 1 {
			return fmt.Errorf("step %d: exactly one of submit, snapshot, catch_up required", i)
		}
	}
	return nil
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}
