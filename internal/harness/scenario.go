package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative conformance test: a cast of users, a flow of
// submissions, and assertions on the resolved world. Scenarios run against
// the real resolution engine with deterministic credentials, so the same
// file always produces the same trace.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Users joins the cast in order. The first user is the session LEADER.
	Users []UserStep `yaml:"users"`

	// Flow is the submission sequence, in arrival order. Request ids are
	// assigned sequentially from 1.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final state after the whole flow resolved.
	Assertions []Assertion `yaml:"assertions"`
}

// UserStep joins one user before the flow starts.
type UserStep struct {
	// Name is the display name, referenced by flow steps.
	Name string `yaml:"name"`

	// Tokens is the user's starting free-token budget.
	Tokens int64 `yaml:"tokens"`
}

// FlowStep is one submission.
type FlowStep struct {
	// User names the submitting cast member.
	User string `yaml:"user"`

	// Tick is the target tick.
	Tick int64 `yaml:"tick"`

	// Target is the object id for entity-scoped operations; zero (or
	// absent) means game-scoped.
	Target int64 `yaml:"target,omitempty"`

	// Op is the operation name.
	Op string `yaml:"op"`

	// Args are the integer operation arguments.
	Args map[string]int64 `yaml:"args,omitempty"`

	// Expect is the required outcome, "committed" or "rejected".
	Expect string `yaml:"expect"`

	// Invalidates is the required number of previously committed requests
	// knocked out by this submission.
	Invalidates int `yaml:"invalidates,omitempty"`
}

// Expected flow outcomes.
const (
	ExpectCommitted = "committed"
	ExpectRejected  = "rejected"
)

// Assertion validates one fact about the final state.
type Assertion struct {
	// Type is one of "phase", "sprint_count", "budget", "task_tokens",
	// "timeline_len", "backlog".
	Type string `yaml:"type"`

	// User names a cast member (budget).
	User string `yaml:"user,omitempty"`

	// Task is a task object id (task_tokens).
	Task int64 `yaml:"task,omitempty"`

	// Backlog is "product" or "sprint" (backlog).
	Backlog string `yaml:"backlog,omitempty"`

	// Phase is the expected phase name (phase).
	Phase string `yaml:"phase,omitempty"`

	// Value is the expected integer (sprint_count, budget, task_tokens,
	// timeline_len).
	Value int64 `yaml:"value,omitempty"`

	// Tasks is the expected backlog content in order (backlog).
	Tasks []int64 `yaml:"tasks,omitempty"`
}

// Assertion type constants.
const (
	AssertPhase       = "phase"
	AssertSprintCount = "sprint_count"
	AssertBudget      = "budget"
	AssertTaskTokens  = "task_tokens"
	AssertTimelineLen = "timeline_len"
	AssertBacklog     = "backlog"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Users) == 0 {
		return fmt.Errorf("users list is required and must be non-empty")
	}
	cast := make(map[string]bool, len(s.Users))
	for i, u := range s.Users {
		if u.Name == "" {
			return fmt.Errorf("users[%d]: name is required", i)
		}
		if cast[u.Name] {
			return fmt.Errorf("users[%d]: duplicate name %q", i, u.Name)
		}
		if u.Tokens < 0 {
			return fmt.Errorf("users[%d]: tokens must not be negative", i)
		}
		cast[u.Name] = true
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	for i, step := range s.Flow {
		if !cast[step.User] {
			return fmt.Errorf("flow[%d]: unknown user %q", i, step.User)
		}
		if step.Op == "" {
			return fmt.Errorf("flow[%d]: op is required", i)
		}
		if step.Expect != ExpectCommitted && step.Expect != ExpectRejected {
			return fmt.Errorf("flow[%d]: expect must be %q or %q", i, ExpectCommitted, ExpectRejected)
		}
		if step.Invalidates < 0 {
			return fmt.Errorf("flow[%d]: invalidates must not be negative", i)
		}
		if step.Expect == ExpectRejected && step.Invalidates != 0 {
			return fmt.Errorf("flow[%d]: a rejected step cannot invalidate committed requests", i)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, cast); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion, cast map[string]bool) error {
	switch a.Type {
	case AssertPhase:
		if a.Phase == "" {
			return fmt.Errorf("assertions[%d]: phase is required", index)
		}
	case AssertSprintCount, AssertTimelineLen:
		// Value alone; zero is meaningful.
	case AssertBudget:
		if !cast[a.User] {
			return fmt.Errorf("assertions[%d]: unknown user %q", index, a.User)
		}
	case AssertTaskTokens:
		if a.Task == 0 {
			return fmt.Errorf("assertions[%d]: task is required for task_tokens", index)
		}
	case AssertBacklog:
		if a.Backlog != "product" && a.Backlog != "sprint" {
			return fmt.Errorf("assertions[%d]: backlog must be \"product\" or \"sprint\"", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
