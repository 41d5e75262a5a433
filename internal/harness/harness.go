// Package harness runs declarative YAML scenarios against the resolution
// engine. A scenario joins a fixed cast, submits a flow of requests in
// arrival order, checks each outcome, and asserts on the final world.
// Credentials and request ids are assigned deterministically, so a
// scenario's trace is stable across runs and suitable for golden
// comparison.
package harness

import (
	"fmt"
	"io"
	"log/slog"

	"sprintline/internal/engine"
	"sprintline/internal/game"
)

// Authcodes are fixed per cast position so traces never vary.
const authcodeBase = 1000

// TraceEvent records the resolution of one flow step.
type TraceEvent struct {
	Seq         int     `json:"seq"`
	User        string  `json:"user"`
	Op          string  `json:"op"`
	Tick        int64   `json:"tick"`
	Target      int64   `json:"target,omitempty"`
	Outcome     string  `json:"outcome"`
	Invalidated []int64 `json:"invalidated,omitempty"`
}

// Result is the outcome of running a scenario.
type Result struct {
	Trace []TraceEvent
	Final game.Snapshot
	Game  *engine.Game
}

// Run executes the scenario and checks every step expectation and final
// assertion. The returned Result carries the full trace even when the
// scenario passes; callers compare it against golden files.
func Run(scenario *Scenario) (*Result, error) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := engine.NewGame(log)

	cast := make(map[string]game.User, len(scenario.Users))
	for i, u := range scenario.Users {
		role := game.RoleUser
		if i == 0 {
			role = game.RoleLeader
		}
		user := game.User{
			ID:       game.UserID(i + 1),
			Name:     u.Name,
			Authcode: authcodeBase + int64(i),
			Role:     role,
		}
		if err := g.Join(user, u.Tokens); err != nil {
			return nil, fmt.Errorf("join %s: %w", u.Name, err)
		}
		cast[u.Name] = user
	}

	result := &Result{Game: g}
	for i, step := range scenario.Flow {
		u := cast[step.User]
		req := game.Request{
			UserID:     u.ID,
			Authcode:   u.Authcode,
			RequestID:  game.RequestID(i + 1),
			TargetTick: game.Tick(step.Tick),
			Target:     game.ObjectID(step.Target),
			Op:         step.Op,
			Args:       step.Args,
		}
		update, err := g.Submit(req)
		if err != nil {
			return nil, fmt.Errorf("flow[%d] %s: %w", i, step.Op, err)
		}

		event := TraceEvent{
			Seq:     i + 1,
			User:    step.User,
			Op:      step.Op,
			Tick:    step.Tick,
			Target:  step.Target,
			Outcome: outcome(req, update),
		}
		for _, inv := range update.Invalidated {
			if inv.RequestID != req.RequestID {
				event.Invalidated = append(event.Invalidated, int64(inv.RequestID))
			}
		}
		result.Trace = append(result.Trace, event)

		if event.Outcome != step.Expect {
			return result, fmt.Errorf("flow[%d] %s: expected %s, got %s",
				i, step.Op, step.Expect, event.Outcome)
		}
		if len(event.Invalidated) != step.Invalidates {
			return result, fmt.Errorf("flow[%d] %s: expected %d invalidated, got %d",
				i, step.Op, step.Invalidates, len(event.Invalidated))
		}
	}

	result.Final = game.TakeSnapshot(g.State())
	if err := checkAssertions(scenario, result); err != nil {
		return result, err
	}
	return result, nil
}

func outcome(req game.Request, update game.Update) string {
	if len(update.Committed) == 1 && update.Committed[0].RequestID == req.RequestID {
		return ExpectCommitted
	}
	return ExpectRejected
}

func checkAssertions(scenario *Scenario, result *Result) error {
	s := result.Game.State()
	for i, a := range scenario.Assertions {
		switch a.Type {
		case AssertPhase:
			if got := s.Phase.String(); got != a.Phase {
				return fmt.Errorf("assertions[%d]: phase is %s, want %s", i, got, a.Phase)
			}
		case AssertSprintCount:
			if s.SprintCount != a.Value {
				return fmt.Errorf("assertions[%d]: sprint_count is %d, want %d", i, s.SprintCount, a.Value)
			}
		case AssertBudget:
			var id game.UserID
			for uid, u := range s.Users {
				if u.Name == a.User {
					id = uid
				}
			}
			if got := s.Budgets[id]; got != a.Value {
				return fmt.Errorf("assertions[%d]: budget of %s is %d, want %d", i, a.User, got, a.Value)
			}
		case AssertTaskTokens:
			task, ok := s.Task(game.ObjectID(a.Task))
			if !ok {
				return fmt.Errorf("assertions[%d]: no task %d", i, a.Task)
			}
			if task.CurrentTokens != a.Value {
				return fmt.Errorf("assertions[%d]: task %d holds %d tokens, want %d",
					i, a.Task, task.CurrentTokens, a.Value)
			}
		case AssertTimelineLen:
			if got := int64(len(result.Game.Timeline())); got != a.Value {
				return fmt.Errorf("assertions[%d]: timeline holds %d requests, want %d", i, got, a.Value)
			}
		case AssertBacklog:
			backlog := s.ProductBacklog
			if a.Backlog == "sprint" {
				backlog = s.SprintBacklog
			}
			if len(backlog) != len(a.Tasks) {
				return fmt.Errorf("assertions[%d]: %s backlog has %d tasks, want %d",
					i, a.Backlog, len(backlog), len(a.Tasks))
			}
			for j, id := range a.Tasks {
				if int64(backlog[j]) != id {
					return fmt.Errorf("assertions[%d]: %s backlog[%d] is %d, want %d",
						i, a.Backlog, j, backlog[j], id)
				}
			}
		}
	}
	return nil
}
