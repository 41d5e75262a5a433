package game

// GameOp applies a game-scoped operation to a state.
type GameOp func(s *State, req Request) (*State, error)

// gameOps is the fixed table of game-level rules. The table is assembled at
// init and never registered into at runtime; adding a rule means adding a
// compile-time entry here.
var gameOps = map[string]GameOp{
	OpStartGame:   applyStartGame,
	OpBeginSprint: applyBeginSprint,
	OpEndSprint:   applyEndSprint,
	OpNextSprint:  applyNextSprint,
	OpGrantTokens: applyGrantTokens,
	OpAddTask:     applyAddTask,
}

// Apply routes a request to the rule that decides it and returns the
// successor state. The returned error is either a *Rejection (the request is
// invalid under s) or nil; Apply itself never faults.
//
// The authcode re-check is the first validation step of every request: a
// request claiming an unknown user or carrying the wrong secret is rejected
// before any rule sees it.
func Apply(s *State, req Request) (*State, error) {
	u, ok := s.Users[req.UserID]
	if !ok {
		return nil, Rejectf(RejectUnauthorized, "unknown user %d", req.UserID)
	}
	if u.Authcode != req.Authcode {
		return nil, Rejectf(RejectUnauthorized, "authcode mismatch for user %d", req.UserID)
	}

	if req.GameScoped() {
		op, ok := gameOps[req.Op]
		if !ok {
			return nil, Rejectf(RejectUnknownOperation, "no game operation %q", req.Op)
		}
		return op(s, req)
	}

	target, ok := s.Objects[req.Target]
	if !ok {
		return nil, Rejectf(RejectUnknownTarget, "no object with id %d", req.Target)
	}
	op, ok := target.Op(req.Op)
	if !ok {
		return nil, Rejectf(RejectUnknownOperation, "object %d does not support %q", req.Target, req.Op)
	}
	return op(s, req)
}

// requireLeader rejects unless the requesting user holds the LEADER role.
// The user is known to exist; Apply already authenticated the request.
func requireLeader(s *State, req Request) error {
	if s.Users[req.UserID].Role != RoleLeader {
		return Rejectf(RejectRule, "%s requires the LEADER role", req.Op)
	}
	return nil
}

// requirePhase rejects unless the game is in the given phase.
func requirePhase(s *State, req Request, p Phase) error {
	if s.Phase != p {
		return Rejectf(RejectRule, "%s requires %s phase, game is in %s", req.Op, p, s.Phase)
	}
	return nil
}

// applyStartGame begins the first planning phase. LEADER-only, legal only
// while the session is still waiting for players.
func applyStartGame(s *State, req Request) (*State, error) {
	if err := requireLeader(s, req); err != nil {
		return nil, err
	}
	if err := requirePhase(s, req, PhaseWaiting); err != nil {
		return nil, err
	}
	next := s.Clone()
	next.Phase = PhasePlanning
	return next, nil
}

// applyBeginSprint moves PLANNING -> SPRINT. LEADER-only.
func applyBeginSprint(s *State, req Request) (*State, error) {
	if err := requireLeader(s, req); err != nil {
		return nil, err
	}
	if err := requirePhase(s, req, PhasePlanning); err != nil {
		return nil, err
	}
	next := s.Clone()
	next.Phase = PhaseSprint
	return next, nil
}

// applyEndSprint moves SPRINT -> RETROSPECTIVE. LEADER-only.
func applyEndSprint(s *State, req Request) (*State, error) {
	if err := requireLeader(s, req); err != nil {
		return nil, err
	}
	if err := requirePhase(s, req, PhaseSprint); err != nil {
		return nil, err
	}
	next := s.Clone()
	next.Phase = PhaseRetrospective
	return next, nil
}

// applyNextSprint loops RETROSPECTIVE -> PLANNING and counts the re-entry.
// SprintCount stays zero through the first planning phase; each loop back
// increments it.
func applyNextSprint(s *State, req Request) (*State, error) {
	if err := requireLeader(s, req); err != nil {
		return nil, err
	}
	if err := requirePhase(s, req, PhaseRetrospective); err != nil {
		return nil, err
	}
	next := s.Clone()
	next.Phase = PhasePlanning
	next.SprintCount++
	return next, nil
}

// applyGrantTokens adds to a user's free-token budget. LEADER-only and
// restricted to PLANNING, so a later-phase insertion upstream of a grant
// retroactively invalidates it along with every spend built on it.
func applyGrantTokens(s *State, req Request) (*State, error) {
	if err := requireLeader(s, req); err != nil {
		return nil, err
	}
	if err := requirePhase(s, req, PhasePlanning); err != nil {
		return nil, err
	}
	target := UserID(req.Args[ArgUserID])
	if _, ok := s.Users[target]; !ok {
		return nil, Rejectf(RejectRule, "grant_tokens: no user %d", target)
	}
	tokens := req.Args[ArgTokens]
	if tokens <= 0 {
		return nil, Rejectf(RejectRule, "grant_tokens: token count must be positive, got %d", tokens)
	}
	next := s.Clone()
	next.Budgets[target] += tokens
	return next, nil
}

// applyAddTask creates a Task in the product backlog. LEADER-only, PLANNING
// phase. Task ids come from the snapshot's own counter so replay allocates
// identical ids.
func applyAddTask(s *State, req Request) (*State, error) {
	if err := requireLeader(s, req); err != nil {
		return nil, err
	}
	if err := requirePhase(s, req, PhasePlanning); err != nil {
		return nil, err
	}
	taskType := TaskType(req.Args[ArgTaskType])
	if !taskType.Valid() {
		return nil, Rejectf(RejectRule, "add_task: invalid task type %d", req.Args[ArgTaskType])
	}
	length := req.Args[ArgLength]
	if length <= 0 {
		return nil, Rejectf(RejectRule, "add_task: length must be positive, got %d", length)
	}
	maxTokens := req.Args[ArgMaxTokens]
	if maxTokens <= 0 {
		return nil, Rejectf(RejectRule, "add_task: max_tokens must be positive, got %d", maxTokens)
	}

	next := s.Clone()
	id := next.NextTaskID
	next.NextTaskID++
	next.Objects[id] = &Task{
		ObjectID:  id,
		Type:      taskType,
		Length:    length,
		MaxTokens: maxTokens,
	}
	next.ProductBacklog = append(next.ProductBacklog, id)
	return next, nil
}
