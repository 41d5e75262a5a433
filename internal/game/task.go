package game

// TaskType classifies a Task by its complexity domain.
type TaskType int

const (
	TaskSimple TaskType = iota + 1
	TaskComplicated
	TaskComplex
	TaskChaotic
)

// Valid reports whether t is one of the defined task types.
func (t TaskType) Valid() bool {
	return t >= TaskSimple && t <= TaskChaotic
}

// String returns the task type name.
func (t TaskType) String() string {
	switch t {
	case TaskSimple:
		return "SIMPLE"
	case TaskComplicated:
		return "COMPLICATED"
	case TaskComplex:
		return "COMPLEX"
	case TaskChaotic:
		return "CHAOTIC"
	default:
		return "UNKNOWN"
	}
}

// Task is an in-game work item. Users commit effort to a Task one token at a
// time via the add_token operation, up to the task's MaxTokens capacity.
type Task struct {
	ObjectID      ObjectID `json:"object_id"`
	Type          TaskType `json:"task_type"`
	Length        int64    `json:"length"`
	MaxTokens     int64    `json:"max_tokens"`
	CurrentTokens int64    `json:"current_tokens"`
}

// ID implements Entity.
func (t *Task) ID() ObjectID { return t.ObjectID }

// Clone implements Entity.
func (t *Task) Clone() Entity {
	c := *t
	return &c
}

// Op implements Entity. Tasks support a single operation, add_token.
func (t *Task) Op(name string) (EntityOp, bool) {
	switch name {
	case OpAddToken:
		return applyAddToken, true
	default:
		return nil, false
	}
}

// applyAddToken spends one token from the requesting user's budget on the
// target task. Rejected when the budget is exhausted or the task is full.
func applyAddToken(s *State, req Request) (*State, error) {
	if s.Budgets[req.UserID] <= 0 {
		return nil, Rejectf(RejectRule, "user %d has no free tokens", req.UserID)
	}
	task, ok := s.Objects[req.Target].(*Task)
	if !ok {
		return nil, Rejectf(RejectRule, "object %d is not a task", req.Target)
	}
	if task.CurrentTokens >= task.MaxTokens {
		return nil, Rejectf(RejectRule, "task %d is at capacity (%d/%d)",
			task.ObjectID, task.CurrentTokens, task.MaxTokens)
	}

	next := s.Clone()
	nt := next.Objects[req.Target].(*Task)
	nt.CurrentTokens++
	next.Budgets[req.UserID]--
	return next, nil
}
