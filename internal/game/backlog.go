package game

// Backlog is a singleton interactable holding an ordered run of Task ids.
// Two instances exist per session: the product backlog (id 10) and the
// sprint backlog (id 11). The ordering itself lives on State so that both
// backlogs move atomically with the snapshot.
type Backlog struct {
	ObjectID ObjectID `json:"object_id"`
}

// ID implements Entity.
func (b *Backlog) ID() ObjectID { return b.ObjectID }

// Clone implements Entity.
func (b *Backlog) Clone() Entity {
	c := *b
	return &c
}

// Op implements Entity. Backlogs support a single operation, move_task.
func (b *Backlog) Op(name string) (EntityOp, bool) {
	switch name {
	case OpMoveTask:
		return applyMoveTask, true
	default:
		return nil, false
	}
}

// applyMoveTask moves a task out of the targeted backlog into its
// counterpart. Only legal during PLANNING; the task must currently sit in
// the targeted backlog.
func applyMoveTask(s *State, req Request) (*State, error) {
	if s.Phase != PhasePlanning {
		return nil, Rejectf(RejectRule, "move_task requires PLANNING phase, game is in %s", s.Phase)
	}
	taskID := ObjectID(req.Args[ArgTaskID])
	if _, ok := s.Objects[taskID].(*Task); !ok {
		return nil, Rejectf(RejectRule, "no task with id %d", taskID)
	}

	var from, to []ObjectID
	switch req.Target {
	case ProductBacklogID:
		from, to = s.ProductBacklog, s.SprintBacklog
	case SprintBacklogID:
		from, to = s.SprintBacklog, s.ProductBacklog
	default:
		return nil, Rejectf(RejectRule, "object %d is not a backlog", req.Target)
	}

	at := -1
	for i, id := range from {
		if id == taskID {
			at = i
			break
		}
	}
	if at < 0 {
		return nil, Rejectf(RejectRule, "task %d is not in backlog %d", taskID, req.Target)
	}

	next := s.Clone()
	nextFrom := append(append([]ObjectID(nil), from[:at]...), from[at+1:]...)
	nextTo := append(append([]ObjectID(nil), to...), taskID)
	if req.Target == ProductBacklogID {
		next.ProductBacklog, next.SprintBacklog = nextFrom, nextTo
	} else {
		next.SprintBacklog, next.ProductBacklog = nextFrom, nextTo
	}
	return next, nil
}
