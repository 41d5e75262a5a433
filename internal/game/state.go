package game

// Phase is the current stage of a session's lifecycle.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePlanning
	PhaseSprint
	PhaseRetrospective
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "WAITING"
	case PhasePlanning:
		return "PLANNING"
	case PhaseSprint:
		return "SPRINT"
	case PhaseRetrospective:
		return "RETROSPECTIVE"
	default:
		return "UNKNOWN"
	}
}

// State is a full snapshot of the world at one point in the committed
// history. A State is immutable once produced: transitions always return a
// new value built with Clone, never edit a snapshot another reference may
// still observe.
//
// INVARIANTS:
//   - every Task id referenced by either backlog is a key in Objects
//   - ObjectIDs are unique across all entity kinds
//   - NextTaskID only grows, so replayed task creation allocates the same ids
type State struct {
	Objects map[ObjectID]Entity
	Users   map[UserID]User

	// Budgets holds each user's remaining free-token budget. Kept off the
	// immutable User record so grants and spends flow through snapshots.
	Budgets map[UserID]int64

	ProductBacklog []ObjectID
	SprintBacklog  []ObjectID

	Phase       Phase
	SprintCount int64
	NextTaskID  ObjectID
}

// NewState returns the empty initial world: WAITING phase, no users, and the
// two backlog singletons registered under their fixed ids.
func NewState() *State {
	return &State{
		Objects: map[ObjectID]Entity{
			ProductBacklogID: &Backlog{ObjectID: ProductBacklogID},
			SprintBacklogID:  &Backlog{ObjectID: SprintBacklogID},
		},
		Users:      make(map[UserID]User),
		Budgets:    make(map[UserID]int64),
		Phase:      PhaseWaiting,
		NextTaskID: TaskIDStart,
	}
}

// Clone returns a deep copy safe for independent mutation. Handlers clone,
// mutate the clone, and return it; the receiver is never touched.
func (s *State) Clone() *State {
	next := &State{
		Objects:        make(map[ObjectID]Entity, len(s.Objects)),
		Users:          make(map[UserID]User, len(s.Users)),
		Budgets:        make(map[UserID]int64, len(s.Budgets)),
		ProductBacklog: append([]ObjectID(nil), s.ProductBacklog...),
		SprintBacklog:  append([]ObjectID(nil), s.SprintBacklog...),
		Phase:          s.Phase,
		SprintCount:    s.SprintCount,
		NextTaskID:     s.NextTaskID,
	}
	for id, e := range s.Objects {
		next.Objects[id] = e.Clone()
	}
	for id, u := range s.Users {
		next.Users[id] = u
	}
	for id, b := range s.Budgets {
		next.Budgets[id] = b
	}
	return next
}

// WithUser returns a copy of s with a user registered and an initial
// free-token budget assigned. Used by the session registry to grow the
// baseline; joining is not a timeline operation.
func (s *State) WithUser(u User, tokens int64) *State {
	next := s.Clone()
	next.Users[u.ID] = u
	next.Budgets[u.ID] = tokens
	return next
}

// Task returns the task with the given id, or false if the id is absent or
// names a different entity kind.
func (s *State) Task(id ObjectID) (*Task, bool) {
	t, ok := s.Objects[id].(*Task)
	return t, ok
}
