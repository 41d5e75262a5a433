package game

// Operation names. Entity-scoped operations dispatch through the target
// entity's capability set; game-scoped operations dispatch through the fixed
// table in apply.go.
const (
	// Game-scoped.
	OpStartGame   = "start_game"
	OpBeginSprint = "begin_sprint"
	OpEndSprint   = "end_sprint"
	OpNextSprint  = "next_sprint"
	OpGrantTokens = "grant_tokens"
	OpAddTask     = "add_task"

	// Entity-scoped.
	OpAddToken = "add_token"
	OpMoveTask = "move_task"
)

// Argument keys. All operation arguments are integers, which keeps request
// application free of float coercion and map-ordering hazards.
const (
	ArgUserID    = "user_id"
	ArgTokens    = "tokens"
	ArgTaskType  = "task_type"
	ArgLength    = "length"
	ArgMaxTokens = "max_tokens"
	ArgTaskID    = "task_id"
)

// Request is a single timestamped command. Its effect is all-or-nothing:
// partial application is never observable.
//
// Target zero means the request is game-scoped; real object ids start at 10,
// so zero can never name an entity.
type Request struct {
	UserID     UserID           `json:"user_id"`
	Authcode   int64            `json:"authcode"`
	RequestID  RequestID        `json:"request_id"`
	TargetTick Tick             `json:"target_tick"`
	Target     ObjectID         `json:"target,omitempty"`
	Op         string           `json:"operation"`
	Args       map[string]int64 `json:"args,omitempty"`
}

// GameScoped reports whether the request dispatches against the game-level
// rule table rather than an entity's capability set.
func (r Request) GameScoped() bool { return r.Target == 0 }

// Update is the result of one Submit call: the requests newly accepted into
// the timeline and any previously committed requests the insertion knocked
// out. Clients use the invalidated list to roll back.
type Update struct {
	Committed   []Request `json:"new"`
	Invalidated []Request `json:"invalidates"`
}
