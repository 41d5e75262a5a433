package game

// UserID identifies a user within one session.
type UserID int64

// ObjectID identifies a user-alterable entity within one session.
// Singleton interactables have fixed small ids; Task ids start at 1000.
type ObjectID int64

// RequestID identifies a request within one session. Ascending RequestID is
// the deterministic tie-break for requests sharing a tick.
type RequestID int64

// Tick is the discrete logical time-step a request is scheduled into.
type Tick int64

// Fixed identifier space for singleton interactables. Ids below TaskIDStart
// are reserved for singletons.
const (
	ProductBacklogID ObjectID = 10
	SprintBacklogID  ObjectID = 11

	// TaskIDStart is the first id handed to a created Task.
	TaskIDStart ObjectID = 1000
)
