package game

// EntityOp applies an entity-scoped operation to a state, returning the
// successor state. The target entity is identified by req.Target; handlers
// look it up in the (cloned) state rather than closing over a pointer, so a
// handler can never mutate an entity owned by an older snapshot.
type EntityOp func(s *State, req Request) (*State, error)

// Entity is any user-alterable in-game object. Each variant exposes a fixed,
// compile-time-checked capability set of named operations through Op; the
// base contributes no operations itself.
//
// Entities are owned exclusively by the State snapshot that contains them.
// Clone must return a deep copy safe for independent mutation.
type Entity interface {
	ID() ObjectID
	Clone() Entity

	// Op returns the handler for a named operation, or false if this
	// entity variant does not support it.
	Op(name string) (EntityOp, bool)
}
