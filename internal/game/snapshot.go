package game

import "sort"

// UserView is the externally visible part of a registered user. Authcodes
// never leave the engine.
type UserView struct {
	ID     UserID `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Tokens int64  `json:"free_tokens"`
}

// TaskView is a Task flattened for transport and traces.
type TaskView struct {
	ID            ObjectID `json:"object_id"`
	Type          string   `json:"task_type"`
	Length        int64    `json:"length"`
	MaxTokens     int64    `json:"max_tokens"`
	CurrentTokens int64    `json:"current_tokens"`
}

// Snapshot is a deterministic, serialization-friendly view of a State.
// Users and tasks are sorted by id, so two equal states always marshal to
// identical bytes. It is what clients receive on join and what replay
// verification compares.
type Snapshot struct {
	Phase          string     `json:"phase"`
	SprintCount    int64      `json:"sprint_count"`
	Users          []UserView `json:"users"`
	Tasks          []TaskView `json:"tasks"`
	ProductBacklog []ObjectID `json:"product_backlog"`
	SprintBacklog  []ObjectID `json:"sprint_backlog"`
}

// TakeSnapshot flattens s into a Snapshot.
func TakeSnapshot(s *State) Snapshot {
	snap := Snapshot{
		Phase:          s.Phase.String(),
		SprintCount:    s.SprintCount,
		ProductBacklog: append([]ObjectID(nil), s.ProductBacklog...),
		SprintBacklog:  append([]ObjectID(nil), s.SprintBacklog...),
	}

	for id, u := range s.Users {
		snap.Users = append(snap.Users, UserView{
			ID:     id,
			Name:   u.Name,
			Role:   u.Role.String(),
			Tokens: s.Budgets[id],
		})
	}
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].ID < snap.Users[j].ID })

	for id, ent := range s.Objects {
		task, ok := ent.(*Task)
		if !ok {
			continue
		}
		snap.Tasks = append(snap.Tasks, TaskView{
			ID:            id,
			Type:          task.Type.String(),
			Length:        task.Length,
			MaxTokens:     task.MaxTokens,
			CurrentTokens: task.CurrentTokens,
		})
	}
	sort.Slice(snap.Tasks, func(i, j int) bool { return snap.Tasks[i].ID < snap.Tasks[j].ID })

	if snap.Users == nil {
		snap.Users = []UserView{}
	}
	if snap.Tasks == nil {
		snap.Tasks = []TaskView{}
	}
	if snap.ProductBacklog == nil {
		snap.ProductBacklog = []ObjectID{}
	}
	if snap.SprintBacklog == nil {
		snap.SprintBacklog = []ObjectID{}
	}
	return snap
}
