package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState_InitialWorld(t *testing.T) {
	s := NewState()

	assert.Equal(t, PhaseWaiting, s.Phase)
	assert.Equal(t, int64(0), s.SprintCount)
	assert.Equal(t, TaskIDStart, s.NextTaskID)
	assert.Empty(t, s.Users)
	assert.Empty(t, s.ProductBacklog)
	assert.Empty(t, s.SprintBacklog)

	// Backlog singletons are pre-registered under their fixed ids.
	require.Contains(t, s.Objects, ProductBacklogID)
	require.Contains(t, s.Objects, SprintBacklogID)
	assert.IsType(t, &Backlog{}, s.Objects[ProductBacklogID])
}

func TestState_Clone_Independent(t *testing.T) {
	s := NewState().WithUser(User{ID: 1, Name: "ada", Authcode: 42, Role: RoleLeader}, 3)
	s.Objects[TaskIDStart] = &Task{ObjectID: TaskIDStart, Type: TaskSimple, Length: 2, MaxTokens: 5}
	s.ProductBacklog = append(s.ProductBacklog, TaskIDStart)

	c := s.Clone()

	// Mutating the clone must not reach back into the original.
	c.Phase = PhaseSprint
	c.Budgets[1] = 99
	c.Objects[TaskIDStart].(*Task).CurrentTokens = 4
	c.ProductBacklog[0] = 777

	assert.Equal(t, PhaseWaiting, s.Phase)
	assert.Equal(t, int64(3), s.Budgets[1])
	assert.Equal(t, int64(0), s.Objects[TaskIDStart].(*Task).CurrentTokens)
	assert.Equal(t, TaskIDStart, s.ProductBacklog[0])
}

func TestState_WithUser_DoesNotMutateReceiver(t *testing.T) {
	s := NewState()
	s2 := s.WithUser(User{ID: 7, Name: "grace", Authcode: 1}, 2)

	assert.Empty(t, s.Users)
	require.Contains(t, s2.Users, UserID(7))
	assert.Equal(t, int64(2), s2.Budgets[7])
}

func TestState_Task_Lookup(t *testing.T) {
	s := NewState()
	s.Objects[TaskIDStart] = &Task{ObjectID: TaskIDStart, Type: TaskComplex, Length: 1, MaxTokens: 1}

	task, ok := s.Task(TaskIDStart)
	require.True(t, ok)
	assert.Equal(t, TaskComplex, task.Type)

	// A backlog id resolves an entity, but not a task.
	_, ok = s.Task(ProductBacklogID)
	assert.False(t, ok)

	_, ok = s.Task(555)
	assert.False(t, ok)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "WAITING", PhaseWaiting.String())
	assert.Equal(t, "PLANNING", PhasePlanning.String())
	assert.Equal(t, "SPRINT", PhaseSprint.String())
	assert.Equal(t, "RETROSPECTIVE", PhaseRetrospective.String())
}
