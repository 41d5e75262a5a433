package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintline/internal/game"
)

func sequentialAuthcodes() Authcoder {
	next := int64(1000)
	return AuthcoderFunc(func() int64 {
		next++
		return next
	})
}

func newTestRegistry() *Registry {
	return NewRegistry(silentLogger(), sequentialAuthcodes(), 3)
}

func TestRegistryFirstJoinerLeadsSession(t *testing.T) {
	r := newTestRegistry()
	id := r.Create()

	first, err := r.Join(id, "ada")
	require.NoError(t, err)
	assert.Equal(t, game.RoleLeader, first.Role)
	assert.Equal(t, game.UserID(1), first.UserID)
	assert.NotZero(t, first.Authcode)

	second, err := r.Join(id, "lin")
	require.NoError(t, err)
	assert.Equal(t, game.RoleUser, second.Role)
	assert.Equal(t, game.UserID(2), second.UserID)
	assert.NotEqual(t, first.Authcode, second.Authcode)
}

func TestRegistryJoinSeedsBudget(t *testing.T) {
	r := newTestRegistry()
	id := r.Create()
	creds, err := r.Join(id, "ada")
	require.NoError(t, err)

	g, err := r.Game(id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), g.State().Budgets[creds.UserID])
}

func TestRegistryCredentialsPassEngineAuth(t *testing.T) {
	r := newTestRegistry()
	id := r.Create()
	creds, err := r.Join(id, "ada")
	require.NoError(t, err)

	g, err := r.Game(id)
	require.NoError(t, err)
	up, err := g.Submit(game.Request{
		UserID:     creds.UserID,
		Authcode:   creds.Authcode,
		RequestID:  g.NextRequestID(),
		TargetTick: 1,
		Op:         game.OpStartGame,
	})
	require.NoError(t, err)
	assert.Len(t, up.Committed, 1)

	// The same request with a forged code is turned away.
	up, err = g.Submit(game.Request{
		UserID:     creds.UserID,
		Authcode:   creds.Authcode + 1,
		RequestID:  g.NextRequestID(),
		TargetTick: 2,
		Op:         game.OpBeginSprint,
	})
	require.NoError(t, err)
	assert.Empty(t, up.Committed)
}

func TestRegistryJoinNormalizesNames(t *testing.T) {
	r := newTestRegistry()
	id := r.Create()

	// "é" as e + combining acute; stored in composed form.
	creds, err := r.Join(id, "  réna  ")
	require.NoError(t, err)

	g, err := r.Game(id)
	require.NoError(t, err)
	assert.Equal(t, "réna", g.State().Users[creds.UserID].Name)
}

func TestRegistryJoinRejectsBlankName(t *testing.T) {
	r := newTestRegistry()
	id := r.Create()
	_, err := r.Join(id, "   ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestRegistryDestroyFreesID(t *testing.T) {
	r := newTestRegistry()
	a := r.Create()
	b := r.Create()
	require.NoError(t, r.Destroy(a))

	_, err := r.Game(a)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = r.Join(a, "ghost")
	assert.ErrorIs(t, err, ErrNoSession)

	assert.Equal(t, a, r.Create(), "freed id is reused")
	_, err = r.Game(b)
	assert.NoError(t, err)
	assert.Equal(t, 2, r.Live())
}
