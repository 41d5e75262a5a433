package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintline/internal/game"
	"sprintline/internal/journal"
)

func seedJournal(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	jnl, err := journal.Open(path)
	require.NoError(t, err)
	defer jnl.Close()

	ctx := context.Background()
	sid, err := jnl.RecordSession(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, jnl.RecordJoin(ctx, sid,
		game.User{ID: 1, Name: "ada", Authcode: 1111, Role: game.RoleLeader}, 0))
	require.NoError(t, jnl.RecordRequest(ctx, sid, game.Request{
		UserID: 1, Authcode: 1111, RequestID: 1, TargetTick: 1, Op: game.OpStartGame,
	}))
	return path
}

func TestReplayVerifiesJournal(t *testing.T) {
	path := seedJournal(t)

	out, err := execute(t, "replay", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "session 1: ok")
}

func TestReplayJSONOutput(t *testing.T) {
	path := seedJournal(t)

	out, err := execute(t, "replay", "--db", path, "--format", "json")
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	payload, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result ReplayResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.True(t, result.AllDeterministic)
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, 1, result.Sessions[0].Committed)
}

func TestReplayEmptyJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	jnl, err := journal.Open(path)
	require.NoError(t, err)
	jnl.Close()

	out, err := execute(t, "replay", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions")
}

func TestReplayMissingDatabaseFlag(t *testing.T) {
	_, err := execute(t, "replay")
	assert.Error(t, err)
}
