package journal

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintline/internal/game"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func seedSession(t *testing.T, j *Journal) int64 {
	t.Helper()
	ctx := context.Background()
	sid, err := j.RecordSession(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, j.RecordJoin(ctx, sid,
		game.User{ID: 1, Name: "ada", Authcode: 1111, Role: game.RoleLeader}, 0))
	require.NoError(t, j.RecordJoin(ctx, sid,
		game.User{ID: 2, Name: "lin", Authcode: 2222, Role: game.RoleUser}, 0))

	reqs := []game.Request{
		{UserID: 1, Authcode: 1111, RequestID: 1, TargetTick: 1, Op: game.OpStartGame},
		{UserID: 1, Authcode: 1111, RequestID: 2, TargetTick: 2, Op: game.OpAddTask,
			Args: map[string]int64{game.ArgTaskType: int64(game.TaskSimple), game.ArgLength: 2, game.ArgMaxTokens: 1}},
		{UserID: 1, Authcode: 1111, RequestID: 3, TargetTick: 3, Op: game.OpGrantTokens,
			Args: map[string]int64{game.ArgUserID: 2, game.ArgTokens: 1}},
		{UserID: 2, Authcode: 2222, RequestID: 4, TargetTick: 4, Target: game.TaskIDStart, Op: game.OpAddToken},
		// Rejected at arrival: the task is already at capacity.
		{UserID: 2, Authcode: 2222, RequestID: 5, TargetTick: 5, Target: game.TaskIDStart, Op: game.OpAddToken},
	}
	for _, req := range reqs {
		require.NoError(t, j.RecordRequest(ctx, sid, req))
	}
	return sid
}

func TestJournalRoundTrip(t *testing.T) {
	j := openTestJournal(t)
	sid := seedSession(t, j)
	ctx := context.Background()

	ids, err := j.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{sid}, ids)

	slot, err := j.Slot(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, int64(0), slot)

	joins, err := j.Joins(ctx, sid)
	require.NoError(t, err)
	require.Len(t, joins, 2)
	assert.Equal(t, game.RoleLeader, joins[0].User.Role)
	assert.Equal(t, "ada", joins[0].User.Name)

	reqs, err := j.Requests(ctx, sid)
	require.NoError(t, err)
	require.Len(t, reqs, 5)
	assert.Equal(t, game.OpStartGame, reqs[0].Op)
	assert.Equal(t, game.ObjectID(game.TaskIDStart), reqs[3].Target)
	assert.Equal(t, int64(2), reqs[1].Args[game.ArgLength])
	assert.Nil(t, reqs[0].Args)
}

func TestJournalDuplicateWritesAreIdempotent(t *testing.T) {
	j := openTestJournal(t)
	sid := seedSession(t, j)
	ctx := context.Background()

	require.NoError(t, j.RecordRequest(ctx, sid, game.Request{
		UserID: 1, Authcode: 9999, RequestID: 1, TargetTick: 7, Op: game.OpEndSprint,
	}))

	reqs, err := j.Requests(ctx, sid)
	require.NoError(t, err)
	require.Len(t, reqs, 5)
	assert.Equal(t, game.OpStartGame, reqs[0].Op, "first write wins")
}

func TestJournalSlotLifetimesStaySeparate(t *testing.T) {
	j := openTestJournal(t)
	first := seedSession(t, j)
	ctx := context.Background()

	// The slot is destroyed and reallocated; the new lifetime gets a new
	// journal id and an empty history.
	second, err := j.RecordSession(ctx, 0)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	reqs, err := j.Requests(ctx, second)
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestJournalRebuildReplaysHistory(t *testing.T) {
	j := openTestJournal(t)
	sid := seedSession(t, j)

	g, err := j.Rebuild(context.Background(), sid, silentLogger())
	require.NoError(t, err)

	s := g.State()
	assert.Equal(t, game.PhasePlanning, s.Phase)
	task, ok := s.Task(game.TaskIDStart)
	require.True(t, ok)
	assert.Equal(t, int64(1), task.CurrentTokens)
	assert.Len(t, g.Timeline(), 4, "the at-capacity spend stays uncommitted")
}

func TestJournalVerifyReportsDeterministicSession(t *testing.T) {
	j := openTestJournal(t)
	sid := seedSession(t, j)

	report, err := j.Verify(context.Background(), sid, silentLogger())
	require.NoError(t, err)
	assert.True(t, report.Match)
	assert.Equal(t, sid, report.SessionID)
	assert.Equal(t, int64(0), report.Slot)
	assert.Equal(t, 2, report.Users)
	assert.Equal(t, 5, report.Requests)
	assert.Equal(t, 4, report.Committed)
	assert.Len(t, report.StateDigest, 64)
}
