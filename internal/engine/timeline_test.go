package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintline/internal/game"
)

func tlReq(id game.RequestID, tick game.Tick) game.Request {
	return game.Request{RequestID: id, TargetTick: tick, Op: game.OpStartGame}
}

func TestTimelineInsertKeepsReplayOrder(t *testing.T) {
	tl := NewTimeline()
	tl.Insert(tlReq(7, 5))
	tl.Insert(tlReq(2, 5))
	tl.Insert(tlReq(9, 1))
	tl.Insert(tlReq(4, 9))

	var got []game.RequestID
	tl.Ascend(func(req game.Request) bool {
		got = append(got, req.RequestID)
		return true
	})
	assert.Equal(t, []game.RequestID{9, 2, 7, 4}, got)
	assert.Equal(t, 4, tl.Len())
}

func TestTimelineSameTickOrderedByRequestID(t *testing.T) {
	tl := NewTimeline()
	tl.Insert(tlReq(30, 4))
	tl.Insert(tlReq(10, 4))
	tl.Insert(tlReq(20, 4))

	bucket := tl.At(4)
	require.Len(t, bucket, 3)
	assert.Equal(t, game.RequestID(10), bucket[0].RequestID)
	assert.Equal(t, game.RequestID(20), bucket[1].RequestID)
	assert.Equal(t, game.RequestID(30), bucket[2].RequestID)
}

func TestTimelineRemove(t *testing.T) {
	tl := NewTimeline()
	tl.Insert(tlReq(1, 3))
	tl.Insert(tlReq(2, 3))

	require.True(t, tl.Remove(1))
	assert.False(t, tl.Contains(1))
	assert.True(t, tl.Contains(2))
	assert.False(t, tl.Remove(1), "second removal of the same id")

	require.True(t, tl.Remove(2))
	assert.Empty(t, tl.At(3), "bucket gone once its last request is removed")
	assert.Empty(t, tl.Ticks())
}

func TestTimelineBeforeAndFrom(t *testing.T) {
	tl := NewTimeline()
	tl.Insert(tlReq(1, 2))
	tl.Insert(tlReq(5, 4))
	tl.Insert(tlReq(6, 4))
	tl.Insert(tlReq(8, 7))

	before := tl.Before(4, 6)
	require.Len(t, before, 2)
	assert.Equal(t, game.RequestID(1), before[0].RequestID)
	assert.Equal(t, game.RequestID(5), before[1].RequestID)

	from := tl.From(4, 6)
	require.Len(t, from, 1, "the pivot id itself is excluded")
	assert.Equal(t, game.RequestID(8), from[0].RequestID)

	// A pivot at an unoccupied position splits cleanly.
	assert.Len(t, tl.Before(5, 1), 3)
	assert.Len(t, tl.From(5, 1), 1)
}
