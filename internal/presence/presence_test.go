package presence

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_FirstConnectionOnly(t *testing.T) {
	tr := NewTracker()

	assert.True(t, tr.MarkConnected("u1"), "first connection brings the user online")
	assert.False(t, tr.MarkConnected("u1"), "second tab is not a new online event")
	assert.True(t, tr.IsOnline("u1"))
	assert.Equal(t, 1, tr.OnlineCount())
}

func TestTracker_LastDisconnectOnly(t *testing.T) {
	tr := NewTracker()
	tr.MarkConnected("u1")
	tr.MarkConnected("u1")

	assert.False(t, tr.MarkDisconnected("u1"), "one tab left open keeps the user online")
	assert.True(t, tr.IsOnline("u1"))
	assert.True(t, tr.MarkDisconnected("u1"), "last disconnect takes the user offline")
	assert.False(t, tr.IsOnline("u1"))
	assert.Equal(t, 0, tr.OnlineCount())
}

func TestTracker_UnknownDisconnectIsNoop(t *testing.T) {
	tr := NewTracker()

	assert.False(t, tr.MarkDisconnected("ghost"))
	assert.False(t, tr.MarkDisconnected("ghost"))
	assert.Equal(t, 0, tr.OnlineCount())
}

func TestTracker_EmptyUserIDIgnored(t *testing.T) {
	tr := NewTracker()

	assert.False(t, tr.MarkConnected(""))
	assert.False(t, tr.MarkDisconnected(""))
	assert.Empty(t, tr.OnlineUserIDs())
}

func TestTracker_OnlineUserIDs(t *testing.T) {
	tr := NewTracker()
	tr.MarkConnected("u1")
	tr.MarkConnected("u2")
	tr.MarkConnected("u2")

	assert.ElementsMatch(t, []string{"u1", "u2"}, tr.OnlineUserIDs())
}

func TestTracker_ConcurrentChurn(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.MarkConnected("u1")
			tr.MarkDisconnected("u1")
		}()
	}
	wg.Wait()

	assert.False(t, tr.IsOnline("u1"), "balanced connect/disconnect pairs leave the user offline")
	assert.Equal(t, 0, tr.OnlineCount())
}
