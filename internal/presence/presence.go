// Package presence tracks which users currently hold at least one live
// socket connection. A user with several tabs or devices open is counted
// once; the tracker keeps a reference count per user so the last
// disconnect, not the first, takes them offline.
package presence

import "sync"

type Tracker struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewTracker() *Tracker {
	return &Tracker{counts: make(map[string]int)}
}

// MarkConnected records one more open connection for the user. Returns
// true when this was the user's first connection, i.e. they just came
// online.
func (t *Tracker) MarkConnected(userID string) bool {
	if userID == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[userID]++
	return t.counts[userID] == 1
}

// MarkDisconnected records one closed connection. Returns true when the
// user's last connection closed and they went offline. Decrementing an
// unknown or zero-count id is a no-op; disconnect events can race or
// duplicate.
func (t *Tracker) MarkDisconnected(userID string) bool {
	if userID == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	current, ok := t.counts[userID]
	if !ok {
		return false
	}
	if current <= 1 {
		delete(t.counts, userID)
		return true
	}
	t.counts[userID] = current - 1
	return false
}

// OnlineUserIDs returns a snapshot of the users with at least one open
// connection.
func (t *Tracker) OnlineUserIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.counts))
	for id := range t.counts {
		ids = append(ids, id)
	}
	return ids
}

func (t *Tracker) OnlineCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.counts)
}

func (t *Tracker) IsOnline(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.counts[userID]
	return ok
}
