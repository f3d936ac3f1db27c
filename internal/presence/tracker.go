package presence

import "sync"

// Tracker keeps the in-memory mapping of user -> live connection ids. A user
// is online while at least one connection is registered. The tracker owns
// its synchronization; callers never see the underlying map.
type Tracker struct {
	mu    sync.RWMutex
	conns map[uint]map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{conns: make(map[uint]map[string]struct{})}
}

// Connect registers a live connection for the user.
func (t *Tracker) Connect(userID uint, connID string) {
	if connID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.conns[userID]
	if !ok {
		set = make(map[string]struct{})
		t.conns[userID] = set
	}
	set[connID] = struct{}{}
}

// Disconnect removes a connection; the user goes offline when the last
// connection is gone. Unknown ids are ignored.
func (t *Tracker) Disconnect(userID uint, connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.conns[userID]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(t.conns, userID)
	}
}

// IsUserOnline reports whether the user has at least one live connection.
func (t *Tracker) IsUserOnline(userID uint) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.conns[userID]) > 0
}

// OnlineUserIDs returns a snapshot of all currently online user ids.
func (t *Tracker) OnlineUserIDs() []uint {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]uint, 0, len(t.conns))
	for id := range t.conns {
		ids = append(ids, id)
	}
	return ids
}

// OnlineCount returns the number of online users.
func (t *Tracker) OnlineCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.conns)
}
