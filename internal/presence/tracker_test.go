package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracker_ConnectDisconnect(t *testing.T) {
	tr := NewTracker()

	require.False(t, tr.IsUserOnline(1))
	require.Zero(t, tr.OnlineCount())

	tr.Connect(1, "conn-a")
	require.True(t, tr.IsUserOnline(1))
	require.Equal(t, 1, tr.OnlineCount())
	require.Equal(t, []uint{1}, tr.OnlineUserIDs())

	tr.Disconnect(1, "conn-a")
	require.False(t, tr.IsUserOnline(1))
	require.Zero(t, tr.OnlineCount())
}

func TestTracker_MultipleConnections(t *testing.T) {
	tr := NewTracker()

	tr.Connect(1, "laptop")
	tr.Connect(1, "phone")
	require.True(t, tr.IsUserOnline(1))
	require.Equal(t, 1, tr.OnlineCount())

	// still online while one connection remains
	tr.Disconnect(1, "laptop")
	require.True(t, tr.IsUserOnline(1))

	tr.Disconnect(1, "phone")
	require.False(t, tr.IsUserOnline(1))
}

func TestTracker_IgnoresEmptyAndUnknown(t *testing.T) {
	tr := NewTracker()

	tr.Connect(1, "")
	require.False(t, tr.IsUserOnline(1))

	tr.Disconnect(1, "never-registered")
	require.False(t, tr.IsUserOnline(1))

	tr.Connect(1, "conn-a")
	tr.Disconnect(1, "other")
	require.True(t, tr.IsUserOnline(1))
}

func TestTracker_ConcurrentAccess(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := uint(n % 5)
			connID := fmt.Sprintf("conn-%d", n)
			tr.Connect(userID, connID)
			tr.IsUserOnline(userID)
			tr.OnlineUserIDs()
			tr.Disconnect(userID, connID)
		}(i)
	}
	wg.Wait()

	require.Zero(t, tr.OnlineCount())
}
