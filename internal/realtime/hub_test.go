package realtime

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu        sync.Mutex
	messages  []Message
	failWrite bool
	closed    bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrite {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, v.(Message))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

func TestPushToAbsentUserIsNoop(t *testing.T) {
	hub := NewHub()
	// Must not panic or block.
	hub.PushToUser(42, EventNotification, "payload")
	assert.False(t, hub.IsOnline(42))
}

func TestPushFansOutToEveryConnection(t *testing.T) {
	hub := NewHub()
	conns := []*fakeConn{{}, {}, {}}
	for _, conn := range conns {
		hub.Register(7, conn)
	}
	assert.Equal(t, 3, hub.ConnectionCount(7))

	hub.PushToUser(7, EventUnreadCountUpdate, map[string]interface{}{"count": int64(2)})

	for _, conn := range conns {
		messages := conn.received()
		require.Len(t, messages, 1)
		assert.Equal(t, EventUnreadCountUpdate, messages[0].Event)
	}
}

func TestPushSkipsOtherUsers(t *testing.T) {
	hub := NewHub()
	mine := &fakeConn{}
	theirs := &fakeConn{}
	hub.Register(1, mine)
	hub.Register(2, theirs)

	hub.PushToUser(1, EventNotification, nil)

	assert.Len(t, mine.received(), 1)
	assert.Empty(t, theirs.received())
}

func TestWriteFailureDoesNotStopFanout(t *testing.T) {
	hub := NewHub()
	broken := &fakeConn{failWrite: true}
	healthy := &fakeConn{}
	hub.Register(5, broken)
	hub.Register(5, healthy)

	hub.PushToUser(5, EventNotification, nil)

	assert.Len(t, healthy.received(), 1)
}

func TestUnregisterDropsEmptyUser(t *testing.T) {
	hub := NewHub()
	a := &fakeConn{}
	b := &fakeConn{}
	hub.Register(9, a)
	hub.Register(9, b)

	hub.Unregister(9, a)
	assert.True(t, hub.IsOnline(9))
	hub.Unregister(9, b)
	assert.False(t, hub.IsOnline(9))
	assert.Equal(t, 0, hub.ConnectionCount(9))
}

func TestRoomMembership(t *testing.T) {
	hub := NewHub()
	member := &fakeConn{}
	outsider := &fakeConn{}
	hub.Register(1, member)
	hub.Register(2, outsider)
	hub.JoinRoom("product:p1", member)

	hub.PushToRoom("product:p1", EventReactionUpdate, map[string]interface{}{"likes": int64(3)})
	require.Len(t, member.received(), 1)
	assert.Empty(t, outsider.received())

	hub.LeaveRoom("product:p1", member)
	hub.PushToRoom("product:p1", EventReactionUpdate, nil)
	assert.Len(t, member.received(), 1)
}

func TestUnregisterSweepsRooms(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Register(1, conn)
	hub.JoinRoom("product:p1", conn)

	hub.Unregister(1, conn)

	hub.PushToRoom("product:p1", EventReactionUpdate, nil)
	assert.Empty(t, conn.received())
}

func TestConcurrentRegisterAndPush(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			conn := &fakeConn{}
			hub.Register(userID, conn)
			hub.PushToUser(userID, EventNotification, nil)
			hub.JoinRoom("shared", conn)
			hub.PushToRoom("shared", EventReactionUpdate, nil)
			hub.Unregister(userID, conn)
		}(uint(i % 10))
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		assert.False(t, hub.IsOnline(uint(i)))
	}
}
