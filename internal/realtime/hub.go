package realtime

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Event names pushed over the live channel
const (
	EventNotification        = "notification"
	EventNotificationDeleted = "notificationDeleted"
	EventUnreadCountUpdate   = "unreadCountUpdate"
	EventAccountBanned       = "accountBanned"
	EventReactionUpdate      = "reactionUpdate"
)

// Conn is the subset of a websocket connection the hub needs
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Message is the envelope written to every live connection
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Hub tracks which live connections belong to which authenticated user,
// plus named rooms for interest-based broadcasts. Multiple connections
// per user are normal (multiple tabs or devices). Addressing is always
// per user or per room; the hub fans the single logical message out to
// each connection itself.
type Hub struct {
	mu    sync.RWMutex
	users map[uint]map[Conn]struct{}
	rooms map[string]map[Conn]struct{}
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{
		users: make(map[uint]map[Conn]struct{}),
		rooms: make(map[string]map[Conn]struct{}),
	}
}

// Register adds a connection to a user's set
func (h *Hub) Register(userID uint, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[Conn]struct{})
	}
	h.users[userID][conn] = struct{}{}
}

// Unregister removes a connection from its user's set and from every room.
// The user entry is dropped once its connection set empties.
func (h *Hub) Unregister(userID uint, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.users[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
	for room, members := range h.rooms {
		delete(members, conn)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// JoinRoom adds a connection to a named room
func (h *Hub) JoinRoom(room string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[Conn]struct{})
	}
	h.rooms[room][conn] = struct{}{}
}

// LeaveRoom removes a connection from a named room
func (h *Hub) LeaveRoom(room string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, conn)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// PushToUser delivers one logical message to every connection of a user.
// Pushing to a user with no live connections is a silent no-op.
func (h *Hub) PushToUser(userID uint, event string, payload interface{}) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.users[userID]))
	for conn := range h.users[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	msg := Message{Event: event, Data: payload}
	for _, conn := range conns {
		if err := conn.WriteJSON(msg); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to push live event")
		}
	}
}

// PushToRoom delivers one logical message to every connection in a room
func (h *Hub) PushToRoom(room string, event string, payload interface{}) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.rooms[room]))
	for conn := range h.rooms[room] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	msg := Message{Event: event, Data: payload}
	for _, conn := range conns {
		if err := conn.WriteJSON(msg); err != nil {
			logrus.WithError(err).WithField("room", room).Warn("failed to push live event")
		}
	}
}

// IsOnline reports whether a user has at least one live connection
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// ConnectionCount returns the number of live connections for a user
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
