package realtime

import "sync"

// Hub tracks one live connection per user. Dashboards get their events over
// a single socket, so the newest connection for a user replaces any older one.
type Hub struct {
	mu    sync.RWMutex
	users map[string]*Connection
}

func NewHub() *Hub {
	return &Hub{users: make(map[string]*Connection)}
}

// Attach registers the connection and starts its write loop. A previous
// connection for the same user is closed after the swap.
func (h *Hub) Attach(conn *Connection) {
	h.mu.Lock()
	previous := h.users[conn.UserID]
	h.users[conn.UserID] = conn
	h.mu.Unlock()

	go conn.WriteLoop()

	if previous != nil {
		previous.Close(4001, "session replaced")
	}
}

// Detach forgets the connection unless the user has already reconnected.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	if current, ok := h.users[conn.UserID]; ok && current.ID == conn.ID {
		delete(h.users, conn.UserID)
	}
	h.mu.Unlock()
}

// NotifyUser delivers a payload to the user's connection, if any.
func (h *Hub) NotifyUser(userID string, payload []byte) bool {
	h.mu.RLock()
	conn := h.users[userID]
	h.mu.RUnlock()
	if conn == nil {
		return false
	}
	return conn.Send(payload) == nil
}

// Close terminates every tracked connection.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.users))
	for _, conn := range h.users {
		conns = append(conns, conn)
	}
	h.users = make(map[string]*Connection)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "server shutdown")
	}
}
