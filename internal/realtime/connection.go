package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingEvery  = 30 * time.Second
	sendBuffer = 64
)

var errConnClosed = errors.New("connection closed")

// Connection wraps one websocket. All outbound writes go through a buffered
// channel so the dashboard's event stream never blocks on a slow socket.
type Connection struct {
	ID     string
	UserID string

	ws     *websocket.Conn
	send   chan []byte
	closed chan struct{}
	once   sync.Once
}

func NewConnection(userID string, ws *websocket.Conn) *Connection {
	return &Connection{
		ID:     uuid.NewString(),
		UserID: userID,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
}

// Send queues a payload. A full buffer closes the connection: a client that
// cannot keep up re-syncs from a fresh subscription on reconnect.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.closed:
		return errConnClosed
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "client too slow")
		return errConnClosed
	}
}

func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.closed)
		deadline := time.Now().Add(writeWait)
		_ = c.ws.SetWriteDeadline(deadline)
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		_ = c.ws.Close()
	})
}

func (c *Connection) Closed() <-chan struct{} { return c.closed }

// WriteLoop drains the send queue and keeps the socket alive with pings.
// It returns when the connection closes or a write fails.
func (c *Connection) WriteLoop() {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "write failed")
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "ping failed")
				return
			}
		}
	}
}
