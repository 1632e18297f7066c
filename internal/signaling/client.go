package signaling

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const sendBufferSize = 16

// Identity is the authenticated principal behind a connection.
type Identity struct {
	UserID   string
	Username string
}

type Client struct {
	ID       string
	Identity Identity

	conn     *websocket.Conn
	send     chan Envelope
	done     chan struct{}
	mu       sync.Mutex
	isClosed bool
}

func newClient(id string, identity Identity, conn *websocket.Conn) *Client {
	return &Client{
		ID:       id,
		Identity: identity,
		conn:     conn,
		send:     make(chan Envelope, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// trySend queues the envelope without blocking. A full buffer means the
// consumer is too slow; the event is dropped for this client only.
func (cl *Client) trySend(env Envelope) bool {
	select {
	case <-cl.done:
		return false
	default:
	}

	select {
	case cl.send <- env:
		return true
	default:
		log.Printf("Dropping event %s for slow client %s", env.Kind, cl.ID)
		return false
	}
}

func (cl *Client) keepAlive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.conn.WriteMessage(websocket.PingMessage, nil)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Ping error for client %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *Client) writePump() {
	defer func() {
		cl.mu.Lock()
		cl.isClosed = true
		cl.conn.Close()
		cl.mu.Unlock()
	}()

	for {
		select {
		case <-cl.done:
			return
		case env := <-cl.send:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.conn.WriteJSON(env)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Error sending event to client %s: %v", cl.ID, err)
				return
			}
		}
	}
}
