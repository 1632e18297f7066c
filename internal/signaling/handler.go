package signaling

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	authsvc "reelgram-backend/internal/service/auth"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ChatSink receives chat messages relayed through a room so they survive
// the connection. Implemented by the chat service.
type ChatSink interface {
	Record(ctx context.Context, room, fromUserID, text string) error
}

type Handler struct {
	registry *Registry
	sink     ChatSink
	bridge   *Bridge

	// Authenticate maps a bearer token to an identity. Swappable in tests.
	Authenticate func(token string) (Identity, error)
}

func NewHandler(registry *Registry, sink ChatSink, bridge *Bridge) *Handler {
	return &Handler{
		registry: registry,
		sink:     sink,
		bridge:   bridge,
		Authenticate: func(token string) (Identity, error) {
			identity, err := authsvc.IdentityFromToken(token)
			if err != nil {
				return Identity{}, err
			}
			return Identity{UserID: identity.UserID, Username: identity.Username}, nil
		},
	}
}

func (h *Handler) Registry() *Registry {
	return h.registry
}

// Serve upgrades the request and runs the client's read loop until the
// connection closes. The token travels in the "token" query parameter since
// browsers cannot set headers on websocket dials; a Bearer header also
// works.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token = header[len("Bearer "):]
		}
	}

	identity, err := h.Authenticate(token)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := newClient(uuid.NewString(), identity, conn)
	incConnections()

	go client.keepAlive()
	go client.writePump()

	h.readLoop(client)
}

func (h *Handler) readLoop(client *Client) {
	defer func() {
		close(client.done)
		decConnections()

		for _, roomID := range h.registry.Drop(client) {
			left := Envelope{
				Kind:      KindPeerLeft,
				Room:      roomID,
				From:      client.Identity.UserID,
				Timestamp: time.Now().Unix(),
			}
			h.registry.Broadcast(roomID, left, nil)
			h.publish(roomID, left)

			if h.bridge != nil && h.registry.Peers(roomID) == 0 {
				h.bridge.DropRoom(roomID)
			}
		}

		log.Printf("Client %s disconnected", client.ID)
	}()

	client.conn.SetReadLimit(512 * 1024)

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway ||
					closeErr.Code == websocket.CloseNoStatusReceived {
					break
				}
			}
			log.Printf("Error reading from client %s: %v", client.ID, err)
			break
		}

		env, err := DecodeInbound(data)
		if err != nil {
			client.trySend(errorEnvelope("", err.Error()))
			continue
		}

		h.dispatch(client, env)
	}
}

func (h *Handler) dispatch(client *Client, env Envelope) {
	switch env.Kind {
	case KindJoin:
		h.handleJoin(client, env)
	case KindSignal:
		h.handleSignal(client, env)
	case KindChatSend:
		h.handleChatSend(client, env)
	}
}

func (h *Handler) handleJoin(client *Client, env Envelope) {
	if err := h.registry.Join(client, env.Room); err != nil {
		client.trySend(errorEnvelope(env.Room, err.Error()))
		return
	}

	h.subscribe(env.Room)

	client.trySend(Envelope{
		Kind:      KindJoined,
		Room:      env.Room,
		Timestamp: time.Now().Unix(),
	})

	joined := Envelope{
		Kind:      KindPeerJoined,
		Room:      env.Room,
		From:      client.Identity.UserID,
		Timestamp: time.Now().Unix(),
	}
	h.registry.Broadcast(env.Room, joined, client)
	h.publish(env.Room, joined)
}

func (h *Handler) handleSignal(client *Client, env Envelope) {
	if !h.registry.IsMember(client, env.Room) {
		client.trySend(errorEnvelope(env.Room, "join the room before signaling"))
		return
	}

	out := Envelope{
		Kind:      KindSignal,
		Room:      env.Room,
		From:      client.Identity.UserID,
		Payload:   env.Payload,
		Timestamp: time.Now().Unix(),
	}
	h.registry.Broadcast(env.Room, out, client)
	h.publish(env.Room, out)
}

func (h *Handler) handleChatSend(client *Client, env Envelope) {
	if !h.registry.IsMember(client, env.Room) {
		client.trySend(errorEnvelope(env.Room, "join the room before sending messages"))
		return
	}

	var payload ChatPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil || strings.TrimSpace(payload.Text) == "" {
		client.trySend(errorEnvelope(env.Room, "chat message requires text"))
		return
	}

	out := Envelope{
		Kind:      KindChatMessage,
		Room:      env.Room,
		From:      client.Identity.UserID,
		Payload:   env.Payload,
		Timestamp: time.Now().Unix(),
	}
	h.registry.Broadcast(env.Room, out, client)
	h.publish(env.Room, out)

	if h.sink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.sink.Record(ctx, env.Room, client.Identity.UserID, payload.Text); err != nil {
			// Relay delivery already happened; persistence is best effort.
			log.Printf("Error recording chat message in room %s: %v", env.Room, err)
		}
	}
}

func (h *Handler) publish(roomID string, env Envelope) {
	if h.bridge == nil {
		return
	}
	if err := h.bridge.Publish(roomID, env); err != nil {
		log.Printf("Error publishing event to room channel %s: %v", roomID, err)
	}
}

func (h *Handler) subscribe(roomID string) {
	if h.bridge == nil {
		return
	}
	h.bridge.EnsureRoom(h.registry, roomID)
}
