package signaling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// JoinPolicy decides whether an identity may join a room.
type JoinPolicy func(identity Identity, roomID string) error

// AllowAny admits every authenticated client to every room.
func AllowAny(identity Identity, roomID string) error {
	return nil
}

// RequireRoomMember admits a client only to direct rooms it is a member of:
// the room id must be the sorted "a|b" pair of two user ids, one of them
// the joining user.
func RequireRoomMember(identity Identity, roomID string) error {
	parts := strings.Split(roomID, "|")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("room %q is not a direct room", roomID)
	}
	if parts[0] > parts[1] {
		return fmt.Errorf("room %q is not in canonical order", roomID)
	}
	if parts[0] != identity.UserID && parts[1] != identity.UserID {
		return fmt.Errorf("user %s is not a member of room %q", identity.UserID, roomID)
	}
	return nil
}

// PolicyFromName maps a configuration value to a policy, defaulting to
// AllowAny.
func PolicyFromName(name string) JoinPolicy {
	if name == "member" {
		return RequireRoomMember
	}
	return AllowAny
}

// Registry tracks which clients are in which rooms. It is an explicit
// dependency of the handler rather than package state, so each server (and
// each test) builds its own.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	members map[*Client]map[string]struct{}
	policy  JoinPolicy
}

func NewRegistry(policy JoinPolicy) *Registry {
	if policy == nil {
		policy = AllowAny
	}

	return &Registry{
		rooms:   make(map[string]map[*Client]struct{}),
		members: make(map[*Client]map[string]struct{}),
		policy:  policy,
	}
}

// Join adds the client to the room, creating the room when it does not
// exist yet. Joining a room twice is a no-op.
func (r *Registry) Join(client *Client, roomID string) error {
	if err := r.policy(client.Identity, roomID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		room = make(map[*Client]struct{})
		r.rooms[roomID] = room
	}
	room[client] = struct{}{}

	joined, ok := r.members[client]
	if !ok {
		joined = make(map[string]struct{})
		r.members[client] = joined
	}
	joined[roomID] = struct{}{}

	setRooms(len(r.rooms))
	return nil
}

// Leave removes the client from the room and deletes the room when it
// empties. Leaving a room the client is not in is a no-op.
func (r *Registry) Leave(client *Client, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(client, roomID)
	setRooms(len(r.rooms))
}

func (r *Registry) leaveLocked(client *Client, roomID string) {
	if room, ok := r.rooms[roomID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(r.rooms, roomID)
		}
	}
	if joined, ok := r.members[client]; ok {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(r.members, client)
		}
	}
}

// Drop removes the client from every room it joined and reports which rooms
// it left. Called on disconnect.
func (r *Registry) Drop(client *Client) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined := r.members[client]
	rooms := make([]string, 0, len(joined))
	for roomID := range joined {
		rooms = append(rooms, roomID)
	}
	sort.Strings(rooms)

	for _, roomID := range rooms {
		r.leaveLocked(client, roomID)
	}

	setRooms(len(r.rooms))
	return rooms
}

// IsMember reports whether the client has joined the room.
func (r *Registry) IsMember(client *Client, roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	joined, ok := r.members[client]
	if !ok {
		return false
	}
	_, ok = joined[roomID]
	return ok
}

// Broadcast delivers the envelope to every client in the room except the
// excluded one. Unknown rooms are a no-op. Delivery is fire-and-forget:
// clients whose send buffer is full miss the event instead of blocking the
// room.
func (r *Registry) Broadcast(roomID string, env Envelope, exclude *Client) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return 0
	}

	delivered := 0
	for client := range room {
		if client == exclude {
			continue
		}
		if client.trySend(env) {
			delivered++
		}
	}

	if delivered > 0 {
		addDelivered(delivered)
	}
	return delivered
}

// Rooms returns the ids of all active rooms, sorted.
func (r *Registry) Rooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]string, 0, len(r.rooms))
	for roomID := range r.rooms {
		rooms = append(rooms, roomID)
	}
	sort.Strings(rooms)
	return rooms
}

// Peers returns how many clients are in the room.
func (r *Registry) Peers(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}
