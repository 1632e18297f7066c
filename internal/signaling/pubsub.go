package signaling

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const roomChannelPrefix = "signal:room:"

// Bridge fans relay events out across server instances over Redis pub/sub.
// Every instance republishes local events to the room channel and applies
// events from other instances to its own registry. A nil *Bridge disables
// the bridge (single instance).
type Bridge struct {
	client     *redis.Client
	instanceID string

	mu         sync.Mutex
	subscribed map[string]*redis.PubSub
}

func NewBridge(client *redis.Client) *Bridge {
	return &Bridge{
		client:     client,
		instanceID: uuid.NewString(),
		subscribed: make(map[string]*redis.PubSub),
	}
}

func (b *Bridge) Publish(roomID string, env Envelope) error {
	if roomID == "" {
		return fmt.Errorf("bridge publish: roomID required")
	}

	env.Origin = b.instanceID
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("bridge publish: marshal event: %w", err)
	}

	if err := b.client.Publish(context.Background(), roomChannelPrefix+roomID, string(data)).Err(); err != nil {
		return fmt.Errorf("bridge publish: %w", err)
	}
	return nil
}

// EnsureRoom starts the subscriber goroutine for the room channel once.
// DropRoom tears it down again when the room empties on this instance.
func (b *Bridge) EnsureRoom(registry *Registry, roomID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribed[roomID]; ok {
		return
	}
	subscriber := b.client.Subscribe(context.Background(), roomChannelPrefix+roomID)
	b.subscribed[roomID] = subscriber

	go b.subscribeToRoomChannel(registry, roomID, subscriber)
}

// DropRoom closes the room's subscription, ending its goroutine. No-op for
// rooms this instance never subscribed to.
func (b *Bridge) DropRoom(roomID string) {
	b.mu.Lock()
	subscriber, ok := b.subscribed[roomID]
	delete(b.subscribed, roomID)
	b.mu.Unlock()

	if ok {
		subscriber.Close()
	}
}

func (b *Bridge) subscribeToRoomChannel(registry *Registry, roomID string, subscriber *redis.PubSub) {
	log.Printf("Subscribing to room channel: %s", roomID)
	defer subscriber.Close()

	for msg := range subscriber.Channel() {
		var env Envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			log.Printf("Error decoding bridged event on %s: %v", roomID, err)
			continue
		}
		if env.Origin == b.instanceID {
			continue
		}
		registry.Broadcast(roomID, env, nil)
	}
	log.Printf("Unsubscribed from room channel: %s", roomID)
}
