package signaling

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	fallbackKeyPrefix = "signal:fallback:"
	fallbackLimit     = 20
	fallbackTTL       = 24 * time.Hour
)

// FallbackQueue is the degraded signaling path for clients that cannot hold
// a websocket open. Messages are appended and re-read by polling; duplicate
// delivery is expected and tolerated by the negotiation layer.
type FallbackQueue interface {
	Append(ctx context.Context, roomID string, msg json.RawMessage) error
	Poll(ctx context.Context, roomID string) ([]json.RawMessage, error)
}

// SelectFallback pings Redis and picks the adapter: the Redis queue when
// it answers, the in-process queue otherwise.
func SelectFallback(ctx context.Context, client *redis.Client) FallbackQueue {
	if client != nil {
		if err := client.Ping(ctx).Err(); err == nil {
			return NewRedisFallback(client)
		}
		log.Printf("Fallback queue: redis unreachable, using in-memory queue")
	}
	return NewMemoryFallback()
}

type RedisFallback struct {
	client *redis.Client
}

func NewRedisFallback(client *redis.Client) *RedisFallback {
	return &RedisFallback{client: client}
}

func (f *RedisFallback) Append(ctx context.Context, roomID string, msg json.RawMessage) error {
	key := fallbackKeyPrefix + roomID
	marker := key + ":last"

	pipe := f.client.TxPipeline()
	pipe.RPush(ctx, key, string(msg))
	// Keep only the newest entries so an abandoned room cannot grow without
	// bound.
	pipe.LTrim(ctx, key, -fallbackLimit, -1)
	pipe.Set(ctx, marker, string(msg), fallbackTTL)
	pipe.Expire(ctx, key, fallbackTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	incFallbackAppends()
	return nil
}

func (f *RedisFallback) Poll(ctx context.Context, roomID string) ([]json.RawMessage, error) {
	entries, err := f.client.LRange(ctx, fallbackKeyPrefix+roomID, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	msgs := make([]json.RawMessage, 0, len(entries))
	for _, entry := range entries {
		msgs = append(msgs, json.RawMessage(entry))
	}
	return msgs, nil
}

// MemoryFallback keeps queues in process memory. Used in tests and when
// Redis is not available.
type MemoryFallback struct {
	mu     sync.Mutex
	queues map[string][]json.RawMessage
	last   map[string]json.RawMessage
}

func NewMemoryFallback() *MemoryFallback {
	return &MemoryFallback{
		queues: make(map[string][]json.RawMessage),
		last:   make(map[string]json.RawMessage),
	}
}

func (f *MemoryFallback) Append(ctx context.Context, roomID string, msg json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	queue := append(f.queues[roomID], msg)
	if len(queue) > fallbackLimit {
		queue = queue[len(queue)-fallbackLimit:]
	}
	f.queues[roomID] = queue
	f.last[roomID] = msg

	incFallbackAppends()
	return nil
}

func (f *MemoryFallback) Poll(ctx context.Context, roomID string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]json.RawMessage(nil), f.queues[roomID]...), nil
}

// Last returns the most recently appended message for the room, if any.
func (f *MemoryFallback) Last(roomID string) (json.RawMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.last[roomID]
	return msg, ok
}
