package signaling

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
)

func TestMemoryFallbackBoundsQueue(t *testing.T) {
	queue := NewMemoryFallback()
	ctx := context.Background()

	for i := 0; i < fallbackLimit+5; i++ {
		msg := json.RawMessage(fmt.Sprintf(`{"seq":%d}`, i))
		if err := queue.Append(ctx, "a|b", msg); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	msgs, err := queue.Poll(ctx, "a|b")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(msgs) != fallbackLimit {
		t.Fatalf("expected queue bounded at %d, got %d", fallbackLimit, len(msgs))
	}
	if string(msgs[0]) != `{"seq":5}` {
		t.Fatalf("oldest entries should be trimmed, got %s first", msgs[0])
	}
	if string(msgs[len(msgs)-1]) != fmt.Sprintf(`{"seq":%d}`, fallbackLimit+4) {
		t.Fatalf("unexpected newest entry: %s", msgs[len(msgs)-1])
	}
}

func TestMemoryFallbackPollRedelivers(t *testing.T) {
	queue := NewMemoryFallback()
	ctx := context.Background()

	if err := queue.Append(ctx, "a|b", json.RawMessage(`{"type":"offer"}`)); err != nil {
		t.Fatalf("append: %v", err)
	}

	first, _ := queue.Poll(ctx, "a|b")
	second, _ := queue.Poll(ctx, "a|b")
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("poll must not consume: %d then %d", len(first), len(second))
	}
}

func TestMemoryFallbackTracksLastMessage(t *testing.T) {
	queue := NewMemoryFallback()
	ctx := context.Background()

	if _, ok := queue.Last("a|b"); ok {
		t.Fatal("no last message expected for fresh room")
	}

	queue.Append(ctx, "a|b", json.RawMessage(`{"seq":1}`))
	queue.Append(ctx, "a|b", json.RawMessage(`{"seq":2}`))

	last, ok := queue.Last("a|b")
	if !ok || string(last) != `{"seq":2}` {
		t.Fatalf("unexpected last message: %s (ok=%v)", last, ok)
	}
}

func TestMemoryFallbackIsolatesRooms(t *testing.T) {
	queue := NewMemoryFallback()
	ctx := context.Background()

	queue.Append(ctx, "a|b", json.RawMessage(`{"seq":1}`))

	msgs, err := queue.Poll(ctx, "c|d")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("rooms must not share queues: %v", msgs)
	}
}

func TestSelectFallbackWithoutRedis(t *testing.T) {
	queue := SelectFallback(context.Background(), nil)
	if _, ok := queue.(*MemoryFallback); !ok {
		t.Fatalf("expected in-memory fallback, got %T", queue)
	}
}
