package signaling

import (
	"testing"
)

func testClient(userID string) *Client {
	return newClient(userID+"-conn", Identity{UserID: userID, Username: userID}, nil)
}

func drain(cl *Client) []Envelope {
	var envs []Envelope
	for {
		select {
		case env := <-cl.send:
			envs = append(envs, env)
		default:
			return envs
		}
	}
}

func TestJoinCreatesRoomAndIsIdempotent(t *testing.T) {
	registry := NewRegistry(AllowAny)
	client := testClient("u1")

	if err := registry.Join(client, "room"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := registry.Join(client, "room"); err != nil {
		t.Fatalf("second join: %v", err)
	}

	if got := registry.Peers("room"); got != 1 {
		t.Fatalf("expected 1 peer, got %d", got)
	}
	if rooms := registry.Rooms(); len(rooms) != 1 || rooms[0] != "room" {
		t.Fatalf("unexpected rooms: %v", rooms)
	}
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	registry := NewRegistry(AllowAny)
	a := testClient("u1")
	b := testClient("u2")

	registry.Join(a, "room")
	registry.Join(b, "room")

	registry.Leave(a, "room")
	if got := registry.Peers("room"); got != 1 {
		t.Fatalf("expected 1 peer after leave, got %d", got)
	}

	registry.Leave(b, "room")
	if rooms := registry.Rooms(); len(rooms) != 0 {
		t.Fatalf("empty room should be deleted, got %v", rooms)
	}

	// Leaving a room the client never joined is a no-op.
	registry.Leave(a, "other")
}

func TestBroadcastExcludesSenderAndSkipsUnknownRooms(t *testing.T) {
	registry := NewRegistry(AllowAny)
	sender := testClient("u1")
	receiver := testClient("u2")

	registry.Join(sender, "room")
	registry.Join(receiver, "room")

	delivered := registry.Broadcast("room", Envelope{Kind: KindSignal, Room: "room", From: "u1"}, sender)
	if delivered != 1 {
		t.Fatalf("expected 1 delivery, got %d", delivered)
	}
	if envs := drain(sender); len(envs) != 0 {
		t.Fatalf("sender must not receive its own event: %v", envs)
	}
	envs := drain(receiver)
	if len(envs) != 1 || envs[0].Kind != KindSignal || envs[0].From != "u1" {
		t.Fatalf("unexpected receiver events: %#v", envs)
	}

	if delivered := registry.Broadcast("missing", Envelope{Kind: KindSignal}, nil); delivered != 0 {
		t.Fatalf("broadcast to unknown room must be a no-op, delivered %d", delivered)
	}
}

func TestBroadcastDropsSlowConsumerWithoutBlocking(t *testing.T) {
	registry := NewRegistry(AllowAny)
	slow := testClient("u1")
	registry.Join(slow, "room")

	for i := 0; i < sendBufferSize; i++ {
		if !slow.trySend(Envelope{Kind: KindSignal}) {
			t.Fatalf("send %d should fit the buffer", i)
		}
	}

	// Buffer is full now; delivery must fail fast instead of blocking.
	if delivered := registry.Broadcast("room", Envelope{Kind: KindSignal}, nil); delivered != 0 {
		t.Fatalf("expected 0 deliveries to a saturated client, got %d", delivered)
	}
}

func TestDropRemovesClientFromAllRooms(t *testing.T) {
	registry := NewRegistry(AllowAny)
	client := testClient("u1")
	other := testClient("u2")

	registry.Join(client, "a")
	registry.Join(client, "b")
	registry.Join(other, "b")

	rooms := registry.Drop(client)
	if len(rooms) != 2 || rooms[0] != "a" || rooms[1] != "b" {
		t.Fatalf("unexpected rooms left: %v", rooms)
	}

	if registry.IsMember(client, "a") || registry.IsMember(client, "b") {
		t.Fatal("dropped client must not remain a member")
	}
	if got := registry.Peers("b"); got != 1 {
		t.Fatalf("other client should remain in room b, got %d peers", got)
	}
	if rooms := registry.Rooms(); len(rooms) != 1 || rooms[0] != "b" {
		t.Fatalf("room a should be deleted: %v", rooms)
	}

	// Dropping again reports nothing.
	if rooms := registry.Drop(client); len(rooms) != 0 {
		t.Fatalf("second drop should be empty, got %v", rooms)
	}
}

func TestRequireRoomMemberPolicy(t *testing.T) {
	registry := NewRegistry(RequireRoomMember)
	client := testClient("u1")

	if err := registry.Join(client, "u1|u2"); err != nil {
		t.Fatalf("member join should pass: %v", err)
	}
	if err := registry.Join(client, "u2|u3"); err == nil {
		t.Fatal("non-member join should fail")
	}
	if err := registry.Join(client, "u2|u1"); err == nil {
		t.Fatal("non-canonical room id should fail")
	}
	if err := registry.Join(client, "lobby"); err == nil {
		t.Fatal("non-direct room should fail")
	}
}

func TestPolicyFromName(t *testing.T) {
	client := testClient("u1")

	if err := PolicyFromName("member")(client.Identity, "lobby"); err == nil {
		t.Fatal("member policy should reject non-direct rooms")
	}
	if err := PolicyFromName("")(client.Identity, "lobby"); err != nil {
		t.Fatalf("default policy should allow: %v", err)
	}
}
