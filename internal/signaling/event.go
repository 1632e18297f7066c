package signaling

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the event envelope. The set is closed: inbound events
// are join, signal and chatSend; everything else on the wire is outbound.
type Kind string

const (
	// inbound
	KindJoin     Kind = "join"
	KindSignal   Kind = "signal"
	KindChatSend Kind = "chatSend"

	// outbound
	KindJoined      Kind = "joined"
	KindPeerJoined  Kind = "peerJoined"
	KindPeerLeft    Kind = "peerLeft"
	KindChatMessage Kind = "chatMessage"
	KindError       Kind = "error"
)

// Envelope is the wire shape of every relay event. Payload is opaque to the
// relay: signaling payloads (offers, answers, candidates) are forwarded
// verbatim between peers.
type Envelope struct {
	Kind      Kind            `json:"kind"`
	Room      string          `json:"room,omitempty"`
	From      string          `json:"from,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	// Origin identifies the emitting server instance on the pub/sub bridge
	// so an instance can skip its own republished events.
	Origin string `json:"origin,omitempty"`
}

type ChatPayload struct {
	Text string `json:"text"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// DecodeInbound parses a client frame and rejects anything outside the
// inbound event set.
func DecodeInbound(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode event: %w", err)
	}

	switch env.Kind {
	case KindJoin, KindSignal, KindChatSend:
	default:
		return Envelope{}, fmt.Errorf("decode event: unknown kind %q", env.Kind)
	}

	if env.Room == "" {
		return Envelope{}, fmt.Errorf("decode event: %s requires a room", env.Kind)
	}

	return env, nil
}

func errorEnvelope(room, message string) Envelope {
	payload, _ := json.Marshal(ErrorPayload{Message: message})
	return Envelope{
		Kind:    KindError,
		Room:    room,
		Payload: payload,
	}
}
