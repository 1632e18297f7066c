package negotiation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
)

// State tracks where a call negotiation stands. Transitions only move
// forward except for hangup and timeout, which reset to Idle.
type State int

const (
	StateIdle State = iota
	StateAwaitingMedia
	StateOfferSent
	StateOfferReceived
	StateAnswerExchanged
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingMedia:
		return "awaitingMedia"
	case StateOfferSent:
		return "offerSent"
	case StateOfferReceived:
		return "offerReceived"
	case StateAnswerExchanged:
		return "answerExchanged"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

type MessageType string

const (
	MessageOffer     MessageType = "offer"
	MessageAnswer    MessageType = "answer"
	MessageCandidate MessageType = "candidate"
)

// Message is the negotiation payload carried inside a relay signal event or
// a fallback queue entry.
type Message struct {
	Type      MessageType                `json:"type"`
	SDP       *webrtc.SessionDescription `json:"sdp,omitempty"`
	Candidate *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
}

// Media owns the local peer connection and tracks. Acquire is the only
// blocking call and the only step that may legitimately fail on user
// hardware.
type Media interface {
	Acquire(ctx context.Context) error
	CreateOffer() (webrtc.SessionDescription, error)
	CreateAnswer() (webrtc.SessionDescription, error)
	SetRemoteDescription(desc webrtc.SessionDescription) error
	AddICECandidate(candidate webrtc.ICECandidateInit) error
	Close() error
}

// Signaler delivers negotiation messages to the remote peer, over the relay
// or the fallback queue.
type Signaler interface {
	Send(msg Message) error
}

type SignalerFunc func(msg Message) error

func (f SignalerFunc) Send(msg Message) error {
	return f(msg)
}

// ErrMediaAcquisition marks a failure to get camera or microphone access.
// It is surfaced to the caller and never retried.
var ErrMediaAcquisition = errors.New("media acquisition failed")

const defaultOfferTimeout = 30 * time.Second

// Session drives one call negotiation in a room. Duplicate and stale
// messages are ignored without changing state, so redelivery through the
// fallback queue is harmless.
type Session struct {
	room     string
	media    Media
	signaler Signaler

	// OfferTimeout bounds how long an unanswered offer keeps the session
	// occupied before it resets to Idle.
	OfferTimeout time.Duration

	mu        sync.Mutex
	state     State
	remoteSet bool
	pending   []webrtc.ICECandidateInit
	seen      map[string]struct{}
	timer     *time.Timer
}

func NewSession(room string, media Media, signaler Signaler) *Session {
	return &Session{
		room:         room,
		media:        media,
		signaler:     signaler,
		OfferTimeout: defaultOfferTimeout,
		state:        StateIdle,
		seen:         make(map[string]struct{}),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Room() string {
	return s.room
}

// Start runs the caller path: acquire media, create the offer, send it and
// wait for the answer through HandleMessage.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("negotiation already in progress (%s)", s.state)
	}
	s.state = StateAwaitingMedia
	s.mu.Unlock()

	if err := s.media.Acquire(ctx); err != nil {
		s.reset(false)
		return fmt.Errorf("%w: %v", ErrMediaAcquisition, err)
	}

	offer, err := s.media.CreateOffer()
	if err != nil {
		s.reset(true)
		return fmt.Errorf("create offer: %w", err)
	}

	if err := s.signaler.Send(Message{Type: MessageOffer, SDP: &offer}); err != nil {
		s.reset(true)
		return fmt.Errorf("send offer: %w", err)
	}

	s.mu.Lock()
	s.state = StateOfferSent
	s.timer = time.AfterFunc(s.OfferTimeout, s.expireOffer)
	s.mu.Unlock()
	return nil
}

// HandleMessage applies a message from the remote peer. Returns an error
// only for failures the caller should surface; stale messages return nil.
func (s *Session) HandleMessage(ctx context.Context, msg Message) error {
	switch msg.Type {
	case MessageOffer:
		return s.handleOffer(ctx, msg)
	case MessageAnswer:
		return s.handleAnswer(msg)
	case MessageCandidate:
		return s.handleCandidate(msg)
	default:
		return fmt.Errorf("unknown negotiation message type %q", msg.Type)
	}
}

func (s *Session) handleOffer(ctx context.Context, msg Message) error {
	if msg.SDP == nil {
		return errors.New("offer without sdp")
	}

	s.mu.Lock()
	if s.state != StateIdle {
		// Already negotiating; this is a duplicate or a glare offer.
		s.mu.Unlock()
		return nil
	}
	s.state = StateAwaitingMedia
	s.mu.Unlock()

	if err := s.media.Acquire(ctx); err != nil {
		s.reset(false)
		return fmt.Errorf("%w: %v", ErrMediaAcquisition, err)
	}

	s.mu.Lock()
	s.state = StateOfferReceived
	s.mu.Unlock()

	if err := s.media.SetRemoteDescription(*msg.SDP); err != nil {
		s.reset(true)
		return fmt.Errorf("set remote offer: %w", err)
	}
	s.markRemoteSet()

	answer, err := s.media.CreateAnswer()
	if err != nil {
		s.reset(true)
		return fmt.Errorf("create answer: %w", err)
	}

	if err := s.signaler.Send(Message{Type: MessageAnswer, SDP: &answer}); err != nil {
		s.reset(true)
		return fmt.Errorf("send answer: %w", err)
	}

	s.mu.Lock()
	s.state = StateAnswerExchanged
	s.mu.Unlock()
	return nil
}

func (s *Session) handleAnswer(msg Message) error {
	if msg.SDP == nil {
		return errors.New("answer without sdp")
	}

	s.mu.Lock()
	if s.state != StateOfferSent {
		// Second answer or answer without an outstanding offer: ignore,
		// state unchanged.
		s.mu.Unlock()
		return nil
	}
	// Claim the answer before releasing the lock so a timeout firing in
	// parallel sees the offer as no longer outstanding.
	s.state = StateAnswerExchanged
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if err := s.media.SetRemoteDescription(*msg.SDP); err != nil {
		s.reset(true)
		return fmt.Errorf("set remote answer: %w", err)
	}
	s.markRemoteSet()
	return nil
}

func (s *Session) handleCandidate(msg Message) error {
	if msg.Candidate == nil {
		return errors.New("candidate message without candidate")
	}

	s.mu.Lock()
	key := msg.Candidate.Candidate
	if _, dup := s.seen[key]; dup {
		s.mu.Unlock()
		return nil
	}
	s.seen[key] = struct{}{}

	if !s.remoteSet {
		// Trickled candidates can outrun the description; hold them until
		// the remote description lands.
		s.pending = append(s.pending, *msg.Candidate)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.media.AddICECandidate(*msg.Candidate); err != nil {
		return fmt.Errorf("add candidate: %w", err)
	}
	return nil
}

// markRemoteSet flushes candidates buffered before the remote description.
func (s *Session) markRemoteSet() {
	s.mu.Lock()
	s.remoteSet = true
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, candidate := range pending {
		if err := s.media.AddICECandidate(candidate); err != nil {
			// Individual candidates may fail; the rest still apply.
			continue
		}
	}
}

// MarkConnected moves the session to Connected once ICE reports the link is
// up. Wired to the media implementation's connection callback.
func (s *Session) MarkConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAnswerExchanged {
		s.state = StateConnected
	}
}

// Hangup releases media and resets the session. Local only: the peer
// notices through its own connection state.
func (s *Session) Hangup() {
	s.reset(true)
}

func (s *Session) expireOffer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check and reset under one lock: an answer claimed between the timer
	// firing and this running must win.
	if s.state != StateOfferSent {
		return
	}
	s.resetLocked(true)
}

func (s *Session) reset(closeMedia bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(closeMedia)
}

func (s *Session) resetLocked(closeMedia bool) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if closeMedia {
		s.media.Close()
	}
	s.state = StateIdle
	s.remoteSet = false
	s.pending = nil
	s.seen = make(map[string]struct{})
}
