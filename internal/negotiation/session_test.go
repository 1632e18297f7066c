package negotiation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
)

type fakeMedia struct {
	mu          sync.Mutex
	acquired    bool
	acquireErr  error
	remoteDelay time.Duration
	remote      []webrtc.SessionDescription
	candidates  []webrtc.ICECandidateInit
	closed      int
}

func (m *fakeMedia) Acquire(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acquireErr != nil {
		return m.acquireErr
	}
	m.acquired = true
	return nil
}

func (m *fakeMedia) CreateOffer() (webrtc.SessionDescription, error) {
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "offer-sdp"}, nil
}

func (m *fakeMedia) CreateAnswer() (webrtc.SessionDescription, error) {
	return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "answer-sdp"}, nil
}

func (m *fakeMedia) SetRemoteDescription(desc webrtc.SessionDescription) error {
	if m.remoteDelay > 0 {
		time.Sleep(m.remoteDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remote = append(m.remote, desc)
	return nil
}

func (m *fakeMedia) AddICECandidate(candidate webrtc.ICECandidateInit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates = append(m.candidates, candidate)
	return nil
}

func (m *fakeMedia) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func (m *fakeMedia) remoteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.remote)
}

func (m *fakeMedia) candidateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.candidates)
}

func (m *fakeMedia) closedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

type fakeSignaler struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (s *fakeSignaler) Send(msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSignaler) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

func answerMessage() Message {
	sdp := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "remote-answer"}
	return Message{Type: MessageAnswer, SDP: &sdp}
}

func offerMessage() Message {
	sdp := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "remote-offer"}
	return Message{Type: MessageOffer, SDP: &sdp}
}

func candidateMessage(candidate string) Message {
	init := webrtc.ICECandidateInit{Candidate: candidate}
	return Message{Type: MessageCandidate, Candidate: &init}
}

func TestCallerPathToConnected(t *testing.T) {
	media := &fakeMedia{}
	signaler := &fakeSignaler{}
	session := NewSession("call-42", media, signaler)

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.State() != StateOfferSent {
		t.Fatalf("expected offerSent, got %s", session.State())
	}
	sent := signaler.messages()
	if len(sent) != 1 || sent[0].Type != MessageOffer || sent[0].SDP.SDP != "offer-sdp" {
		t.Fatalf("unexpected outbound messages: %#v", sent)
	}

	if err := session.HandleMessage(context.Background(), answerMessage()); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if session.State() != StateAnswerExchanged {
		t.Fatalf("expected answerExchanged, got %s", session.State())
	}
	if media.remoteCount() != 1 {
		t.Fatalf("expected 1 remote description, got %d", media.remoteCount())
	}

	session.MarkConnected()
	if session.State() != StateConnected {
		t.Fatalf("expected connected, got %s", session.State())
	}
}

func TestCalleePathAnswersOffer(t *testing.T) {
	media := &fakeMedia{}
	signaler := &fakeSignaler{}
	session := NewSession("call-42", media, signaler)

	if err := session.HandleMessage(context.Background(), offerMessage()); err != nil {
		t.Fatalf("offer: %v", err)
	}
	if session.State() != StateAnswerExchanged {
		t.Fatalf("expected answerExchanged, got %s", session.State())
	}

	sent := signaler.messages()
	if len(sent) != 1 || sent[0].Type != MessageAnswer {
		t.Fatalf("expected one answer, got %#v", sent)
	}
	if !media.acquired {
		t.Fatal("media should be acquired on incoming offer")
	}
}

func TestSecondAnswerIgnored(t *testing.T) {
	media := &fakeMedia{}
	session := NewSession("call-42", media, &fakeSignaler{})

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := session.HandleMessage(context.Background(), answerMessage()); err != nil {
		t.Fatalf("first answer: %v", err)
	}

	session.MarkConnected()
	before := session.State()

	if err := session.HandleMessage(context.Background(), answerMessage()); err != nil {
		t.Fatalf("second answer must be ignored, got %v", err)
	}
	if session.State() != before {
		t.Fatalf("state changed on stale answer: %s -> %s", before, session.State())
	}
	if media.remoteCount() != 1 {
		t.Fatalf("stale answer applied: %d remote descriptions", media.remoteCount())
	}
}

func TestOfferWhileNegotiatingIgnored(t *testing.T) {
	media := &fakeMedia{}
	signaler := &fakeSignaler{}
	session := NewSession("call-42", media, signaler)

	if err := session.HandleMessage(context.Background(), offerMessage()); err != nil {
		t.Fatalf("first offer: %v", err)
	}
	if err := session.HandleMessage(context.Background(), offerMessage()); err != nil {
		t.Fatalf("duplicate offer must be ignored, got %v", err)
	}

	if got := len(signaler.messages()); got != 1 {
		t.Fatalf("duplicate offer answered: %d outbound messages", got)
	}
}

func TestCandidatesBufferedUntilRemoteDescription(t *testing.T) {
	media := &fakeMedia{}
	session := NewSession("call-42", media, &fakeSignaler{})

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Candidates outrun the answer.
	session.HandleMessage(context.Background(), candidateMessage("candidate:1"))
	session.HandleMessage(context.Background(), candidateMessage("candidate:2"))
	if media.candidateCount() != 0 {
		t.Fatalf("candidates applied before remote description: %d", media.candidateCount())
	}

	if err := session.HandleMessage(context.Background(), answerMessage()); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if media.candidateCount() != 2 {
		t.Fatalf("buffered candidates not flushed: %d", media.candidateCount())
	}

	// Late candidates apply directly now.
	session.HandleMessage(context.Background(), candidateMessage("candidate:3"))
	if media.candidateCount() != 3 {
		t.Fatalf("late candidate not applied: %d", media.candidateCount())
	}
}

func TestDuplicateCandidateIdempotent(t *testing.T) {
	media := &fakeMedia{}
	session := NewSession("call-42", media, &fakeSignaler{})

	session.Start(context.Background())
	session.HandleMessage(context.Background(), answerMessage())

	session.HandleMessage(context.Background(), candidateMessage("candidate:1"))
	session.HandleMessage(context.Background(), candidateMessage("candidate:1"))

	if media.candidateCount() != 1 {
		t.Fatalf("duplicate candidate applied: %d", media.candidateCount())
	}
}

func TestMediaAcquisitionFailureSurfaces(t *testing.T) {
	media := &fakeMedia{acquireErr: errors.New("camera busy")}
	session := NewSession("call-42", media, &fakeSignaler{})

	err := session.Start(context.Background())
	if !errors.Is(err, ErrMediaAcquisition) {
		t.Fatalf("expected ErrMediaAcquisition, got %v", err)
	}
	if session.State() != StateIdle {
		t.Fatalf("failed start must reset to idle, got %s", session.State())
	}

	// Callee side fails the same way.
	err = session.HandleMessage(context.Background(), offerMessage())
	if !errors.Is(err, ErrMediaAcquisition) {
		t.Fatalf("expected ErrMediaAcquisition, got %v", err)
	}
}

func TestOfferTimeoutResetsToIdle(t *testing.T) {
	media := &fakeMedia{}
	session := NewSession("call-42", media, &fakeSignaler{})
	session.OfferTimeout = 20 * time.Millisecond

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for session.State() != StateIdle {
		if time.Now().After(deadline) {
			t.Fatalf("session stuck in %s after timeout", session.State())
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The slot is free again.
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("restart after timeout: %v", err)
	}
}

func TestAnswerNearTimeoutKeepsMediaOrResets(t *testing.T) {
	// An answer landing right at the offer deadline must either win
	// cleanly or lose cleanly: an answered session whose media was
	// released by the expired timer is unusable.
	for i := 0; i < 1000; i++ {
		media := &fakeMedia{remoteDelay: 200 * time.Microsecond}
		session := NewSession("call-42", media, &fakeSignaler{})
		session.OfferTimeout = 300 * time.Microsecond

		if err := session.Start(context.Background()); err != nil {
			t.Fatalf("iteration %d: start: %v", i, err)
		}
		time.Sleep(250 * time.Microsecond)
		session.HandleMessage(context.Background(), answerMessage())
		time.Sleep(time.Millisecond)

		switch state := session.State(); state {
		case StateAnswerExchanged:
			if media.closedCount() != 0 {
				t.Fatalf("iteration %d: answered session lost its media to the expired timer", i)
			}
		case StateIdle:
			// Timer won; the slot must be reusable.
			if err := session.Start(context.Background()); err != nil {
				t.Fatalf("iteration %d: restart after timeout: %v", i, err)
			}
		default:
			t.Fatalf("iteration %d: unexpected state %s", i, state)
		}
	}
}

func TestHangupReleasesMediaAndResets(t *testing.T) {
	media := &fakeMedia{}
	session := NewSession("call-42", media, &fakeSignaler{})

	session.Start(context.Background())
	session.HandleMessage(context.Background(), answerMessage())
	session.Hangup()

	if session.State() != StateIdle {
		t.Fatalf("expected idle after hangup, got %s", session.State())
	}
	if media.closed == 0 {
		t.Fatal("hangup must close media")
	}

	// MarkConnected after hangup is a no-op.
	session.MarkConnected()
	if session.State() != StateIdle {
		t.Fatalf("late connect applied after hangup: %s", session.State())
	}
}

func TestSendFailureResetsSession(t *testing.T) {
	media := &fakeMedia{}
	signaler := &fakeSignaler{err: errors.New("relay down")}
	session := NewSession("call-42", media, signaler)

	if err := session.Start(context.Background()); err == nil {
		t.Fatal("expected error when offer cannot be sent")
	}
	if session.State() != StateIdle {
		t.Fatalf("expected idle, got %s", session.State())
	}
	if media.closed == 0 {
		t.Fatal("media must be released when the offer cannot be sent")
	}
}

func TestStartWhileBusyFails(t *testing.T) {
	session := NewSession("call-42", &fakeMedia{}, &fakeSignaler{})

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := session.Start(context.Background()); err == nil {
		t.Fatal("second start must fail while negotiating")
	}
}
