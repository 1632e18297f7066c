package negotiation

import (
	"context"
	"sync"
	"testing"
	"time"

	"reelgram-backend/internal/env"

	"github.com/pion/webrtc/v4"
)

// forwarder delivers each message to the other side's session on its own
// goroutine, the way the relay does: the sender never waits on the
// receiver's handling.
type forwarder struct {
	mu   sync.Mutex
	errs []error
}

func (f *forwarder) signalerFor(peer *Session) Signaler {
	return SignalerFunc(func(msg Message) error {
		go func() {
			if err := peer.HandleMessage(context.Background(), msg); err != nil {
				f.mu.Lock()
				f.errs = append(f.errs, err)
				f.mu.Unlock()
			}
		}()
		return nil
	})
}

func (f *forwarder) errors() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]error(nil), f.errs...)
}

func waitForState(t *testing.T, session *Session, want State) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for {
		state := session.State()
		if state == want || (want == StateAnswerExchanged && state == StateConnected) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("session stuck in %s waiting for %s", state, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPeerMediaOfferAnswerExchange(t *testing.T) {
	t.Setenv(env.StunURLs, "stun:127.0.0.1:3478")
	config := PeerConfigurationFromEnv()
	if len(config.ICEServers) != 1 || config.ICEServers[0].URLs[0] != "stun:127.0.0.1:3478" {
		t.Fatalf("unexpected ICE configuration: %#v", config.ICEServers)
	}

	relay := &forwarder{}

	var caller, callee *Session

	callerMedia := NewPeerMedia(config, func(c webrtc.ICECandidateInit) {
		candidate := c
		relay.signalerFor(callee).Send(Message{Type: MessageCandidate, Candidate: &candidate})
	}, func() {
		caller.MarkConnected()
	})
	calleeMedia := NewPeerMedia(config, func(c webrtc.ICECandidateInit) {
		candidate := c
		relay.signalerFor(caller).Send(Message{Type: MessageCandidate, Candidate: &candidate})
	}, func() {
		callee.MarkConnected()
	})

	caller = NewSession("room-1", callerMedia, nil)
	callee = NewSession("room-1", calleeMedia, nil)
	caller.signaler = relay.signalerFor(callee)
	callee.signaler = relay.signalerFor(caller)

	defer callerMedia.Close()
	defer calleeMedia.Close()

	if err := caller.Start(context.Background()); err != nil {
		t.Fatalf("start caller: %v", err)
	}

	waitForState(t, callee, StateAnswerExchanged)
	waitForState(t, caller, StateAnswerExchanged)

	// Give trickled candidates time to land on both sides.
	time.Sleep(200 * time.Millisecond)

	if errs := relay.errors(); len(errs) != 0 {
		t.Fatalf("message handling failed: %v", errs)
	}
}
