package negotiation

import (
	"context"
	"fmt"

	"github.com/pion/webrtc/v4"
)

// PeerMedia implements Media on a pion PeerConnection with bidirectional
// audio and video transceivers. Candidates trickle out through onCandidate
// as ICE discovers them.
type PeerMedia struct {
	config      webrtc.Configuration
	onCandidate func(webrtc.ICECandidateInit)
	onConnected func()

	pc *webrtc.PeerConnection
}

func NewPeerMedia(config webrtc.Configuration, onCandidate func(webrtc.ICECandidateInit), onConnected func()) *PeerMedia {
	return &PeerMedia{
		config:      config,
		onCandidate: onCandidate,
		onConnected: onConnected,
	}
}

func (m *PeerMedia) Acquire(ctx context.Context) error {
	if m.pc != nil {
		return nil
	}

	pc, err := webrtc.NewPeerConnection(m.config)
	if err != nil {
		return fmt.Errorf("new peer connection: %w", err)
	}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil || m.onCandidate == nil {
			return
		}
		m.onCandidate(c.ToJSON())
	})

	pc.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		if state == webrtc.ICEConnectionStateConnected && m.onConnected != nil {
			m.onConnected()
		}
	})

	for _, kind := range []webrtc.RTPCodecType{webrtc.RTPCodecTypeAudio, webrtc.RTPCodecTypeVideo} {
		if _, err := pc.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionSendrecv,
		}); err != nil {
			pc.Close()
			return fmt.Errorf("add %s transceiver: %w", kind, err)
		}
	}

	m.pc = pc
	return nil
}

func (m *PeerMedia) CreateOffer() (webrtc.SessionDescription, error) {
	if m.pc == nil {
		return webrtc.SessionDescription{}, fmt.Errorf("media not acquired")
	}

	offer, err := m.pc.CreateOffer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	if err := m.pc.SetLocalDescription(offer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	return offer, nil
}

func (m *PeerMedia) CreateAnswer() (webrtc.SessionDescription, error) {
	if m.pc == nil {
		return webrtc.SessionDescription{}, fmt.Errorf("media not acquired")
	}

	answer, err := m.pc.CreateAnswer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	if err := m.pc.SetLocalDescription(answer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	return answer, nil
}

func (m *PeerMedia) SetRemoteDescription(desc webrtc.SessionDescription) error {
	if m.pc == nil {
		return fmt.Errorf("media not acquired")
	}
	return m.pc.SetRemoteDescription(desc)
}

func (m *PeerMedia) AddICECandidate(candidate webrtc.ICECandidateInit) error {
	if m.pc == nil {
		return fmt.Errorf("media not acquired")
	}
	return m.pc.AddICECandidate(candidate)
}

func (m *PeerMedia) Close() error {
	if m.pc == nil {
		return nil
	}
	err := m.pc.Close()
	m.pc = nil
	return err
}
