package negotiation

import (
	"strings"

	"reelgram-backend/internal/env"

	"github.com/pion/webrtc/v4"
)

const defaultStunURL = "stun:stun.l.google.com:19302"

// ICEServersFromEnv builds the ICE server list from STUN_URLS and
// TURN_URLS (comma separated). TURN entries carry the shared credentials.
func ICEServersFromEnv() []webrtc.ICEServer {
	servers := make([]webrtc.ICEServer, 0, 2)

	stun := splitURLs(env.GetOrDefault(env.StunURLs, defaultStunURL))
	if len(stun) > 0 {
		servers = append(servers, webrtc.ICEServer{URLs: stun})
	}

	if turn := splitURLs(env.Get(env.TurnURLs)); len(turn) > 0 {
		servers = append(servers, webrtc.ICEServer{
			URLs:       turn,
			Username:   env.Get(env.TurnUsername),
			Credential: env.Get(env.TurnCredential),
		})
	}

	return servers
}

func PeerConfigurationFromEnv() webrtc.Configuration {
	return webrtc.Configuration{ICEServers: ICEServersFromEnv()}
}

func splitURLs(raw string) []string {
	urls := make([]string, 0, 2)
	for _, url := range strings.Split(raw, ",") {
		if url = strings.TrimSpace(url); url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}
